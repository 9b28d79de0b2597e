package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"pocketledger/internal/database"
	"pocketledger/internal/models"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, store *database.Store) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, store, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, store *database.Store, email string) *models.User {
	t.Helper()

	user, err := models.NewUser(email, "13800000000", TestPassword, "tester", "")
	if err != nil {
		t.Fatalf("failed to build test user: %v", err)
	}
	if err := store.SaveUser(user); err != nil {
		t.Fatalf("failed to save test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, store *database.Store, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category, err := models.NewCategory(fmt.Sprintf("Test Category %d", nextID()), categoryType, "", "")
	if err != nil {
		t.Fatalf("failed to build test category: %v", err)
	}
	if err := store.SaveCategory(category); err != nil {
		t.Fatalf("failed to save test category: %v", err)
	}
	return category
}

// CreateTestTag creates a tag with the default color.
func CreateTestTag(t *testing.T, store *database.Store) *models.Tag {
	t.Helper()

	tag, err := models.NewTag(fmt.Sprintf("tag%d", nextID()), "", "")
	if err != nil {
		t.Fatalf("failed to build test tag: %v", err)
	}
	if err := store.SaveTag(tag); err != nil {
		t.Fatalf("failed to save test tag: %v", err)
	}
	return tag
}

// EntryOption adjusts an entry before it is saved.
type EntryOption func(*models.Entry)

// WithTitle sets the entry title.
func WithTitle(title string) EntryOption {
	return func(e *models.Entry) { e.Title = title }
}

// WithNote sets the entry note.
func WithNote(note string) EntryOption {
	return func(e *models.Entry) { e.Note = note }
}

// WithTags attaches the tags.
func WithTags(tags ...*models.Tag) EntryOption {
	return func(e *models.Entry) {
		for _, tag := range tags {
			e.AddTag(tag)
		}
	}
}

// CreateTestEntry creates an entry with the given amount and timestamp.
func CreateTestEntry(t *testing.T, store *database.Store, userID string, category *models.Category, amount string, ts string, opts ...EntryOption) *models.Entry {
	t.Helper()

	entry, err := models.NewEntry(models.EntryParams{
		UserID:    userID,
		Category:  category,
		Title:     fmt.Sprintf("Test Entry %d", nextID()),
		Amount:    models.MustAmount(amount),
		Timestamp: models.MustParseTimestamp(ts),
	})
	if err != nil {
		t.Fatalf("failed to build test entry: %v", err)
	}
	for _, opt := range opts {
		opt(entry)
	}
	if err := store.SaveEntry(entry); err != nil {
		t.Fatalf("failed to save test entry: %v", err)
	}
	return entry
}

// CreateTestBudget creates an active budget with an 80% threshold.
func CreateTestBudget(t *testing.T, store *database.Store, userID, categoryID string, period models.BudgetPeriod, limit string) *models.Budget {
	t.Helper()

	budget, err := models.NewBudget(userID, categoryID, period, models.MustAmount(limit), models.DefaultThreshold)
	if err != nil {
		t.Fatalf("failed to build test budget: %v", err)
	}
	if err := store.SaveBudget(budget); err != nil {
		t.Fatalf("failed to save test budget: %v", err)
	}
	return budget
}
