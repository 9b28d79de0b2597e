package services

import (
	"testing"

	"pocketledger/internal/models"
	"pocketledger/internal/testutil"
)

func TestListCategories(t *testing.T) {
	store := testutil.SetupTestStore(t)
	svc := NewCategoryService(store, NewAuditService())

	if got := len(svc.ListCategories()); got != 14 {
		t.Errorf("expected 14 seeded categories, got %d", got)
	}

	t.Run("by_type", func(t *testing.T) {
		expense, err := svc.ListCategoriesByType("expense")
		testutil.AssertNoError(t, err)
		income, err := svc.ListCategoriesByType("income")
		testutil.AssertNoError(t, err)

		if len(expense) != 9 || len(income) != 5 {
			t.Errorf("expected 9 expense and 5 income categories, got %d and %d", len(expense), len(income))
		}
		for _, c := range income {
			if c.Type != models.CategoryTypeIncome {
				t.Errorf("category %q has type %s", c.Name, c.Type)
			}
		}
	})

	t.Run("empty_type_lists_all", func(t *testing.T) {
		all, err := svc.ListCategoriesByType("")
		testutil.AssertNoError(t, err)
		if len(all) != 14 {
			t.Errorf("expected 14 categories, got %d", len(all))
		}
	})

	t.Run("unknown_type", func(t *testing.T) {
		_, err := svc.ListCategoriesByType("transfer")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestAddCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewCategoryService(store, NewAuditService())
		sess := sessionFor(testutil.CreateTestUser(t, store))

		c, err := svc.AddCategory(sess, CategoryInput{Name: "  Pets ", Type: "expense", Icon: "🐶"})
		testutil.AssertNoError(t, err)

		if c.Name != "Pets" {
			t.Errorf("expected trimmed name, got %q", c.Name)
		}
		got, err := svc.GetCategory(c.ID)
		testutil.AssertNoError(t, err)
		if got.Icon != "🐶" {
			t.Errorf("expected icon to persist, got %q", got.Icon)
		}
	})

	t.Run("requires_session", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewCategoryService(store, NewAuditService())

		_, err := svc.AddCategory(nil, CategoryInput{Name: "Pets", Type: "expense"})
		testutil.AssertAppError(t, err, "NOT_LOGGED_IN")
	})

	t.Run("bad_type", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewCategoryService(store, NewAuditService())
		sess := sessionFor(testutil.CreateTestUser(t, store))

		_, err := svc.AddCategory(sess, CategoryInput{Name: "Pets", Type: "other"})
		testutil.AssertAppError(t, err, "VALIDATION_FAILED")
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("rename_keeps_entry_snapshot", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewCategoryService(store, NewAuditService())
		user := testutil.CreateTestUser(t, store)
		cat := testutil.CreateTestCategory(t, store, models.CategoryTypeExpense)
		entry := testutil.CreateTestEntry(t, store, user.ID, cat, "10", "2024-01-01T00:00:00")

		name := "Renamed"
		updated, err := svc.UpdateCategory(sessionFor(user), cat.ID, CategoryUpdate{Name: &name})
		testutil.AssertNoError(t, err)
		if updated.Name != "Renamed" {
			t.Errorf("expected Renamed, got %q", updated.Name)
		}

		stored, _ := store.GetEntryByID(entry.ID)
		if stored.Category.Name != cat.Name {
			t.Errorf("entry snapshot changed to %q", stored.Category.Name)
		}
	})

	t.Run("blank_name", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewCategoryService(store, NewAuditService())
		cat := testutil.CreateTestCategory(t, store, models.CategoryTypeExpense)

		blank := " "
		_, err := svc.UpdateCategory(sessionFor(testutil.CreateTestUser(t, store)), cat.ID, CategoryUpdate{Name: &blank})
		testutil.AssertAppError(t, err, "VALIDATION_FAILED")
	})

	t.Run("not_found", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewCategoryService(store, NewAuditService())

		_, err := svc.UpdateCategory(sessionFor(testutil.CreateTestUser(t, store)), "missing", CategoryUpdate{})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	store := testutil.SetupTestStore(t)
	svc := NewCategoryService(store, NewAuditService())
	sess := sessionFor(testutil.CreateTestUser(t, store))
	cat := testutil.CreateTestCategory(t, store, models.CategoryTypeIncome)

	testutil.AssertNoError(t, svc.DeleteCategory(sess, cat.ID))
	testutil.AssertAppError(t, svc.DeleteCategory(sess, cat.ID), "CATEGORY_NOT_FOUND")
}
