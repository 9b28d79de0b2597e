package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"golang.org/x/crypto/bcrypt"

	apperrors "pocketledger/internal/errors"
)

func TestMain(m *testing.M) {
	PasswordCost = bcrypt.MinCost
	m.Run()
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError with code %q, got %v", code, err)
	}
	if appErr.Code != code {
		t.Errorf("expected code %q, got %q", code, appErr.Code)
	}
}

func sampleCategory(t *testing.T) *Category {
	t.Helper()
	c, err := NewCategory("Food", CategoryTypeExpense, "🍔", "meals")
	if err != nil {
		t.Fatalf("new category: %v", err)
	}
	return c
}

func TestNewUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		u, err := NewUser("a@b.com", "12345678", "secret1", "Ann", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.PasswordHash == "secret1" || len(u.PasswordHash) != 60 {
			t.Errorf("expected a 60-char bcrypt hash, got %q", u.PasswordHash)
		}
		if u.Avatar != DefaultAvatar {
			t.Errorf("expected default avatar, got %q", u.Avatar)
		}
		if !u.VerifyPassword("secret1") || u.VerifyPassword("secret2") {
			t.Error("password verification mismatch")
		}
	})

	invalid := []struct {
		name                   string
		email, phone, password string
	}{
		{"email_without_at", "abcd.com", "12345678", "secret1"},
		{"email_too_short", "a@b", "12345678", "secret1"},
		{"phone_too_short", "a@b.com", "1234567", "secret1"},
		{"password_too_short", "a@b.com", "12345678", "12345"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUser(tc.email, tc.phone, tc.password, "n", "")
			assertCode(t, err, "VALIDATION_FAILED")
		})
	}
}

func TestUserPasswordAndProfile(t *testing.T) {
	u, err := NewUser("a@b.com", "12345678", "secret1", "Ann", "")
	if err != nil {
		t.Fatalf("new user: %v", err)
	}

	t.Run("wrong_old_password", func(t *testing.T) {
		assertCode(t, u.UpdatePassword("nope", "secret2"), "WRONG_PASSWORD")
	})

	t.Run("short_new_password", func(t *testing.T) {
		assertCode(t, u.UpdatePassword("secret1", "123"), "VALIDATION_FAILED")
		if !u.VerifyPassword("secret1") {
			t.Error("expected old password to still verify")
		}
	})

	t.Run("change_password", func(t *testing.T) {
		if err := u.UpdatePassword("secret1", "secret2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !u.VerifyPassword("secret2") {
			t.Error("expected new password to verify")
		}
	})

	t.Run("profile_only_non_empty", func(t *testing.T) {
		if err := u.UpdateProfile("Bea", "", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.Nickname != "Bea" || u.Avatar != DefaultAvatar || u.Phone != "12345678" {
			t.Errorf("unexpected profile %+v", u)
		}
	})

	t.Run("profile_bad_phone_changes_nothing", func(t *testing.T) {
		assertCode(t, u.UpdateProfile("Cat", "", "123"), "VALIDATION_FAILED")
		if u.Nickname != "Bea" {
			t.Errorf("expected nickname unchanged, got %q", u.Nickname)
		}
	})
}

func TestCategoryAndTag(t *testing.T) {
	t.Run("blank_category_name", func(t *testing.T) {
		_, err := NewCategory("   ", CategoryTypeIncome, "", "")
		assertCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("unknown_category_type", func(t *testing.T) {
		_, err := NewCategory("x", CategoryType("transfer"), "", "")
		assertCode(t, err, "INVALID_INPUT")
	})

	t.Run("rename_trims", func(t *testing.T) {
		c := sampleCategory(t)
		if err := c.Rename("  Dining "); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Name != "Dining" {
			t.Errorf("expected trimmed name, got %q", c.Name)
		}
	})

	t.Run("tag_default_color", func(t *testing.T) {
		tag, err := NewTag("trip", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tag.Color != DefaultTagColor {
			t.Errorf("expected %s, got %s", DefaultTagColor, tag.Color)
		}
	})

	t.Run("tag_merge_keeps_own_description", func(t *testing.T) {
		a := &Tag{ID: "a", Name: "a", Description: "mine"}
		b := &Tag{ID: "b", Name: "b", Description: "theirs"}
		a.MergeWith(b)
		if a.Description != "mine" {
			t.Errorf("expected own description kept, got %q", a.Description)
		}
		empty := &Tag{ID: "c", Name: "c"}
		empty.MergeWith(b)
		if empty.Description != "theirs" || empty.ID != "c" {
			t.Errorf("expected adopted description with own id, got %+v", empty)
		}
	})
}

func TestEntry(t *testing.T) {
	newEntry := func(t *testing.T) *Entry {
		t.Helper()
		e, err := NewEntry(EntryParams{
			UserID:   "u1",
			Category: sampleCategory(t),
			Title:    "Lunch",
			Amount:   MustAmount("12.50"),
		})
		if err != nil {
			t.Fatalf("new entry: %v", err)
		}
		return e
	}

	t.Run("defaults", func(t *testing.T) {
		e := newEntry(t)
		if e.Currency != DefaultCurrency {
			t.Errorf("expected default currency, got %q", e.Currency)
		}
		if e.Timestamp.IsZero() || e.Timestamp.HasZone() {
			t.Errorf("expected naive now timestamp, got %s", e.Timestamp)
		}
	})

	t.Run("rejects_non_positive_amount", func(t *testing.T) {
		for _, amount := range []string{"0", "-1"} {
			_, err := NewEntry(EntryParams{UserID: "u1", Category: sampleCategory(t), Title: "x", Amount: MustAmount(amount)})
			assertCode(t, err, "VALIDATION_FAILED")
		}
	})

	t.Run("rejects_blank_title", func(t *testing.T) {
		_, err := NewEntry(EntryParams{UserID: "u1", Category: sampleCategory(t), Title: "  ", Amount: MustAmount("1")})
		assertCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("update_amount_keeps_positive", func(t *testing.T) {
		e := newEntry(t)
		assertCode(t, e.UpdateAmount(MustAmount("0")), "VALIDATION_FAILED")
		if !e.Amount.Equal(MustAmount("12.50")) {
			t.Errorf("expected amount unchanged, got %s", e.Amount)
		}
	})

	t.Run("tags_are_unique_by_id", func(t *testing.T) {
		e := newEntry(t)
		tag := &Tag{ID: "t1", Name: "work"}
		if !e.AddTag(tag) {
			t.Fatal("expected first add to succeed")
		}
		if e.AddTag(&Tag{ID: "t1", Name: "renamed"}) {
			t.Error("expected duplicate id to be rejected")
		}
		if !e.RemoveTag("t1") || e.RemoveTag("t1") {
			t.Error("expected single successful removal")
		}
	})

	t.Run("category_is_a_snapshot", func(t *testing.T) {
		c := sampleCategory(t)
		e, err := NewEntry(EntryParams{UserID: "u1", Category: c, Title: "x", Amount: MustAmount("1")})
		if err != nil {
			t.Fatalf("new entry: %v", err)
		}
		_ = c.Rename("Renamed")
		if e.Category.Name != "Food" {
			t.Errorf("expected snapshot name Food, got %q", e.Category.Name)
		}
	})

	t.Run("images", func(t *testing.T) {
		e := newEntry(t)
		if !e.AddImage("a.png") || e.AddImage("a.png") {
			t.Error("expected duplicate image to be ignored")
		}
		if !e.RemoveImage("a.png") || len(e.Images) != 0 {
			t.Error("expected image removal")
		}
	})
}

func TestBudgetBoundaries(t *testing.T) {
	b, err := NewBudget("u1", "", BudgetPeriodMonthly, MustAmount("100"), 80)
	if err != nil {
		t.Fatalf("new budget: %v", err)
	}

	t.Run("exceeded", func(t *testing.T) {
		if b.IsExceeded(MustAmount("100")) {
			t.Error("spend equal to limit must not be exceeded")
		}
		if !b.IsExceeded(MustAmount("100.01")) {
			t.Error("spend over limit must be exceeded")
		}
	})

	t.Run("threshold", func(t *testing.T) {
		if !b.IsThresholdReached(MustAmount("80")) {
			t.Error("expected threshold reached at 80")
		}
		if b.IsThresholdReached(MustAmount("79.99")) {
			t.Error("expected threshold not reached at 79.99")
		}
	})

	t.Run("remaining_goes_negative", func(t *testing.T) {
		if got := b.Remaining(MustAmount("120")); !got.Equal(MustAmount("-20")) {
			t.Errorf("expected -20, got %s", got)
		}
	})

	t.Run("usage_percentage", func(t *testing.T) {
		if got := b.UsagePercentage(MustAmount("25")); got != 25 {
			t.Errorf("expected 25, got %v", got)
		}
	})

	t.Run("invalid_values", func(t *testing.T) {
		_, err := NewBudget("u1", "", BudgetPeriodDaily, MustAmount("0"), 80)
		assertCode(t, err, "VALIDATION_FAILED")
		_, err = NewBudget("u1", "", BudgetPeriodDaily, MustAmount("10"), 101)
		assertCode(t, err, "VALIDATION_FAILED")
		assertCode(t, b.UpdateThreshold(-1), "VALIDATION_FAILED")
		_, err = NewBudget("u1", "", BudgetPeriod("hourly"), MustAmount("10"), 80)
		assertCode(t, err, "INVALID_INPUT")
	})

	t.Run("threshold_bounds_inclusive", func(t *testing.T) {
		for _, v := range []int{0, 100} {
			if err := b.UpdateThreshold(v); err != nil {
				t.Errorf("threshold %d: unexpected error %v", v, err)
			}
		}
	})
}

// Every kind must survive record -> JSON -> record unchanged.
func TestRecordRoundTrip(t *testing.T) {
	roundTrip := func(t *testing.T, rec any, decode func([]byte) (any, error)) {
		t.Helper()
		data, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		back, err := decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !reflect.DeepEqual(rec, back) {
			t.Errorf("round trip mismatch:\n got %#v\nwant %#v", back, rec)
		}
	}

	t.Run("user", func(t *testing.T) {
		u, _ := NewUser("a@b.com", "12345678", "secret1", "Ann", "me.png")
		roundTrip(t, u.Record(), func(b []byte) (any, error) {
			var r UserRecord
			if err := json.Unmarshal(b, &r); err != nil {
				return nil, err
			}
			x, err := UserFromRecord(r)
			if err != nil {
				return nil, err
			}
			return x.Record(), nil
		})
	})

	t.Run("category", func(t *testing.T) {
		roundTrip(t, sampleCategory(t).Record(), func(b []byte) (any, error) {
			var r CategoryRecord
			if err := json.Unmarshal(b, &r); err != nil {
				return nil, err
			}
			x, err := CategoryFromRecord(r)
			if err != nil {
				return nil, err
			}
			return x.Record(), nil
		})
	})

	t.Run("tag", func(t *testing.T) {
		tag, _ := NewTag("work", "#112233", "office")
		roundTrip(t, tag.Record(), func(b []byte) (any, error) {
			var r TagRecord
			if err := json.Unmarshal(b, &r); err != nil {
				return nil, err
			}
			x, err := TagFromRecord(r)
			if err != nil {
				return nil, err
			}
			return x.Record(), nil
		})
	})

	t.Run("entry", func(t *testing.T) {
		e, _ := NewEntry(EntryParams{
			UserID:    "u1",
			Category:  sampleCategory(t),
			Title:     "Dinner",
			Amount:    MustAmount("88.80"),
			Note:      "with friends",
			Timestamp: MustParseTimestamp("2025-02-03T19:30:00+08:00"),
			Images:    []string{"r.jpg"},
		})
		e.AddTag(&Tag{ID: "t1", Name: "social", Color: DefaultTagColor})
		roundTrip(t, e.Record(), func(b []byte) (any, error) {
			var r EntryRecord
			if err := json.Unmarshal(b, &r); err != nil {
				return nil, err
			}
			x, err := EntryFromRecord(r)
			if err != nil {
				return nil, err
			}
			return x.Record(), nil
		})
	})

	t.Run("budget_whole_account_null_category", func(t *testing.T) {
		b, _ := NewBudget("u1", "", BudgetPeriodWeekly, MustAmount("300.5"), 60)
		rec := b.Record()
		data, _ := json.Marshal(rec)
		var raw map[string]any
		_ = json.Unmarshal(data, &raw)
		if v, ok := raw["category_id"]; !ok || v != nil {
			t.Errorf("expected null category_id, got %v", v)
		}
		roundTrip(t, rec, func(b []byte) (any, error) {
			var r BudgetRecord
			if err := json.Unmarshal(b, &r); err != nil {
				return nil, err
			}
			x, err := BudgetFromRecord(r)
			if err != nil {
				return nil, err
			}
			return x.Record(), nil
		})
	})
}
