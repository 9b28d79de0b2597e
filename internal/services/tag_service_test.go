package services

import (
	"testing"

	"pocketledger/internal/models"
	"pocketledger/internal/testutil"
)

func TestAddTag(t *testing.T) {
	t.Run("default_color", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewTagService(store, NewAuditService())
		sess := sessionFor(testutil.CreateTestUser(t, store))

		tag, err := svc.AddTag(sess, TagInput{Name: "travel"})
		testutil.AssertNoError(t, err)
		if tag.Color != models.DefaultTagColor {
			t.Errorf("expected default color, got %s", tag.Color)
		}
		if len(svc.ListTags()) != 1 {
			t.Error("expected tag to be listed")
		}
	})

	t.Run("bad_color", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewTagService(store, NewAuditService())
		sess := sessionFor(testutil.CreateTestUser(t, store))

		_, err := svc.AddTag(sess, TagInput{Name: "travel", Color: "red"})
		testutil.AssertAppError(t, err, "VALIDATION_FAILED")
	})
}

func TestUpdateTag(t *testing.T) {
	store := testutil.SetupTestStore(t)
	svc := NewTagService(store, NewAuditService())
	sess := sessionFor(testutil.CreateTestUser(t, store))
	tag := testutil.CreateTestTag(t, store)

	name, color := "work", "#FF0000"
	updated, err := svc.UpdateTag(sess, tag.ID, TagUpdate{Name: &name, Color: &color})
	testutil.AssertNoError(t, err)
	if updated.Name != "work" || updated.Color != "#FF0000" {
		t.Errorf("unexpected tag %+v", updated)
	}

	bad := "#GGG"
	_, err = svc.UpdateTag(sess, tag.ID, TagUpdate{Color: &bad})
	testutil.AssertAppError(t, err, "VALIDATION_FAILED")

	_, err = svc.UpdateTag(sess, "missing", TagUpdate{Name: &name})
	testutil.AssertAppError(t, err, "TAG_NOT_FOUND")
}

func TestMergeTags(t *testing.T) {
	t.Run("retags_entries", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewTagService(store, NewAuditService())
		user := testutil.CreateTestUser(t, store)
		cat := testutil.CreateTestCategory(t, store, models.CategoryTypeExpense)
		keep := testutil.CreateTestTag(t, store)
		merge := testutil.CreateTestTag(t, store)
		both := testutil.CreateTestEntry(t, store, user.ID, cat, "1", "2024-01-01T00:00:00", testutil.WithTags(keep, merge))
		only := testutil.CreateTestEntry(t, store, user.ID, cat, "1", "2024-01-02T00:00:00", testutil.WithTags(merge))

		_, err := svc.MergeTags(sessionFor(user), keep.ID, merge.ID)
		testutil.AssertNoError(t, err)

		if _, ok := store.GetTagByID(merge.ID); ok {
			t.Error("expected merged tag to be deleted")
		}
		for _, id := range []string{both.ID, only.ID} {
			e, _ := store.GetEntryByID(id)
			if len(e.Tags) != 1 || e.Tags[0].ID != keep.ID {
				t.Errorf("entry %s should carry only the kept tag, got %+v", id, e.Tags)
			}
		}
	})

	t.Run("same_tag", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewTagService(store, NewAuditService())
		tag := testutil.CreateTestTag(t, store)

		_, err := svc.MergeTags(sessionFor(testutil.CreateTestUser(t, store)), tag.ID, tag.ID)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_tag", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := NewTagService(store, NewAuditService())
		tag := testutil.CreateTestTag(t, store)

		_, err := svc.MergeTags(sessionFor(testutil.CreateTestUser(t, store)), tag.ID, "missing")
		testutil.AssertAppError(t, err, "TAG_NOT_FOUND")
	})
}

func TestDeleteTag(t *testing.T) {
	store := testutil.SetupTestStore(t)
	svc := NewTagService(store, NewAuditService())
	user := testutil.CreateTestUser(t, store)
	cat := testutil.CreateTestCategory(t, store, models.CategoryTypeExpense)
	tag := testutil.CreateTestTag(t, store)
	entry := testutil.CreateTestEntry(t, store, user.ID, cat, "1", "2024-01-01T00:00:00", testutil.WithTags(tag))

	testutil.AssertNoError(t, svc.DeleteTag(sessionFor(user), tag.ID))
	testutil.AssertAppError(t, svc.DeleteTag(sessionFor(user), tag.ID), "TAG_NOT_FOUND")

	e, _ := store.GetEntryByID(entry.ID)
	if len(e.Tags) != 1 {
		t.Error("entries keep their embedded tag copy")
	}
}
