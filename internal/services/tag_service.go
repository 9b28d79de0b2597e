package services

import (
	"pocketledger/internal/database"
	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/logger"
	"pocketledger/internal/models"
	"pocketledger/internal/validator"
)

// tagService handles tag-related business logic.
type tagService struct {
	store *database.Store
	audit AuditServicer
}

// NewTagService creates a new TagServicer.
func NewTagService(store *database.Store, audit AuditServicer) TagServicer {
	return &tagService{store: store, audit: audit}
}

func (s *tagService) ListTags() []*models.Tag {
	return s.store.GetAllTags()
}

// AddTag creates a tag. Color defaults to gray.
func (s *tagService) AddTag(sess *Session, in TagInput) (*models.Tag, error) {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	tag, err := models.NewTag(in.Name, in.Color, in.Description)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveTag(tag); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, "create", "tag", tag.ID, map[string]any{"name": tag.Name})
	return tag, nil
}

func (s *tagService) UpdateTag(sess *Session, tagID string, upd TagUpdate) (*models.Tag, error) {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return nil, err
	}
	if err := validator.Struct(upd); err != nil {
		return nil, err
	}
	tag, ok := s.store.GetTagByID(tagID)
	if !ok {
		return nil, apperrors.ErrTagNotFound
	}

	changes := map[string]any{}
	if upd.Name != nil {
		if err := tag.Rename(*upd.Name); err != nil {
			return nil, err
		}
		changes["name"] = tag.Name
	}
	if upd.Color != nil {
		tag.UpdateColor(*upd.Color)
		changes["color"] = tag.Color
	}

	if err := s.store.SaveTag(tag); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, "update", "tag", tag.ID, changes)
	return tag, nil
}

// MergeTags folds mergeID into keepID. The session user's entries carrying
// the merged tag are retagged with the kept one, then the merged tag is
// deleted.
func (s *tagService) MergeTags(sess *Session, keepID, mergeID string) (*models.Tag, error) {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return nil, err
	}
	if keepID == mergeID {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Cannot merge a tag into itself")
	}
	keep, ok := s.store.GetTagByID(keepID)
	if !ok {
		return nil, apperrors.ErrTagNotFound
	}
	merged, ok := s.store.GetTagByID(mergeID)
	if !ok {
		return nil, apperrors.ErrTagNotFound
	}

	keep.MergeWith(merged)
	if err := s.store.SaveTag(keep); err != nil {
		return nil, err
	}

	entries, err := s.store.QueryEntries(database.EntryQuery{UserID: user.ID, TagIDs: []string{mergeID}})
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		entry.RemoveTag(mergeID)
		entry.AddTag(keep)
		if err := s.store.SaveEntry(entry); err != nil {
			return nil, err
		}
	}

	if _, err := s.store.DeleteTag(mergeID); err != nil {
		return nil, err
	}
	logger.Get().Infow("tags merged", "kept", keepID, "merged", mergeID, "entries", len(entries))
	s.audit.Log(user.ID, "merge", "tag", keep.ID, map[string]any{"merged": mergeID, "entries": len(entries)})
	return keep, nil
}

// DeleteTag removes a tag. Entries keep their embedded copy.
func (s *tagService) DeleteTag(sess *Session, tagID string) error {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return err
	}
	deleted, err := s.store.DeleteTag(tagID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ErrTagNotFound
	}
	s.audit.Log(user.ID, "delete", "tag", tagID, nil)
	return nil
}
