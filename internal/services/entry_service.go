package services

import (
	"fmt"

	"pocketledger/internal/database"
	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/models"
	"pocketledger/internal/pagination"
	"pocketledger/internal/validator"
)

// entryService handles entry-related business logic.
type entryService struct {
	store           *database.Store
	audit           AuditServicer
	defaultCurrency string
}

// NewEntryService creates a new EntryServicer. Entries created without a
// currency get defaultCurrency.
func NewEntryService(store *database.Store, audit AuditServicer, defaultCurrency string) EntryServicer {
	if defaultCurrency == "" {
		defaultCurrency = models.DefaultCurrency
	}
	return &entryService{store: store, audit: audit, defaultCurrency: defaultCurrency}
}

// AddEntry records an entry for the session's user.
func (s *entryService) AddEntry(sess *Session, in NewEntryInput) (*models.Entry, error) {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return nil, err
	}
	if in.Currency == "" {
		in.Currency = s.defaultCurrency
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	category, ok := s.store.GetCategoryByID(in.CategoryID)
	if !ok {
		return nil, apperrors.ErrCategoryNotFound
	}

	entry, err := models.NewEntry(models.EntryParams{
		UserID:    user.ID,
		Category:  category,
		Title:     in.Title,
		Amount:    in.Amount,
		Currency:  in.Currency,
		Note:      in.Note,
		Timestamp: in.Timestamp,
		Images:    in.Images,
	})
	if err != nil {
		return nil, err
	}
	for _, tagID := range in.TagIDs {
		if tag, ok := s.store.GetTagByID(tagID); ok {
			entry.AddTag(tag)
		}
	}

	if err := s.store.SaveEntry(entry); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, "create", "entry", entry.ID, map[string]any{
		"amount":   entry.Amount.String(),
		"category": entry.Category.Name,
	})
	return entry, nil
}

// GetEntry returns an entry owned by the session's user.
func (s *entryService) GetEntry(sess *Session, entryID string) (*models.Entry, error) {
	_, entry, err := s.ownedEntry(sess, entryID)
	return entry, err
}

// UpdateEntry applies upd. Nothing is saved unless every change is valid.
func (s *entryService) UpdateEntry(sess *Session, entryID string, upd EntryUpdate) (*models.Entry, error) {
	user, entry, err := s.ownedEntry(sess, entryID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if upd.Title != nil {
		if err := entry.UpdateTitle(*upd.Title); err != nil {
			return nil, err
		}
		changes["title"] = *upd.Title
	}
	if upd.Amount != nil {
		if err := entry.UpdateAmount(*upd.Amount); err != nil {
			return nil, err
		}
		changes["amount"] = upd.Amount.String()
	}
	if upd.CategoryID != nil {
		category, ok := s.store.GetCategoryByID(*upd.CategoryID)
		if !ok {
			return nil, apperrors.ErrCategoryNotFound
		}
		entry.UpdateCategory(category)
		changes["category"] = category.Name
	}
	if upd.Note != nil {
		entry.UpdateNote(*upd.Note)
		changes["note"] = *upd.Note
	}

	if err := s.store.SaveEntry(entry); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, "update", "entry", entry.ID, changes)
	return entry, nil
}

// DeleteEntry removes an entry owned by the session's user.
func (s *entryService) DeleteEntry(sess *Session, entryID string) error {
	user, entry, err := s.ownedEntry(sess, entryID)
	if err != nil {
		return err
	}
	if _, err := s.store.DeleteEntry(entry.ID); err != nil {
		return err
	}
	s.audit.Log(user.ID, "delete", "entry", entry.ID, nil)
	return nil
}

// QueryEntries returns the session user's entries matching filter, most recent first.
func (s *entryService) QueryEntries(sess *Session, filter EntryFilter) ([]*models.Entry, error) {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return nil, err
	}
	q, err := filter.Query(user.ID)
	if err != nil {
		return nil, err
	}
	return s.store.QueryEntries(q)
}

// ListEntries is QueryEntries split into pages.
func (s *entryService) ListEntries(sess *Session, filter EntryFilter, page pagination.PageRequest) (*pagination.PageResponse[*models.Entry], error) {
	if err := validator.Struct(page); err != nil {
		return nil, err
	}
	entries, err := s.QueryEntries(sess, filter)
	if err != nil {
		return nil, err
	}
	result := pagination.Paginate(entries, page)
	return &result, nil
}

// AddTagToEntry attaches an existing tag to an entry.
func (s *entryService) AddTagToEntry(sess *Session, entryID, tagID string) (*models.Entry, error) {
	user, entry, err := s.ownedEntry(sess, entryID)
	if err != nil {
		return nil, err
	}
	tag, ok := s.store.GetTagByID(tagID)
	if !ok {
		return nil, apperrors.ErrTagNotFound
	}
	if !entry.AddTag(tag) {
		return nil, apperrors.ErrTagExists
	}
	if err := s.store.SaveEntry(entry); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, "add_tag", "entry", entry.ID, map[string]any{"tag_id": tag.ID})
	return entry, nil
}

// RemoveTagFromEntry detaches a tag from an entry.
func (s *entryService) RemoveTagFromEntry(sess *Session, entryID, tagID string) (*models.Entry, error) {
	user, entry, err := s.ownedEntry(sess, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.RemoveTag(tagID) {
		return nil, apperrors.WithMessage(apperrors.ErrTagNotFound, "Tag is not attached to this entry")
	}
	if err := s.store.SaveEntry(entry); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, "remove_tag", "entry", entry.ID, map[string]any{"tag_id": tagID})
	return entry, nil
}

// AddImageToEntry attaches an image reference. Adding a present image is a no-op.
func (s *entryService) AddImageToEntry(sess *Session, entryID, path string) (*models.Entry, error) {
	user, entry, err := s.ownedEntry(sess, entryID)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "Image path cannot be empty")
	}
	if !entry.AddImage(path) {
		return entry, nil
	}
	if err := s.store.SaveEntry(entry); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, "add_image", "entry", entry.ID, map[string]any{"path": path})
	return entry, nil
}

// RemoveImageFromEntry detaches an image reference.
func (s *entryService) RemoveImageFromEntry(sess *Session, entryID, path string) (*models.Entry, error) {
	user, entry, err := s.ownedEntry(sess, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.RemoveImage(path) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Image is not attached to this entry")
	}
	if err := s.store.SaveEntry(entry); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, "remove_image", "entry", entry.ID, map[string]any{"path": path})
	return entry, nil
}

// ownedEntry loads an entry and checks it belongs to the session's user.
func (s *entryService) ownedEntry(sess *Session, entryID string) (*models.User, *models.Entry, error) {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return nil, nil, err
	}
	entry, ok := s.store.GetEntryByID(entryID)
	if !ok {
		return nil, nil, apperrors.ErrEntryNotFound
	}
	if entry.UserID != user.ID {
		return nil, nil, apperrors.ErrForbidden
	}
	return user, entry, nil
}

// Query converts the filter into a store query for userID. Malformed dates
// or amounts are reported as INVALID_QUERY.
func (f EntryFilter) Query(userID string) (database.EntryQuery, error) {
	q := database.EntryQuery{
		UserID:     userID,
		CategoryID: f.CategoryID,
		TagIDs:     f.TagIDs,
		Keyword:    f.Keyword,
	}
	var err error
	if q.StartDate, err = parseBound("start_date", f.StartDate); err != nil {
		return q, err
	}
	if q.EndDate, err = parseBound("end_date", f.EndDate); err != nil {
		return q, err
	}
	if f.MinAmount != "" {
		v, err := models.ParseAmount(f.MinAmount)
		if err != nil {
			return q, apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidQuery, fmt.Sprintf("min_amount %q is not a decimal", f.MinAmount)), err)
		}
		q.MinAmount = &v
	}
	if f.MaxAmount != "" {
		v, err := models.ParseAmount(f.MaxAmount)
		if err != nil {
			return q, apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidQuery, fmt.Sprintf("max_amount %q is not a decimal", f.MaxAmount)), err)
		}
		q.MaxAmount = &v
	}
	return q, nil
}

func parseBound(name, value string) (*models.Timestamp, error) {
	if value == "" {
		return nil, nil
	}
	ts, err := models.ParseTimestamp(value)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidQuery, fmt.Sprintf("%s %q is not a valid timestamp", name, value)), err)
	}
	return &ts, nil
}
