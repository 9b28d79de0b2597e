package services

import (
	"pocketledger/internal/database"
	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/models"
	"pocketledger/internal/validator"
)

// categoryService handles category-related business logic. Categories are
// shared by every user of the ledger file; mutations only require a session.
type categoryService struct {
	store *database.Store
	audit AuditServicer
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(store *database.Store, audit AuditServicer) CategoryServicer {
	return &categoryService{store: store, audit: audit}
}

// ListCategories returns every category in id order.
func (s *categoryService) ListCategories() []*models.Category {
	return s.store.GetAllCategories()
}

// ListCategoriesByType returns the categories of one type. An empty type lists all.
func (s *categoryService) ListCategoriesByType(categoryType string) ([]*models.Category, error) {
	if categoryType == "" {
		return s.store.GetAllCategories(), nil
	}
	t, err := models.ParseCategoryType(categoryType)
	if err != nil {
		return nil, err
	}
	return s.store.GetCategoriesByType(t), nil
}

// GetCategory retrieves a category by id.
func (s *categoryService) GetCategory(categoryID string) (*models.Category, error) {
	category, ok := s.store.GetCategoryByID(categoryID)
	if !ok {
		return nil, apperrors.ErrCategoryNotFound
	}
	return category, nil
}

// AddCategory creates a category.
func (s *categoryService) AddCategory(sess *Session, in CategoryInput) (*models.Category, error) {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	t, err := models.ParseCategoryType(in.Type)
	if err != nil {
		return nil, err
	}

	category, err := models.NewCategory(in.Name, t, in.Icon, in.Description)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveCategory(category); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, "create", "category", category.ID, map[string]any{"name": category.Name, "type": string(t)})
	return category, nil
}

// UpdateCategory applies the non-nil fields of upd. Entries keep the
// category snapshot they were recorded with.
func (s *categoryService) UpdateCategory(sess *Session, categoryID string, upd CategoryUpdate) (*models.Category, error) {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return nil, err
	}
	category, err := s.GetCategory(categoryID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if upd.Name != nil {
		if err := category.Rename(*upd.Name); err != nil {
			return nil, err
		}
		changes["name"] = category.Name
	}
	if upd.Icon != nil {
		category.UpdateIcon(*upd.Icon)
		changes["icon"] = *upd.Icon
	}
	if upd.Description != nil {
		category.UpdateDescription(*upd.Description)
		changes["description"] = *upd.Description
	}

	if err := s.store.SaveCategory(category); err != nil {
		return nil, err
	}
	s.audit.Log(user.ID, "update", "category", category.ID, changes)
	return category, nil
}

// DeleteCategory removes a category.
func (s *categoryService) DeleteCategory(sess *Session, categoryID string) error {
	user, err := activeUser(s.store, sess)
	if err != nil {
		return err
	}
	deleted, err := s.store.DeleteCategory(categoryID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ErrCategoryNotFound
	}
	s.audit.Log(user.ID, "delete", "category", categoryID, nil)
	return nil
}
