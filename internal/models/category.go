package models

import (
	"fmt"
	"strings"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/uuid"
)

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// ParseCategoryType accepts the lowercase tag of a category type.
func ParseCategoryType(s string) (CategoryType, error) {
	switch CategoryType(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryTypeIncome:
		return CategoryTypeIncome, nil
	case CategoryTypeExpense:
		return CategoryTypeExpense, nil
	}
	return "", apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown category type %q", s))
}

// Category groups entries as income or expense.
type Category struct {
	ID          string
	Name        string
	Type        CategoryType
	Icon        string
	Description string
}

// CategoryRecord is the persisted form of a Category, also embedded in entries.
type CategoryRecord struct {
	ID          string `json:"category_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// NewCategory creates a category with a fresh id.
func NewCategory(name string, categoryType CategoryType, icon, description string) (*Category, error) {
	name, err := requireName(name, "Category")
	if err != nil {
		return nil, err
	}
	if _, err := ParseCategoryType(string(categoryType)); err != nil {
		return nil, err
	}
	return &Category{
		ID:          uuid.New(),
		Name:        name,
		Type:        categoryType,
		Icon:        icon,
		Description: description,
	}, nil
}

// Rename sets a new non-empty name.
func (c *Category) Rename(name string) error {
	name, err := requireName(name, "Category")
	if err != nil {
		return err
	}
	c.Name = name
	return nil
}

func (c *Category) UpdateIcon(icon string) { c.Icon = icon }

func (c *Category) UpdateDescription(description string) { c.Description = description }

// Snapshot returns an independent copy for embedding in an entry.
func (c *Category) Snapshot() Category {
	return *c
}

// Record returns the persisted form of c.
func (c *Category) Record() CategoryRecord {
	return CategoryRecord{
		ID:          c.ID,
		Name:        c.Name,
		Type:        string(c.Type),
		Icon:        c.Icon,
		Description: c.Description,
	}
}

// CategoryFromRecord rebuilds a Category, rejecting unknown types.
func CategoryFromRecord(r CategoryRecord) (*Category, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("category record without id")
	}
	t, err := ParseCategoryType(r.Type)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", r.ID, err)
	}
	return &Category{
		ID:          r.ID,
		Name:        r.Name,
		Type:        t,
		Icon:        r.Icon,
		Description: r.Description,
	}, nil
}

func requireName(name, what string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.WithMessage(apperrors.ErrValidation, what+" name cannot be empty")
	}
	return name, nil
}
