package models

import (
	"fmt"

	"pocketledger/internal/uuid"
)

// DefaultTagColor is the neutral gray given to tags created without a color.
const DefaultTagColor = "#808080"

// Tag is a free-form label. Tags are identified by ID alone.
type Tag struct {
	ID          string
	Name        string
	Color       string
	Description string
}

// TagRecord is the persisted form of a Tag.
type TagRecord struct {
	ID          string `json:"tag_id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// NewTag creates a tag with a fresh id.
func NewTag(name, color, description string) (*Tag, error) {
	name, err := requireName(name, "Tag")
	if err != nil {
		return nil, err
	}
	if color == "" {
		color = DefaultTagColor
	}
	return &Tag{
		ID:          uuid.New(),
		Name:        name,
		Color:       color,
		Description: description,
	}, nil
}

func (t *Tag) Rename(name string) error {
	name, err := requireName(name, "Tag")
	if err != nil {
		return err
	}
	t.Name = name
	return nil
}

func (t *Tag) UpdateColor(color string) {
	if color == "" {
		color = DefaultTagColor
	}
	t.Color = color
}

// MergeWith folds other into t. t keeps its id and name and only adopts
// other's description when it has none of its own.
func (t *Tag) MergeWith(other *Tag) {
	if other == nil {
		return
	}
	if t.Description == "" && other.Description != "" {
		t.Description = other.Description
	}
}

// Record returns the persisted form of t.
func (t *Tag) Record() TagRecord {
	return TagRecord{
		ID:          t.ID,
		Name:        t.Name,
		Color:       t.Color,
		Description: t.Description,
	}
}

// TagFromRecord rebuilds a Tag.
func TagFromRecord(r TagRecord) (*Tag, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("tag record without id")
	}
	color := r.Color
	if color == "" {
		color = DefaultTagColor
	}
	return &Tag{
		ID:          r.ID,
		Name:        r.Name,
		Color:       color,
		Description: r.Description,
	}, nil
}
