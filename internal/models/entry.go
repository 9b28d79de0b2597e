package models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/uuid"
)

// DefaultCurrency is used when an entry is created without a currency code.
const DefaultCurrency = "CNY"

// Entry is a single income or expense record. Its Category is a copy taken
// when the entry was created or recategorized, so later edits to the
// category itself never change history.
type Entry struct {
	ID        string
	UserID    string
	Category  Category
	Title     string
	Amount    decimal.Decimal
	Currency  string
	Note      string
	Timestamp Timestamp
	Images    []string
	Tags      []Tag
	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// EntryRecord is the persisted form of an Entry.
type EntryRecord struct {
	ID        string         `json:"entry_id"`
	UserID    string         `json:"user_id"`
	Category  CategoryRecord `json:"category"`
	Title     string         `json:"title"`
	Amount    string         `json:"amount"`
	Currency  string         `json:"currency"`
	Note      string         `json:"note"`
	Timestamp string         `json:"timestamp"`
	Images    []string       `json:"images"`
	Tags      []TagRecord    `json:"tags"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// EntryParams holds the fields needed to create an entry.
type EntryParams struct {
	UserID    string
	Category  *Category
	Title     string
	Amount    decimal.Decimal
	Currency  string
	Note      string
	Timestamp Timestamp
	Images    []string
}

// NewEntry validates p and creates an entry. A zero Timestamp means now.
func NewEntry(p EntryParams) (*Entry, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "Title cannot be empty")
	}
	if err := requirePositive(p.Amount); err != nil {
		return nil, err
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.Category == nil {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "Category is required")
	}
	now := Now()
	ts := p.Timestamp
	if ts.IsZero() {
		ts = now
	}
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img != "" && !slices.Contains(images, img) {
			images = append(images, img)
		}
	}
	return &Entry{
		ID:        uuid.New(),
		UserID:    p.UserID,
		Category:  p.Category.Snapshot(),
		Title:     p.Title,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Note:      p.Note,
		Timestamp: ts,
		Images:    images,
		Tags:      []Tag{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (e *Entry) touch() { e.UpdatedAt = Now() }

// HasTag reports whether a tag with id is attached.
func (e *Entry) HasTag(id string) bool {
	return slices.ContainsFunc(e.Tags, func(t Tag) bool { return t.ID == id })
}

// AddTag attaches a copy of tag. It returns false if the tag is already attached.
func (e *Entry) AddTag(tag *Tag) bool {
	if tag == nil || e.HasTag(tag.ID) {
		return false
	}
	e.Tags = append(e.Tags, *tag)
	e.touch()
	return true
}

// RemoveTag detaches the tag with id. It returns false if it was not attached.
func (e *Entry) RemoveTag(id string) bool {
	i := slices.IndexFunc(e.Tags, func(t Tag) bool { return t.ID == id })
	if i < 0 {
		return false
	}
	e.Tags = slices.Delete(e.Tags, i, i+1)
	e.touch()
	return true
}

// AddImage appends path unless it is already present.
func (e *Entry) AddImage(path string) bool {
	if path == "" || slices.Contains(e.Images, path) {
		return false
	}
	e.Images = append(e.Images, path)
	e.touch()
	return true
}

func (e *Entry) RemoveImage(path string) bool {
	i := slices.Index(e.Images, path)
	if i < 0 {
		return false
	}
	e.Images = slices.Delete(e.Images, i, i+1)
	e.touch()
	return true
}

func (e *Entry) UpdateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.WithMessage(apperrors.ErrValidation, "Title cannot be empty")
	}
	e.Title = title
	e.touch()
	return nil
}

// UpdateAmount replaces the amount, which must stay positive.
func (e *Entry) UpdateAmount(amount decimal.Decimal) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	e.Amount = amount
	e.touch()
	return nil
}

// UpdateCategory re-snapshots the entry's category.
func (e *Entry) UpdateCategory(c *Category) {
	e.Category = c.Snapshot()
	e.touch()
}

func (e *Entry) UpdateNote(note string) {
	e.Note = note
	e.touch()
}

// Record returns the persisted form of e.
func (e *Entry) Record() EntryRecord {
	images := make([]string, len(e.Images))
	copy(images, e.Images)
	tags := make([]TagRecord, 0, len(e.Tags))
	for i := range e.Tags {
		tags = append(tags, e.Tags[i].Record())
	}
	return EntryRecord{
		ID:        e.ID,
		UserID:    e.UserID,
		Category:  e.Category.Record(),
		Title:     e.Title,
		Amount:    e.Amount.String(),
		Currency:  e.Currency,
		Note:      e.Note,
		Timestamp: e.Timestamp.String(),
		Images:    images,
		Tags:      tags,
		CreatedAt: e.CreatedAt.String(),
		UpdatedAt: e.UpdatedAt.String(),
	}
}

// EntryFromRecord rebuilds an Entry. It fails on malformed ids, amounts or timestamps.
func EntryFromRecord(r EntryRecord) (*Entry, error) {
	if !uuid.IsValid(r.ID) {
		return nil, fmt.Errorf("entry record with invalid id %q", r.ID)
	}
	amount, err := ParseAmount(r.Amount)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", r.ID, err)
	}
	ts, err := ParseTimestamp(r.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("entry %s timestamp: %w", r.ID, err)
	}
	created, err := ParseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("entry %s created_at: %w", r.ID, err)
	}
	updated, err := ParseTimestamp(r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("entry %s updated_at: %w", r.ID, err)
	}
	category, err := CategoryFromRecord(r.Category)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", r.ID, err)
	}
	tags := make([]Tag, 0, len(r.Tags))
	for _, tr := range r.Tags {
		tag, err := TagFromRecord(tr)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", r.ID, err)
		}
		tags = append(tags, *tag)
	}
	images := make([]string, len(r.Images))
	copy(images, r.Images)
	return &Entry{
		ID:        r.ID,
		UserID:    r.UserID,
		Category:  *category,
		Title:     r.Title,
		Amount:    amount,
		Currency:  r.Currency,
		Note:      r.Note,
		Timestamp: ts,
		Images:    images,
		Tags:      tags,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func requirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrValidation, "Amount must be greater than zero")
	}
	return nil
}
