package database

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/models"
)

// EntryQuery selects entries. Zero-valued fields are not applied; all
// applied filters must match.
type EntryQuery struct {
	UserID     string
	CategoryID string
	// TagIDs matches entries carrying at least one of the ids.
	TagIDs    []string
	StartDate *models.Timestamp
	EndDate   *models.Timestamp
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	// Keyword is matched case-insensitively against title or note.
	Keyword string
}

// Validate checks the query parameters themselves. It never looks at data.
func (q EntryQuery) Validate() error {
	if q.StartDate != nil && q.StartDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidQuery, "start_date is not a valid timestamp")
	}
	if q.EndDate != nil && q.EndDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidQuery, "end_date is not a valid timestamp")
	}
	if q.StartDate != nil && q.EndDate != nil {
		if !q.StartDate.SameKind(*q.EndDate) {
			return apperrors.WithMessage(apperrors.ErrTimezoneMismatch, "start_date and end_date must both carry a timezone or both omit it")
		}
		if q.StartDate.After(*q.EndDate) {
			return apperrors.WithMessage(apperrors.ErrInvalidRange, "start_date must not be after end_date")
		}
	}
	if q.MinAmount != nil && q.MaxAmount != nil && q.MinAmount.GreaterThan(*q.MaxAmount) {
		return apperrors.WithMessage(apperrors.ErrInvalidRange, "min_amount must not exceed max_amount")
	}
	return nil
}

// QueryEntries scans every entry once and returns the matches, most recent
// first. Invalid parameters fail before any record is read. Stored records
// whose timestamp or amount cannot be parsed, or whose timestamp kind
// differs from a provided bound, are skipped.
func (s *Store) QueryEntries(q EntryQuery) ([]*models.Entry, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	keyword := strings.ToLower(strings.TrimSpace(q.Keyword))
	var tagSet map[string]struct{}
	if len(q.TagIDs) > 0 {
		tagSet = make(map[string]struct{}, len(q.TagIDs))
		for _, id := range q.TagIDs {
			tagSet[id] = struct{}{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]*models.Entry, 0)
	var skipped int
	for _, id := range sortedKeys(s.data.Entries) {
		var r models.EntryRecord
		if err := json.Unmarshal(s.data.Entries[id], &r); err != nil {
			skipped++
			continue
		}

		if q.UserID != "" && r.UserID != q.UserID {
			continue
		}
		if q.CategoryID != "" && r.Category.ID != q.CategoryID {
			continue
		}
		if tagSet != nil && !hasAnyTag(r.Tags, tagSet) {
			continue
		}

		if q.StartDate != nil || q.EndDate != nil {
			ts, err := models.ParseTimestamp(r.Timestamp)
			if err != nil {
				skipped++
				continue
			}
			if q.StartDate != nil && (!ts.SameKind(*q.StartDate) || ts.Before(*q.StartDate)) {
				continue
			}
			if q.EndDate != nil && (!ts.SameKind(*q.EndDate) || ts.After(*q.EndDate)) {
				continue
			}
		}

		if q.MinAmount != nil || q.MaxAmount != nil {
			amount, err := models.ParseAmount(r.Amount)
			if err != nil {
				skipped++
				continue
			}
			if q.MinAmount != nil && amount.LessThan(*q.MinAmount) {
				continue
			}
			if q.MaxAmount != nil && amount.GreaterThan(*q.MaxAmount) {
				continue
			}
		}

		if keyword != "" &&
			!strings.Contains(strings.ToLower(r.Title), keyword) &&
			!strings.Contains(strings.ToLower(r.Note), keyword) {
			continue
		}

		e, err := models.EntryFromRecord(r)
		if err != nil {
			skipped++
			continue
		}
		matches = append(matches, e)
	}
	if skipped > 0 {
		s.log.Warnw("skipped unreadable entries during query", "count", skipped)
	}

	// Naive and zoned timestamps only meet here when no date bound was
	// given; they are then ordered with naive readings taken as UTC.
	slices.SortStableFunc(matches, func(a, b *models.Entry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return matches, nil
}

func hasAnyTag(tags []models.TagRecord, want map[string]struct{}) bool {
	for _, t := range tags {
		if _, ok := want[t.ID]; ok {
			return true
		}
	}
	return false
}
