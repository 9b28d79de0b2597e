package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/uuid"
)

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodDaily   BudgetPeriod = "daily"
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// DefaultThreshold is the alert percentage for budgets created without one.
const DefaultThreshold = 80

// ParseBudgetPeriod accepts the lowercase tag of a budget period.
func ParseBudgetPeriod(s string) (BudgetPeriod, error) {
	switch p := BudgetPeriod(strings.ToLower(strings.TrimSpace(s))); p {
	case BudgetPeriodDaily, BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodYearly:
		return p, nil
	}
	return "", apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown budget period %q", s))
}

var hundred = decimal.NewFromInt(100)

// Budget caps spending over a recurring period, either across the whole
// account (empty CategoryID) or within one category.
type Budget struct {
	ID               string
	UserID           string
	CategoryID       string
	Period           BudgetPeriod
	Limit            decimal.Decimal
	ThresholdPercent int
	Active           bool
}

// BudgetRecord is the persisted form of a Budget.
type BudgetRecord struct {
	ID               string  `json:"budget_id"`
	UserID           string  `json:"user_id"`
	CategoryID       *string `json:"category_id"`
	Period           string  `json:"period"`
	Limit            string  `json:"limit_amount"`
	ThresholdPercent int     `json:"threshold_percent"`
	Active           bool    `json:"is_active"`
}

// NewBudget creates an active budget.
func NewBudget(userID, categoryID string, period BudgetPeriod, limit decimal.Decimal, threshold int) (*Budget, error) {
	if _, err := ParseBudgetPeriod(string(period)); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}
	return &Budget{
		ID:               uuid.New(),
		UserID:           userID,
		CategoryID:       categoryID,
		Period:           period,
		Limit:            limit,
		ThresholdPercent: threshold,
		Active:           true,
	}, nil
}

// IsExceeded reports whether spend is strictly over the limit.
func (b *Budget) IsExceeded(spend decimal.Decimal) bool {
	return spend.GreaterThan(b.Limit)
}

// IsThresholdReached reports whether spend is at or over limit*threshold/100.
func (b *Budget) IsThresholdReached(spend decimal.Decimal) bool {
	return spend.GreaterThanOrEqual(b.ThresholdAmount())
}

// ThresholdAmount is the spend at which the alert fires.
func (b *Budget) ThresholdAmount() decimal.Decimal {
	return b.Limit.Mul(decimal.NewFromInt(int64(b.ThresholdPercent))).Div(hundred)
}

// Remaining is limit minus spend and goes negative once exceeded.
func (b *Budget) Remaining(spend decimal.Decimal) decimal.Decimal {
	return b.Limit.Sub(spend)
}

// UsagePercentage is spend as a percentage of the limit.
func (b *Budget) UsagePercentage(spend decimal.Decimal) float64 {
	if b.Limit.IsZero() {
		return 0
	}
	return spend.Div(b.Limit).Mul(hundred).InexactFloat64()
}

func (b *Budget) UpdateLimit(limit decimal.Decimal) error {
	if err := validateLimit(limit); err != nil {
		return err
	}
	b.Limit = limit
	return nil
}

func (b *Budget) UpdateThreshold(threshold int) error {
	if err := validateThreshold(threshold); err != nil {
		return err
	}
	b.ThresholdPercent = threshold
	return nil
}

func (b *Budget) Activate() { b.Active = true }

func (b *Budget) Deactivate() { b.Active = false }

// Record returns the persisted form of b.
func (b *Budget) Record() BudgetRecord {
	var categoryID *string
	if b.CategoryID != "" {
		id := b.CategoryID
		categoryID = &id
	}
	return BudgetRecord{
		ID:               b.ID,
		UserID:           b.UserID,
		CategoryID:       categoryID,
		Period:           string(b.Period),
		Limit:            b.Limit.String(),
		ThresholdPercent: b.ThresholdPercent,
		Active:           b.Active,
	}
}

// BudgetFromRecord rebuilds a Budget.
func BudgetFromRecord(r BudgetRecord) (*Budget, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("budget record without id")
	}
	period, err := ParseBudgetPeriod(r.Period)
	if err != nil {
		return nil, fmt.Errorf("budget %s: %w", r.ID, err)
	}
	limit, err := ParseAmount(r.Limit)
	if err != nil {
		return nil, fmt.Errorf("budget %s: %w", r.ID, err)
	}
	b := &Budget{
		ID:               r.ID,
		UserID:           r.UserID,
		Period:           period,
		Limit:            limit,
		ThresholdPercent: r.ThresholdPercent,
		Active:           r.Active,
	}
	if r.CategoryID != nil {
		b.CategoryID = *r.CategoryID
	}
	return b, nil
}

func validateLimit(limit decimal.Decimal) error {
	if !limit.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrValidation, "Budget limit must be greater than zero")
	}
	return nil
}

func validateThreshold(threshold int) error {
	if threshold < 0 || threshold > 100 {
		return apperrors.WithMessage(apperrors.ErrValidation, "Threshold must be between 0 and 100")
	}
	return nil
}
