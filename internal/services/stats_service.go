package services

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"pocketledger/internal/database"
	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/models"
)

const dateLayout = "2006-01-02"

// EntrySource is the part of the store the statistics need.
type EntrySource interface {
	QueryEntries(q database.EntryQuery) ([]*models.Entry, error)
	GetBudgetsByUser(userID string) []*models.Budget
}

// statsService computes read-only aggregates over query results.
type statsService struct {
	store EntrySource
	now   func() time.Time
}

// NewStatsService creates a new StatsServicer using the local clock.
func NewStatsService(store EntrySource) StatsServicer {
	return NewStatsServiceWithClock(store, time.Now)
}

// NewStatsServiceWithClock creates a StatsServicer whose budget periods are
// computed relative to now().
func NewStatsServiceWithClock(store EntrySource, now func() time.Time) StatsServicer {
	return &statsService{store: store, now: now}
}

func (s *statsService) window(userID string, start, end *models.Timestamp) ([]*models.Entry, error) {
	return s.store.QueryEntries(database.EntryQuery{UserID: userID, StartDate: start, EndDate: end})
}

// TotalByType sums the amounts of entries whose category has the given type.
func (s *statsService) TotalByType(userID string, categoryType models.CategoryType, start, end *models.Timestamp) (decimal.Decimal, error) {
	entries, err := s.window(userID, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	return sumByType(entries, categoryType), nil
}

// Balance is income minus expense over the window.
func (s *statsService) Balance(userID string, start, end *models.Timestamp) (decimal.Decimal, error) {
	summary, err := s.Summary(userID, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	return summary.Balance, nil
}

func (s *statsService) Summary(userID string, start, end *models.Timestamp) (*Summary, error) {
	entries, err := s.window(userID, start, end)
	if err != nil {
		return nil, err
	}
	income := sumByType(entries, models.CategoryTypeIncome)
	expense := sumByType(entries, models.CategoryTypeExpense)
	return &Summary{Income: income, Expense: expense, Balance: income.Sub(expense)}, nil
}

// ByCategory groups the window by category name. Percentages are of the
// window's total amount across all types.
func (s *statsService) ByCategory(userID string, start, end *models.Timestamp) ([]CategoryStat, error) {
	entries, err := s.window(userID, start, end)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	index := map[string]int{}
	var stats []CategoryStat
	for _, e := range entries {
		total = total.Add(e.Amount)
		i, ok := index[e.Category.Name]
		if !ok {
			i = len(stats)
			index[e.Category.Name] = i
			stats = append(stats, CategoryStat{Name: e.Category.Name, Amount: decimal.Zero})
		}
		stats[i].Amount = stats[i].Amount.Add(e.Amount)
		stats[i].Count++
	}
	for i := range stats {
		stats[i].Percentage = percentOf(stats[i].Amount, total)
	}
	slices.SortFunc(stats, func(a, b CategoryStat) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return stats, nil
}

// ByTag groups the window by tag name. An entry counts once for every tag it carries.
func (s *statsService) ByTag(userID string, start, end *models.Timestamp) ([]TagStat, error) {
	entries, err := s.window(userID, start, end)
	if err != nil {
		return nil, err
	}

	index := map[string]int{}
	var stats []TagStat
	for _, e := range entries {
		for _, tag := range e.Tags {
			i, ok := index[tag.Name]
			if !ok {
				i = len(stats)
				index[tag.Name] = i
				stats = append(stats, TagStat{Name: tag.Name, Amount: decimal.Zero})
			}
			stats[i].Amount = stats[i].Amount.Add(e.Amount)
			stats[i].Count++
		}
	}
	slices.SortFunc(stats, func(a, b TagStat) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return stats, nil
}

// Daily returns one row per calendar day from start's date to end's date,
// including days without entries.
func (s *statsService) Daily(userID string, start, end models.Timestamp) ([]DailyStat, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidQuery, "daily statistics need both start_date and end_date")
	}
	if !start.SameKind(end) {
		return nil, apperrors.WithMessage(apperrors.ErrTimezoneMismatch, "start_date and end_date must both carry a timezone or both omit it")
	}
	if start.After(end) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRange, "start_date must not be after end_date")
	}

	from, to := start.StartOfDay(), end.EndOfDay()
	entries, err := s.window(userID, &from, &to)
	if err != nil {
		return nil, err
	}

	// Each bound and each entry is read as a calendar date in its own frame.
	var rows []DailyStat
	index := map[string]int{}
	for d, last := calendarDate(start), calendarDate(end); !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		index[key] = len(rows)
		rows = append(rows, DailyStat{Date: key, Income: decimal.Zero, Expense: decimal.Zero, Balance: decimal.Zero})
	}
	for _, e := range entries {
		i, ok := index[calendarDate(e.Timestamp).Format(dateLayout)]
		if !ok {
			continue
		}
		switch e.Category.Type {
		case models.CategoryTypeIncome:
			rows[i].Income = rows[i].Income.Add(e.Amount)
		case models.CategoryTypeExpense:
			rows[i].Expense = rows[i].Expense.Add(e.Amount)
		}
	}
	for i := range rows {
		rows[i].Balance = rows[i].Income.Sub(rows[i].Expense)
	}
	return rows, nil
}

func calendarDate(ts models.Timestamp) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Monthly returns twelve rows for the calendar year in naive local time.
func (s *statsService) Monthly(userID string, year int) ([]MonthlyStat, error) {
	if year < 1 || year > 9999 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("year %d is out of range", year))
	}
	from := models.Naive(year, time.January, 1, 0, 0, 0)
	to := models.Naive(year, time.December, 31, 0, 0, 0).EndOfDay()
	entries, err := s.window(userID, &from, &to)
	if err != nil {
		return nil, err
	}

	rows := make([]MonthlyStat, 12)
	for i := range rows {
		rows[i] = MonthlyStat{Month: i + 1, Income: decimal.Zero, Expense: decimal.Zero}
	}
	for _, e := range entries {
		_, month, _ := e.Timestamp.Date()
		row := &rows[month-1]
		switch e.Category.Type {
		case models.CategoryTypeIncome:
			row.Income = row.Income.Add(e.Amount)
		case models.CategoryTypeExpense:
			row.Expense = row.Expense.Add(e.Amount)
		}
	}
	for i := range rows {
		rows[i].Balance = rows[i].Income.Sub(rows[i].Expense)
	}
	return rows, nil
}

// TopExpenses returns the largest expense entries of the window.
func (s *statsService) TopExpenses(userID string, start, end *models.Timestamp, limit int) ([]*models.Entry, error) {
	if limit <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be positive")
	}
	entries, err := s.window(userID, start, end)
	if err != nil {
		return nil, err
	}
	expenses := slices.DeleteFunc(entries, func(e *models.Entry) bool {
		return e.Category.Type != models.CategoryTypeExpense
	})
	slices.SortStableFunc(expenses, func(a, b *models.Entry) int {
		return b.Amount.Cmp(a.Amount)
	})
	if len(expenses) > limit {
		expenses = expenses[:limit]
	}
	return expenses, nil
}

// BudgetStatus evaluates every active budget of the user against the
// expense spend in its current period.
func (s *statsService) BudgetStatus(userID string) ([]BudgetStatus, error) {
	now := models.NewNaive(s.now())
	var result []BudgetStatus
	for _, b := range s.store.GetBudgetsByUser(userID) {
		if !b.Active {
			continue
		}
		from, to := PeriodRange(b.Period, now)
		entries, err := s.store.QueryEntries(database.EntryQuery{
			UserID:     userID,
			CategoryID: b.CategoryID,
			StartDate:  &from,
			EndDate:    &to,
		})
		if err != nil {
			return nil, err
		}
		spend := sumByType(entries, models.CategoryTypeExpense)
		result = append(result, BudgetStatus{
			BudgetID:           b.ID,
			CategoryID:         b.CategoryID,
			Period:             b.Period,
			PeriodStart:        from,
			PeriodEnd:          to,
			LimitAmount:        b.Limit,
			CurrentAmount:      spend,
			Remaining:          b.Remaining(spend),
			Percentage:         b.UsagePercentage(spend),
			IsExceeded:         b.IsExceeded(spend),
			IsThresholdReached: b.IsThresholdReached(spend),
		})
	}
	return result, nil
}

// PeriodRange returns the inclusive window of the period containing now.
// Weeks run Monday to Sunday. Ends fall on the last whole second.
func PeriodRange(period models.BudgetPeriod, now models.Timestamp) (models.Timestamp, models.Timestamp) {
	today := now.StartOfDay()
	switch period {
	case models.BudgetPeriodWeekly:
		offset := (int(today.Time().Weekday()) + 6) % 7
		monday := today.AddDate(0, 0, -offset)
		return monday, lastSecond(monday.AddDate(0, 0, 7))
	case models.BudgetPeriodMonthly:
		first := today.AddDate(0, 0, 1-today.Time().Day())
		return first, lastSecond(first.AddDate(0, 1, 0))
	case models.BudgetPeriodYearly:
		y, _, _ := today.Date()
		return models.Naive(y, time.January, 1, 0, 0, 0), models.Naive(y, time.December, 31, 23, 59, 59)
	default:
		return today, lastSecond(today.AddDate(0, 0, 1))
	}
}

func lastSecond(next models.Timestamp) models.Timestamp {
	return next.Add(-time.Second)
}

func sumByType(entries []*models.Entry, categoryType models.CategoryType) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.Category.Type == categoryType {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func percentOf(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}
