package services

import (
	"github.com/shopspring/decimal"

	"pocketledger/internal/models"
	"pocketledger/internal/pagination"
)

// RegisterInput holds the fields for creating an account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=8"`
	Password string `json:"password" validate:"required,min=6"`
	Nickname string `json:"nickname" validate:"max=64"`
	Avatar   string `json:"avatar"`
}

// ProfileUpdate holds optional profile fields. Empty strings are left unchanged.
type ProfileUpdate struct {
	Nickname string `json:"nickname" validate:"max=64"`
	Avatar   string `json:"avatar"`
	Phone    string `json:"phone" validate:"omitempty,min=8"`
}

// AuthServicer defines the contract for registration and sessions.
type AuthServicer interface {
	Register(in RegisterInput) (*models.User, error)
	Login(email, password string) (*Session, error)
	Logout(sess *Session) error
	CurrentUser(sess *Session) (*models.User, error)
	ChangePassword(sess *Session, oldPassword, newPassword string) error
	UpdateProfile(sess *Session, in ProfileUpdate) (*models.User, error)
	DeleteAccount(sess *Session) error
}

// NewEntryInput holds the fields for recording an entry.
type NewEntryInput struct {
	CategoryID string          `json:"category_id" validate:"required"`
	Title      string          `json:"title" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency" validate:"omitempty,iso4217"`
	Note       string          `json:"note"`
	// Timestamp defaults to now when zero.
	Timestamp models.Timestamp `json:"timestamp"`
	// TagIDs that do not exist are ignored.
	TagIDs []string `json:"tag_ids"`
	Images []string `json:"images"`
}

// EntryUpdate holds optional entry changes. Nil fields are left unchanged.
type EntryUpdate struct {
	Title      *string
	Amount     *decimal.Decimal
	CategoryID *string
	Note       *string
}

// EntryFilter holds optional query parameters in their textual form.
// Dates are ISO-8601, amounts are decimal strings.
type EntryFilter struct {
	CategoryID string
	TagIDs     []string
	StartDate  string
	EndDate    string
	MinAmount  string
	MaxAmount  string
	Keyword    string
}

// EntryServicer defines the contract for entry-related business logic.
type EntryServicer interface {
	AddEntry(sess *Session, in NewEntryInput) (*models.Entry, error)
	GetEntry(sess *Session, entryID string) (*models.Entry, error)
	UpdateEntry(sess *Session, entryID string, upd EntryUpdate) (*models.Entry, error)
	DeleteEntry(sess *Session, entryID string) error
	QueryEntries(sess *Session, filter EntryFilter) ([]*models.Entry, error)
	ListEntries(sess *Session, filter EntryFilter, page pagination.PageRequest) (*pagination.PageResponse[*models.Entry], error)
	AddTagToEntry(sess *Session, entryID, tagID string) (*models.Entry, error)
	RemoveTagFromEntry(sess *Session, entryID, tagID string) (*models.Entry, error)
	AddImageToEntry(sess *Session, entryID, path string) (*models.Entry, error)
	RemoveImageFromEntry(sess *Session, entryID, path string) (*models.Entry, error)
}

// CategoryInput holds the fields for a new category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type" validate:"required,category_type"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// CategoryUpdate holds optional category changes.
type CategoryUpdate struct {
	Name        *string
	Icon        *string
	Description *string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	ListCategories() []*models.Category
	ListCategoriesByType(categoryType string) ([]*models.Category, error)
	GetCategory(categoryID string) (*models.Category, error)
	AddCategory(sess *Session, in CategoryInput) (*models.Category, error)
	UpdateCategory(sess *Session, categoryID string, upd CategoryUpdate) (*models.Category, error)
	DeleteCategory(sess *Session, categoryID string) error
}

// TagInput holds the fields for a new tag.
type TagInput struct {
	Name        string `json:"name" validate:"required"`
	Color       string `json:"color" validate:"omitempty,hex_color"`
	Description string `json:"description"`
}

// TagUpdate holds optional tag changes.
type TagUpdate struct {
	Name  *string
	Color *string `validate:"omitempty,hex_color"`
}

// TagServicer defines the contract for tag-related business logic.
type TagServicer interface {
	ListTags() []*models.Tag
	AddTag(sess *Session, in TagInput) (*models.Tag, error)
	UpdateTag(sess *Session, tagID string, upd TagUpdate) (*models.Tag, error)
	MergeTags(sess *Session, keepID, mergeID string) (*models.Tag, error)
	DeleteTag(sess *Session, tagID string) error
}

// BudgetInput holds the fields for a new budget.
type BudgetInput struct {
	// CategoryID is empty for a whole-account budget.
	CategoryID string          `json:"category_id"`
	Period     string          `json:"period" validate:"required,budget_period"`
	Limit      decimal.Decimal `json:"limit_amount"`
	// Threshold defaults to 80 when nil.
	Threshold *int `json:"threshold_percent" validate:"omitempty,gte=0,lte=100"`
}

// BudgetUpdate holds optional budget changes.
type BudgetUpdate struct {
	Limit     *decimal.Decimal
	Threshold *int
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	AddBudget(sess *Session, in BudgetInput) (*models.Budget, error)
	ListBudgets(sess *Session) ([]*models.Budget, error)
	UpdateBudget(sess *Session, budgetID string, upd BudgetUpdate) (*models.Budget, error)
	SetBudgetActive(sess *Session, budgetID string, active bool) (*models.Budget, error)
	DeleteBudget(sess *Session, budgetID string) error
}

// Summary holds income, expense and balance over one window.
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// CategoryStat is one row of a per-category breakdown.
type CategoryStat struct {
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

// TagStat is one row of a per-tag breakdown.
type TagStat struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// DailyStat is one calendar day of income and expense.
type DailyStat struct {
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// MonthlyStat is one calendar month of income and expense.
type MonthlyStat struct {
	Month   int             `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// BudgetStatus reports spending against an active budget for its current period.
type BudgetStatus struct {
	BudgetID           string              `json:"budget_id"`
	CategoryID         string              `json:"category_id,omitempty"`
	Period             models.BudgetPeriod `json:"period"`
	PeriodStart        models.Timestamp    `json:"period_start"`
	PeriodEnd          models.Timestamp    `json:"period_end"`
	LimitAmount        decimal.Decimal     `json:"limit_amount"`
	CurrentAmount      decimal.Decimal     `json:"current_amount"`
	Remaining          decimal.Decimal     `json:"remaining"`
	Percentage         float64             `json:"percentage"`
	IsExceeded         bool                `json:"is_exceeded"`
	IsThresholdReached bool                `json:"is_threshold_reached"`
}

// StatsServicer defines the read-only statistics computations.
type StatsServicer interface {
	TotalByType(userID string, categoryType models.CategoryType, start, end *models.Timestamp) (decimal.Decimal, error)
	Balance(userID string, start, end *models.Timestamp) (decimal.Decimal, error)
	Summary(userID string, start, end *models.Timestamp) (*Summary, error)
	ByCategory(userID string, start, end *models.Timestamp) ([]CategoryStat, error)
	ByTag(userID string, start, end *models.Timestamp) ([]TagStat, error)
	Daily(userID string, start, end models.Timestamp) ([]DailyStat, error)
	Monthly(userID string, year int) ([]MonthlyStat, error)
	TopExpenses(userID string, start, end *models.Timestamp, limit int) ([]*models.Entry, error)
	BudgetStatus(userID string) ([]BudgetStatus, error)
}

// ExportFormat selects the output written by ExportEntries.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// XLSXOptions selects optional spreadsheet columns.
type XLSXOptions struct {
	IncludeTags   bool
	IncludeImages bool
}

// ExportServicer writes entries and statistics to files. It never mutates the store.
type ExportServicer interface {
	ExportCSV(entries []*models.Entry, path string, includeTags bool) error
	ExportXLSX(entries []*models.Entry, path string, opts XLSXOptions) error
	ExportStatisticsXLSX(userID, path string, start, end *models.Timestamp) error
	ExportEntries(sess *Session, format ExportFormat, path string, filter EntryFilter) (int, error)
}

// AuditServicer records mutating actions.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID string, changes map[string]any)
}
