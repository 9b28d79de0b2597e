// Package errors provides custom error types for the ledger.
// Service-layer and store-level failures use AppError so every caller
// receives a stable code plus a human-readable message.
package errors

// Kind classifies an AppError by how the caller is expected to react.
type Kind int

const (
	// KindBusiness covers expected outcomes such as validation, auth and not-found.
	KindBusiness Kind = iota
	// KindInput marks malformed call parameters: a bug in the calling code.
	KindInput
	// KindPersistence marks failures writing to disk.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindPersistence:
		return "persistence"
	default:
		return "business"
	}
}

// AppError represents a structured application error with an error code,
// human-readable message, kind, and optional internal error.
type AppError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Kind     Kind   `json:"-"`
	Internal error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so wrapped
// copies of a sentinel still match it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/kind but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Kind:     sentinel.Kind,
		Internal: internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  message,
		Kind:     sentinel.Kind,
		Internal: sentinel.Internal,
	}
}

// IsInput reports whether err carries an input-kind AppError.
func IsInput(err error) bool {
	for err != nil {
		if ae, ok := err.(*AppError); ok {
			return ae.Kind == KindInput
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Query parameter errors.
var (
	ErrInvalidInput     = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", Kind: KindInput}
	ErrInvalidQuery     = &AppError{Code: "INVALID_QUERY", Message: "Invalid query parameter", Kind: KindInput}
	ErrInvalidRange     = &AppError{Code: "INVALID_RANGE", Message: "Range start is after range end", Kind: KindInput}
	ErrTimezoneMismatch = &AppError{Code: "TIMEZONE_MISMATCH", Message: "Cannot compare a zoned timestamp with a naive one", Kind: KindInput}
)

// General errors.
var (
	ErrValidation = &AppError{Code: "VALIDATION_FAILED", Message: "Validation failed", Kind: KindBusiness}
	ErrForbidden  = &AppError{Code: "FORBIDDEN", Message: "No permission to modify this record", Kind: KindBusiness}
	ErrNoData     = &AppError{Code: "NO_DATA", Message: "No data to export", Kind: KindBusiness}
)

// Session and user errors.
var (
	ErrNotLoggedIn    = &AppError{Code: "NOT_LOGGED_IN", Message: "Please log in first", Kind: KindBusiness}
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", Kind: KindBusiness}
	ErrWrongPassword  = &AppError{Code: "WRONG_PASSWORD", Message: "Wrong password", Kind: KindBusiness}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", Kind: KindBusiness}
)

// Record errors.
var (
	ErrEntryNotFound    = &AppError{Code: "ENTRY_NOT_FOUND", Message: "Entry not found", Kind: KindBusiness}
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", Kind: KindBusiness}
	ErrTagNotFound      = &AppError{Code: "TAG_NOT_FOUND", Message: "Tag not found", Kind: KindBusiness}
	ErrTagExists        = &AppError{Code: "TAG_EXISTS", Message: "Tag already attached to this entry", Kind: KindBusiness}
	ErrBudgetNotFound   = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", Kind: KindBusiness}
)

// Persistence errors.
var (
	ErrPersistFailed = &AppError{Code: "PERSIST_FAILED", Message: "Failed to save data", Kind: KindPersistence}
	ErrExportFailed  = &AppError{Code: "EXPORT_FAILED", Message: "Export failed", Kind: KindPersistence}
)
