package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrMissingCategory  = errors.New("missing category")
	ErrUnknownCategory  = errors.New("category does not exist")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidPeriod    = errors.New("invalid budget period")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidColor     = errors.New("invalid color")
	ErrCategoryInUse    = errors.New("category in use")
	ErrIncomeCategory   = errors.New("budgets track expense categories only")
)

// ValidationError reports which input field was rejected. Nothing is persisted
// when one is returned.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// NewValidationError builds a ValidationError for callers outside core.
func NewValidationError(field string, err error) error {
	return invalid(field, err)
}

// CategoryInUseError is returned when a category still referenced by
// transactions is deleted. Its message is shown to users as is.
type CategoryInUseError struct {
	CategoryID int64
	Count      int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("This category is used in %d transaction(s). Please reassign those transactions first.", e.Count)
}

func (e *CategoryInUseError) Is(target error) bool {
	return target == ErrCategoryInUse
}
