// Package store defines the persistence ports shared by every backend.
package store

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/core"
)

// ErrNotFound is returned for ids that do not exist. Update and Delete return
// it too; callers may treat it as a no-op.
var ErrNotFound = errors.New("not found")

const (
	OrderDateAsc  Order = "asc"
	OrderDateDesc Order = "desc"
)

type Order string

// TransactionFilter narrows ListTransactions. Zero fields do not constrain.
// From and To are inclusive.
type TransactionFilter struct {
	Type       core.TransactionType
	CategoryID int64
	From       time.Time
	To         time.Time
	Order      Order
	Limit      int
}

func (f TransactionFilter) Match(t core.Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.CategoryID != 0 && t.CategoryID != f.CategoryID {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	return true
}

// BudgetFilter narrows ListBudgets. Zero fields do not constrain.
type BudgetFilter struct {
	Period     core.Period
	CategoryID int64
}

func (f BudgetFilter) Match(b core.Budget) bool {
	if f.Period != "" && b.Period != f.Period {
		return false
	}
	if f.CategoryID != 0 && b.CategoryID != f.CategoryID {
		return false
	}
	return true
}

type TransactionStore interface {
	AddTransaction(ctx context.Context, t core.Transaction) (int64, error)
	UpdateTransaction(ctx context.Context, id int64, patch core.TransactionPatch) error
	DeleteTransaction(ctx context.Context, id int64) error
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]core.Transaction, error)
	CountTransactionsByCategory(ctx context.Context, categoryID int64) (int, error)
}

type CategoryStore interface {
	AddCategory(ctx context.Context, c core.Category) (int64, error)
	UpdateCategory(ctx context.Context, id int64, patch core.CategoryPatch) error
	// DeleteCategory deletes nothing and returns *core.CategoryInUseError
	// while transactions still reference the category.
	DeleteCategory(ctx context.Context, id int64) error
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context, typ core.TransactionType) ([]core.Category, error)
}

type BudgetStore interface {
	AddBudget(ctx context.Context, b core.Budget) (int64, error)
	UpdateBudget(ctx context.Context, id int64, patch core.BudgetPatch) error
	DeleteBudget(ctx context.Context, id int64) error
	GetBudget(ctx context.Context, id int64) (core.Budget, error)
	ListBudgets(ctx context.Context, filter BudgetFilter) ([]core.Budget, error)
}

// Store is a complete backend.
type Store interface {
	TransactionStore
	CategoryStore
	BudgetStore

	// Init seeds the default categories the first time a store is created.
	// Later calls never seed again, even when every category was deleted.
	Init(ctx context.Context) error

	// Version increases after every committed write.
	Version() uint64

	Close() error
}
