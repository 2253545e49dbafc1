// Package export renders store contents as downloadable files.
package export

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Source is the read side of a store needed for a full export.
type Source interface {
	ListTransactions(ctx context.Context, filter store.TransactionFilter) ([]core.Transaction, error)
	ListCategories(ctx context.Context, typ core.TransactionType) ([]core.Category, error)
	ListBudgets(ctx context.Context, filter store.BudgetFilter) ([]core.Budget, error)
}

// Snapshot is the full JSON export document.
type Snapshot struct {
	Transactions []core.Transaction `json:"transactions"`
	Categories   []core.Category    `json:"categories"`
	Budgets      []core.Budget      `json:"budgets"`
	ExportDate   time.Time          `json:"exportDate"`
}

// BuildSnapshot reads the three tables concurrently. Empty tables export as
// empty arrays.
func BuildSnapshot(ctx context.Context, src Source, now time.Time) (Snapshot, error) {
	snap := Snapshot{ExportDate: core.NormalizeInstant(now)}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := src.ListTransactions(ctx, store.TransactionFilter{Order: store.OrderDateAsc})
		if err != nil {
			return fmt.Errorf("export transactions: %w", err)
		}
		snap.Transactions = txs
		return nil
	})
	g.Go(func() error {
		cats, err := src.ListCategories(ctx, "")
		if err != nil {
			return fmt.Errorf("export categories: %w", err)
		}
		snap.Categories = cats
		return nil
	})
	g.Go(func() error {
		budgets, err := src.ListBudgets(ctx, store.BudgetFilter{})
		if err != nil {
			return fmt.Errorf("export budgets: %w", err)
		}
		snap.Budgets = budgets
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	if snap.Transactions == nil {
		snap.Transactions = []core.Transaction{}
	}
	if snap.Categories == nil {
		snap.Categories = []core.Category{}
	}
	if snap.Budgets == nil {
		snap.Budgets = []core.Budget{}
	}
	return snap, nil
}

// SnapshotFilename names the export after its UTC date.
func SnapshotFilename(exportDate time.Time) string {
	return "finance-tracker-export-" + exportDate.UTC().Format("2006-01-02") + ".json"
}
