package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

const budgetColumns = `id, category_id, amount_cents, period, start_date, end_date, name, is_recurring`

func (r *SQLiteRepository) AddBudget(ctx context.Context, b core.Budget) (int64, error) {
	res, err := r.db.NamedExecContext(ctx, `INSERT INTO budgets
		(category_id, amount_cents, period, start_date, end_date, name, is_recurring)
		VALUES (:category_id, :amount_cents, :period, :start_date, :end_date, :name, :is_recurring)`,
		toBudgetRow(b))
	if err != nil {
		return 0, fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create budget: %w", err)
	}
	r.written()
	slog.InfoContext(ctx, "Budget saved to SQLite",
		"id", id,
		"category_id", b.CategoryID,
		"amount_cents", b.Amount.Cents,
		"period", b.Period)
	return id, nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, id int64, patch core.BudgetPatch) error {
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var row budgetRow
		if err := tx.GetContext(ctx, &row, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id); err != nil {
			return notFound(err)
		}
		next := toBudgetRow(patch.Apply(row.toCore()))
		_, err := tx.NamedExecContext(ctx, `UPDATE budgets SET
			category_id = :category_id, amount_cents = :amount_cents, period = :period,
			start_date = :start_date, end_date = :end_date, name = :name, is_recurring = :is_recurring
			WHERE id = :id`, next)
		return err
	})
	if err != nil {
		return fmt.Errorf("update budget %d: %w", id, err)
	}
	r.written()
	slog.InfoContext(ctx, "Budget updated in SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	r.written()
	slog.InfoContext(ctx, "Budget deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	var row budgetRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id); err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, notFound(err))
	}
	return row.toCore(), nil
}

// ListBudgets filters on (period, category_id), matching the composite index.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, f store.BudgetFilter) ([]core.Budget, error) {
	q := `SELECT ` + budgetColumns + ` FROM budgets WHERE 1 = 1`
	var args []any
	if f.Period != "" {
		q += ` AND period = ?`
		args = append(args, string(f.Period))
	}
	if f.CategoryID != 0 {
		q += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	q += ` ORDER BY id`

	var rows []budgetRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.Budget, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}
