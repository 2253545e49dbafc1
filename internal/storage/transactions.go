package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

const transactionColumns = `id, type, amount_cents, category_id, date, description, notes,
	receipt_image, payment_method, location, labels, created_at, updated_at`

const insertTransactionSQL = `INSERT INTO transactions
	(type, amount_cents, category_id, date, description, notes, receipt_image,
	 payment_method, location, labels, created_at, updated_at)
	VALUES (:type, :amount_cents, :category_id, :date, :description, :notes, :receipt_image,
	 :payment_method, :location, :labels, :created_at, :updated_at)`

const updateTransactionSQL = `UPDATE transactions SET
	type = :type, amount_cents = :amount_cents, category_id = :category_id, date = :date,
	description = :description, notes = :notes, receipt_image = :receipt_image,
	payment_method = :payment_method, location = :location, labels = :labels,
	updated_at = :updated_at
	WHERE id = :id`

func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	now := core.NormalizeInstant(r.now())
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	row, err := toTransactionRow(t)
	if err != nil {
		return 0, fmt.Errorf("encode transaction: %w", err)
	}

	res, err := r.db.NamedExecContext(ctx, insertTransactionSQL, row)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	r.written()

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"category_id", t.CategoryID,
		"date", t.Date.Format("2006-01-02"))

	return id, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id int64, patch core.TransactionPatch) error {
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var row transactionRow
		if err := tx.GetContext(ctx, &row, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id); err != nil {
			return notFound(err)
		}
		current, err := row.toCore()
		if err != nil {
			return fmt.Errorf("decode transaction: %w", err)
		}
		next := patch.Apply(current)
		next.UpdatedAt = core.NormalizeInstant(r.now())
		updated, err := toTransactionRow(next)
		if err != nil {
			return fmt.Errorf("encode transaction: %w", err)
		}
		_, err = tx.NamedExecContext(ctx, updateTransactionSQL, updated)
		return err
	})
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", id, err)
	}
	r.written()
	slog.InfoContext(ctx, "Transaction updated in SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	r.written()
	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var row transactionRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id); err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, notFound(err))
	}
	t, err := row.toCore()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode transaction %d: %w", id, err)
	}
	return t, nil
}

// ListTransactions builds its WHERE clause so that date ranges with a category
// are answered from the (date, category_id) index.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, toMillis(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, toMillis(f.To))
	}
	if f.CategoryID != 0 {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}

	var q strings.Builder
	q.WriteString(`SELECT ` + transactionColumns + ` FROM transactions`)
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if f.Order == store.OrderDateDesc {
		q.WriteString(" ORDER BY date DESC, id DESC")
	} else {
		q.WriteString(" ORDER BY date ASC, id ASC")
	}
	if f.Limit > 0 {
		q.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	var rows []transactionRow
	if err := r.db.SelectContext(ctx, &rows, q.String(), args...); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := row.toCore()
		if err != nil {
			return nil, fmt.Errorf("decode transaction %d: %w", row.ID, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *SQLiteRepository) CountTransactionsByCategory(ctx context.Context, categoryID int64) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID); err != nil {
		return 0, fmt.Errorf("count transactions for category %d: %w", categoryID, err)
	}
	return n, nil
}
