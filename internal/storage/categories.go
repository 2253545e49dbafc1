package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

const insertCategorySQL = `INSERT INTO categories (name, type, color, icon)
	VALUES (:name, :type, :color, :icon)`

func (r *SQLiteRepository) AddCategory(ctx context.Context, c core.Category) (int64, error) {
	res, err := r.db.NamedExecContext(ctx, insertCategorySQL, toCategoryRow(c))
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	r.written()
	slog.InfoContext(ctx, "Category saved to SQLite", "id", id, "name", c.Name, "type", c.Type)
	return id, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id int64, patch core.CategoryPatch) error {
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var row categoryRow
		if err := tx.GetContext(ctx, &row, `SELECT id, name, type, color, icon FROM categories WHERE id = ?`, id); err != nil {
			return notFound(err)
		}
		next := toCategoryRow(patch.Apply(row.toCore()))
		_, err := tx.NamedExecContext(ctx,
			`UPDATE categories SET name = :name, type = :type, color = :color, icon = :icon WHERE id = :id`, next)
		return err
	})
	if err != nil {
		return fmt.Errorf("update category %d: %w", id, err)
	}
	r.written()
	slog.InfoContext(ctx, "Category updated in SQLite", "id", id)
	return nil
}

// DeleteCategory checks references and deletes inside one transaction.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM categories WHERE id = ?`, id); err != nil {
			return err
		}
		if exists == 0 {
			return store.ErrNotFound
		}
		var refs int
		if err := tx.GetContext(ctx, &refs, `SELECT COUNT(*) FROM transactions WHERE category_id = ?`, id); err != nil {
			return err
		}
		if refs > 0 {
			return &core.CategoryInUseError{CategoryID: id, Count: refs}
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	r.written()
	slog.InfoContext(ctx, "Category deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var row categoryRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, name, type, color, icon FROM categories WHERE id = ?`, id); err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, notFound(err))
	}
	return row.toCore(), nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, typ core.TransactionType) ([]core.Category, error) {
	var (
		rows []categoryRow
		err  error
	)
	if typ == "" {
		err = r.db.SelectContext(ctx, &rows, `SELECT id, name, type, color, icon FROM categories ORDER BY id`)
	} else {
		err = r.db.SelectContext(ctx, &rows, `SELECT id, name, type, color, icon FROM categories WHERE type = ? ORDER BY id`, string(typ))
	}
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}
