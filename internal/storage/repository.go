package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"

	"fintrack/internal/core"
	"fintrack/internal/store"

	_ "modernc.org/sqlite"
)

const seededKey = "defaults_seeded"

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLiteRepository is the durable Store. It owns a single pooled connection,
// so a transaction in progress serializes every other statement.
type SQLiteRepository struct {
	db      *sqlx.DB
	path    string
	version atomic.Uint64
	seedMu  sync.Mutex
	now     func() time.Time
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sqlx.Connect("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	slog.Info("SQLite store opened", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Version() uint64 { return r.version.Load() }

// Ping is used by readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Init seeds the defaults. The store_meta marker is claimed in the same
// transaction as the inserts, so concurrent or repeated calls seed at most once.
func (r *SQLiteRepository) Init(ctx context.Context) error {
	r.seedMu.Lock()
	defer r.seedMu.Unlock()

	seeded := false
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO store_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
			seededKey, r.now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("claim seed marker: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("claim seed marker: %w", err)
		}
		if n == 0 {
			return nil
		}
		for _, c := range core.DefaultCategories() {
			if _, err := tx.NamedExecContext(ctx, insertCategorySQL, toCategoryRow(c)); err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return err
	}
	if seeded {
		r.version.Add(1)
		slog.InfoContext(ctx, "Default categories seeded", "count", len(core.DefaultCategories()))
	}
	return nil
}

// inTx runs fn in a transaction, committing when it returns nil.
func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// written bumps the version for a committed write.
func (r *SQLiteRepository) written() {
	r.version.Add(1)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
