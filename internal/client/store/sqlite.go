package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/pantrysync/restock/internal/client/migrations"
	"github.com/pantrysync/restock/internal/dbx"
	"github.com/pressly/goose/v3"
)

// SQLiteKV implements KV on a single-table sqlite database.
type SQLiteKV struct {
	db dbx.DBTX
}

// NewSQLiteKV returns a SQLiteKV bound to the given DBTX.
func NewSQLiteKV(db dbx.DBTX) *SQLiteKV {
	return &SQLiteKV{db: db}
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatal("failed to set goose dialect:", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// OpenDatabase opens (creating if needed) the local sqlite database at dsn
// and applies pending migrations. The caller owns the returned handle.
func OpenDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return db, nil
}

func (r *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `select value from kv where key=?`
	var value []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to select value: %w", err)
	}
	return value, true, nil
}

func (r *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	query := ` INSERT INTO kv (key, value)
			values (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	_, err := r.db.ExecContext(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("failed to upsert value: %w", err)
	}
	return nil
}

func (r *SQLiteKV) Delete(ctx context.Context, key string) error {
	query := `delete from kv where key=?`
	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	return nil
}
