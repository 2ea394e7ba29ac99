package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pantrysync/restock/internal/common"
	"github.com/pantrysync/restock/internal/dbx"
	"github.com/pantrysync/restock/internal/server/migrations"
	"github.com/pressly/goose/v3"
)

// PostgresRepository keeps snapshots in a postgres table, one row per
// namespace.
type PostgresRepository struct {
	db *sql.DB
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, r.db, ".")
}

// NewPostgresRepository opens the database at dsn and applies pending
// migrations.
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	r := &PostgresRepository{db: db}
	if err := r.runMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return r, nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresRepository) Get(ctx context.Context, code string) ([]byte, error) {
	return r.get(ctx, r.db, code)
}

func (r *PostgresRepository) get(ctx context.Context, db dbx.DBTX, code string) ([]byte, error) {
	query := `select payload from snapshots where code=$1`
	var payload []byte
	err := db.QueryRowContext(ctx, query, code).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select snapshot: %w", err)
	}
	return payload, nil
}

func (r *PostgresRepository) Set(ctx context.Context, code string, payload []byte) error {
	query := ` INSERT INTO snapshots (code, payload, updated_at)
			values ($1, $2, now())
			ON CONFLICT(code) DO UPDATE SET payload = excluded.payload, updated_at = now()
	`
	_, err := r.db.ExecContext(ctx, query, code, payload)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}
