package registry

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/ledgervault/internal/dbx"
	"github.com/dmitrijs2005/ledgervault/internal/server/migrations"
)

// PostgresRepository implements the upload index over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open opens a pgx-backed database handle for the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// Create inserts one upload record. Re-inserting the same transaction id
// is a no-op; ledger transactions are immutable, so the first record wins.
func (r *PostgresRepository) Create(ctx context.Context, u *Upload) error {
	query := `
		INSERT INTO uploads (tx_id, filename, size_bytes, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (tx_id) DO NOTHING;
	`
	_, err := r.db.ExecContext(ctx, query, u.TxID, u.Filename, u.SizeBytes)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// List returns all recorded uploads, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Upload, error) {
	query := `
		SELECT tx_id, filename, size_bytes, created_at
		FROM uploads
		ORDER BY created_at DESC;
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select uploads: %w", err)
	}
	defer rows.Close()

	var result []*Upload
	for rows.Next() {
		var item Upload
		if err := rows.Scan(&item.TxID, &item.Filename, &item.SizeBytes, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}
