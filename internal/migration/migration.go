package migration

import (
	"context"

	"tidytab/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner handles database schema migrations.
// Statements are written to run unchanged on PostgreSQL and SQLite.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSessionBlobsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create session_blobs table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createSessionBlobsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS session_blobs (
			session_key VARCHAR(255) PRIMARY KEY,
			payload TEXT NOT NULL,
			version BIGINT NOT NULL DEFAULT 1,
			updated_at BIGINT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_session_blobs_updated_at ON session_blobs (updated_at)
	`)
	return err
}
