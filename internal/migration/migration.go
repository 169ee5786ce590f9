package migration

import (
	"context"

	"gocausal/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
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

// Run executes all database migrations in the correct order. Every step
// is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDiscoveryRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create discovery_runs table")
	}

	if err := r.addLabelColumn(ctx, db); err != nil {
		return errors.Wrap(err, "failed to add discovery_runs label column")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createDiscoveryRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS discovery_runs (
			id UUID PRIMARY KEY,
			algorithm VARCHAR(16) NOT NULL,
			variables JSONB NOT NULL,
			tiers JSONB,
			params JSONB NOT NULL DEFAULT '{}',
			samples INTEGER NOT NULL,
			dataset_hash VARCHAR(64) NOT NULL DEFAULT '',
			graph JSONB,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			duration_ms BIGINT NOT NULL DEFAULT 0
		)
	`)
	return err
}

// addLabelColumn upgrades tables created before runs carried a label
func (r *MigrationRunner) addLabelColumn(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_name = 'discovery_runs' AND column_name = 'label'
			) THEN
				ALTER TABLE discovery_runs ADD COLUMN label VARCHAR(255) NOT NULL DEFAULT '';
			END IF;
		END $$;
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_discovery_runs_created_at ON discovery_runs(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_discovery_runs_algorithm ON discovery_runs(algorithm)`,
		`CREATE INDEX IF NOT EXISTS idx_discovery_runs_label ON discovery_runs(label)`,
		`CREATE INDEX IF NOT EXISTS idx_discovery_runs_dataset_hash ON discovery_runs(dataset_hash)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
