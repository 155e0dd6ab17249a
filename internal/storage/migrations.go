package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// schemaStep is one forward-only schema change.
type schemaStep struct {
	version    int
	name       string
	statements []string
}

var schemaSteps = []schemaStep{
	{
		version: 1,
		name:    "kv_records",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS kv (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				version INTEGER NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "kv_updated_at_index",
		statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_kv_updated_at ON kv (updated_at)`,
		},
	},
}

// migrate brings the schema up to the newest step. Each step runs in its own
// transaction together with its bookkeeping row.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at DATETIME NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var applied int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&applied); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, step := range schemaSteps {
		if step.version <= applied {
			continue
		}
		if err := applyStep(ctx, db, step); err != nil {
			return err
		}
	}
	return nil
}

func applyStep(ctx context.Context, db *sql.DB, step schemaStep) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("schema step %d: %w", step.version, err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range step.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema step %d (%s): %w", step.version, step.name, err)
		}
	}
	// Another process may have raced us to the same step.
	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		step.version, step.name, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("record schema step %d: %w", step.version, err)
	}
	return tx.Commit()
}
