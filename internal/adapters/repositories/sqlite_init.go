package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	createDispatchRunsQuery := `
	CREATE TABLE IF NOT EXISTS dispatch_runs (
		id TEXT PRIMARY KEY,
		strategy TEXT NOT NULL,
		firefighters INTEGER NOT NULL,
		fires TEXT NOT NULL,
		decisions TEXT NOT NULL,
		total_distance INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);
	`

	createPlanCacheQuery := `
	CREATE TABLE IF NOT EXISTS plan_cache (
		cache_key TEXT PRIMARY KEY,
		decisions TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_dispatch_runs_finished_at
	ON dispatch_runs(finished_at);
	`

	return execSchema(db, createDispatchRunsQuery, createPlanCacheQuery, createIndexQuery)
}

// Initialize the Postgres database schema.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	createDispatchRunsQuery := `
	CREATE TABLE IF NOT EXISTS dispatch_runs (
		id TEXT PRIMARY KEY,
		strategy TEXT NOT NULL,
		firefighters INTEGER NOT NULL,
		fires JSONB NOT NULL,
		decisions JSONB NOT NULL,
		total_distance INTEGER NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_dispatch_runs_finished_at
	ON dispatch_runs(finished_at DESC);
	`

	return execSchema(db, createDispatchRunsQuery, createIndexQuery)
}

func execSchema(db *sql.DB, statements ...string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
