package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS device (
		singleton  INTEGER PRIMARY KEY CHECK(singleton = 1),
		id         TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS session_records (
		id               TEXT PRIMARY KEY,
		started_at       TEXT NOT NULL,
		ended_at         TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL CHECK(duration_seconds > 0),
		outcome          TEXT NOT NULL CHECK(outcome IN ('completed','stopped')),
		tag              TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_session_records_started ON session_records(started_at)`,

	`CREATE TABLE IF NOT EXISTS deep_breath_events (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL CHECK(kind IN ('started','confirmed','timed_out')),
		occurred_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_deep_breath_events_occurred ON deep_breath_events(occurred_at)`,

	`CREATE TABLE IF NOT EXISTS commands (
		id         TEXT PRIMARY KEY,
		action     TEXT NOT NULL CHECK(action IN ('start','stop')),
		issued_at  TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_commands_issued ON commands(issued_at)`,

	// Added after the first release: where the command came from.
	`ALTER TABLE commands ADD COLUMN source TEXT NOT NULL DEFAULT ''`,
}
