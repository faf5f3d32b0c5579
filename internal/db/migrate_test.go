package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"device", "session_records", "deep_breath_events", "commands"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_session_records_started",
		"idx_deep_breath_events_occurred",
		"idx_commands_issued",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_AddsCommandSource(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO commands (id, action, issued_at, created_at, source) VALUES ('c', 'start', 'x', 'x', 'widget')`)
	require.NoError(t, err)
}

func TestMigrate_RejectsInvalidOutcome(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO session_records (id, started_at, ended_at, duration_seconds, outcome, created_at)
		VALUES ('r', 'a', 'b', 60, 'abandoned', 'c')`)
	assert.Error(t, err)
}

func TestOpenDB_PragmasApplyToEveryConnection(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "focussync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxIdleConns(2)

	ctx := context.Background()
	c1, err := db.Conn(ctx)
	require.NoError(t, err)
	defer c1.Close()
	c2, err := db.Conn(ctx)
	require.NoError(t, err)
	defer c2.Close()

	for _, c := range []*sql.Conn{c1, c2} {
		var timeout int
		require.NoError(t, c.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&timeout))
		assert.Equal(t, busyTimeoutMS, timeout)

		var mode string
		require.NoError(t, c.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode))
		assert.Equal(t, "wal", mode)
	}
}
