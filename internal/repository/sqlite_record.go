package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/focussync/internal/db"
	"github.com/alexanderramin/focussync/internal/domain"
)

// SQLiteSessionRecordRepo implements SessionRecordRepo using a SQLite database.
type SQLiteSessionRecordRepo struct {
	db db.DBTX
}

func NewSQLiteSessionRecordRepo(conn db.DBTX) *SQLiteSessionRecordRepo {
	return &SQLiteSessionRecordRepo{db: conn}
}

func (r *SQLiteSessionRecordRepo) Create(ctx context.Context, rec *domain.SessionRecord) error {
	query := `INSERT INTO session_records (id, started_at, ended_at, duration_seconds, outcome, tag, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		formatTime(rec.StartedAt),
		formatTime(rec.EndedAt),
		rec.DurationSeconds,
		string(rec.Outcome),
		rec.Tag,
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting session record: %w", err)
	}
	return nil
}

// ListBetween returns records that started in [from, to), oldest first.
func (r *SQLiteSessionRecordRepo) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.SessionRecord, error) {
	query := `SELECT id, started_at, ended_at, duration_seconds, outcome, tag, created_at
		FROM session_records
		WHERE started_at >= ? AND started_at < ?
		ORDER BY started_at`
	rows, err := r.db.QueryContext(ctx, query, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("listing session records: %w", err)
	}
	defer rows.Close()
	return r.scanRecords(rows)
}

// SummarizeBetween counts records that started in [from, to) by outcome.
func (r *SQLiteSessionRecordRepo) SummarizeBetween(ctx context.Context, from, to time.Time) ([]domain.OutcomeSummary, error) {
	query := `SELECT outcome, COUNT(*), COALESCE(SUM(duration_seconds), 0)
		FROM session_records
		WHERE started_at >= ? AND started_at < ?
		GROUP BY outcome
		ORDER BY outcome`
	rows, err := r.db.QueryContext(ctx, query, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("summarizing session records: %w", err)
	}
	defer rows.Close()

	var out []domain.OutcomeSummary
	for rows.Next() {
		var s domain.OutcomeSummary
		var outcome string
		if err := rows.Scan(&outcome, &s.Count, &s.TotalSeconds); err != nil {
			return nil, fmt.Errorf("scanning outcome summary: %w", err)
		}
		s.Outcome = domain.SessionOutcome(outcome)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteSessionRecordRepo) scanRecords(rows *sql.Rows) ([]*domain.SessionRecord, error) {
	var records []*domain.SessionRecord
	for rows.Next() {
		var rec domain.SessionRecord
		var startedAt, endedAt, createdAt, outcome string
		if err := rows.Scan(&rec.ID, &startedAt, &endedAt, &rec.DurationSeconds, &outcome, &rec.Tag, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning session record: %w", err)
		}
		var err error
		if rec.StartedAt, err = parseTime(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = parseTime(endedAt, "ended_at"); err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		rec.Outcome = domain.SessionOutcome(outcome)
		records = append(records, &rec)
	}
	return records, rows.Err()
}
