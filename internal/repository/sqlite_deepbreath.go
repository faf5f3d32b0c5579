package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/focussync/internal/db"
	"github.com/alexanderramin/focussync/internal/domain"
)

type SQLiteDeepBreathEventRepo struct {
	db db.DBTX
}

func NewSQLiteDeepBreathEventRepo(conn db.DBTX) *SQLiteDeepBreathEventRepo {
	return &SQLiteDeepBreathEventRepo{db: conn}
}

func (r *SQLiteDeepBreathEventRepo) Create(ctx context.Context, e *domain.DeepBreathEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO deep_breath_events (id, kind, occurred_at) VALUES (?, ?, ?)`,
		e.ID, string(e.Kind), formatTime(e.OccurredAt))
	if err != nil {
		return fmt.Errorf("inserting deep breath event: %w", err)
	}
	return nil
}

func (r *SQLiteDeepBreathEventRepo) CountByKindBetween(ctx context.Context, from, to time.Time) (map[domain.DeepBreathEventKind]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM deep_breath_events
		WHERE occurred_at >= ? AND occurred_at < ?
		GROUP BY kind`,
		formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("counting deep breath events: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.DeepBreathEventKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scanning deep breath count: %w", err)
		}
		counts[domain.DeepBreathEventKind(kind)] = n
	}
	return counts, rows.Err()
}
