package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/focussync/internal/db"
	"github.com/alexanderramin/focussync/internal/domain"
)

// SQLiteCommandRepo stores widget commands until the engine consumes them.
type SQLiteCommandRepo struct {
	db db.DBTX
}

func NewSQLiteCommandRepo(conn db.DBTX) *SQLiteCommandRepo {
	return &SQLiteCommandRepo{db: conn}
}

func (r *SQLiteCommandRepo) Create(ctx context.Context, c *domain.Command) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO commands (id, action, issued_at, created_at, source) VALUES (?, ?, ?, ?, ?)`,
		c.ID, string(c.Action), formatTime(c.IssuedAt), formatTime(c.CreatedAt), c.Source)
	if err != nil {
		return fmt.Errorf("inserting command: %w", err)
	}
	return nil
}

// ListPending returns every stored command, oldest first.
func (r *SQLiteCommandRepo) ListPending(ctx context.Context) ([]*domain.Command, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, action, issued_at, created_at, source FROM commands ORDER BY issued_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing commands: %w", err)
	}
	defer rows.Close()

	var out []*domain.Command
	for rows.Next() {
		var c domain.Command
		var action, issuedAt, createdAt string
		if err := rows.Scan(&c.ID, &action, &issuedAt, &createdAt, &c.Source); err != nil {
			return nil, fmt.Errorf("scanning command: %w", err)
		}
		c.Action = domain.CommandAction(action)
		if c.IssuedAt, err = parseTime(issuedAt, "issued_at"); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *SQLiteCommandRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM commands`)
	if err != nil {
		return 0, fmt.Errorf("deleting commands: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting commands: %w", err)
	}
	return n, nil
}
