package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/focussync/internal/db"
	"github.com/alexanderramin/focussync/internal/domain"
)

// SQLiteDeviceRepo implements DeviceRepo using a SQLite database.
type SQLiteDeviceRepo struct {
	db db.DBTX
}

func NewSQLiteDeviceRepo(conn db.DBTX) *SQLiteDeviceRepo {
	return &SQLiteDeviceRepo{db: conn}
}

func (r *SQLiteDeviceRepo) Get(ctx context.Context) (*domain.Device, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM device WHERE singleton = 1`)

	var d domain.Device
	var createdAt string
	if err := row.Scan(&d.ID, &d.Name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("device: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning device: %w", err)
	}
	t, err := parseTime(createdAt, "device created_at")
	if err != nil {
		return nil, err
	}
	d.CreatedAt = t
	return &d, nil
}

func (r *SQLiteDeviceRepo) Create(ctx context.Context, d *domain.Device) (*domain.Device, error) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO device (singleton, id, name, created_at) VALUES (1, ?, ?, ?)`,
		d.ID, d.Name, formatTime(d.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting device: %w", err)
	}
	return r.Get(ctx)
}

func (r *SQLiteDeviceRepo) Rename(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE device SET name = ? WHERE singleton = 1`, name)
	if err != nil {
		return fmt.Errorf("renaming device: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("renaming device: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("device: %w", ErrNotFound)
	}
	return nil
}
