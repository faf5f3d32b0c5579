package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type DeviceRepo interface {
	Get(ctx context.Context) (*domain.Device, error)
	// Create stores the identity unless one exists already and returns the
	// stored one.
	Create(ctx context.Context, d *domain.Device) (*domain.Device, error)
	Rename(ctx context.Context, name string) error
}

type SessionRecordRepo interface {
	Create(ctx context.Context, r *domain.SessionRecord) error
	ListBetween(ctx context.Context, from, to time.Time) ([]*domain.SessionRecord, error)
	SummarizeBetween(ctx context.Context, from, to time.Time) ([]domain.OutcomeSummary, error)
}

type DeepBreathEventRepo interface {
	Create(ctx context.Context, e *domain.DeepBreathEvent) error
	CountByKindBetween(ctx context.Context, from, to time.Time) (map[domain.DeepBreathEventKind]int, error)
}

type CommandRepo interface {
	Create(ctx context.Context, c *domain.Command) error
	ListPending(ctx context.Context) ([]*domain.Command, error)
	DeleteAll(ctx context.Context) (int64, error)
}
