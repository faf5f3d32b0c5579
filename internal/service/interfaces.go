package service

import (
	"context"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/alexanderramin/focussync/internal/session"
)

// StatsSummary aggregates session history over a window.
type StatsSummary struct {
	From       time.Time
	To         time.Time
	Outcomes   []domain.OutcomeSummary
	DeepBreath map[domain.DeepBreathEventKind]int
}

// FocusSeconds is the total elapsed time of sessions in the window.
func (s *StatsSummary) FocusSeconds() int {
	total := 0
	for _, o := range s.Outcomes {
		total += o.TotalSeconds
	}
	return total
}

// Sessions is the number of sessions in the window.
func (s *StatsSummary) Sessions() int {
	total := 0
	for _, o := range s.Outcomes {
		total += o.Count
	}
	return total
}

// StatsService implements the session Stats port with an asynchronous
// writer. Run must be running for recorded entries to reach storage.
type StatsService interface {
	session.Stats
	Run(ctx context.Context) error
	Summary(ctx context.Context, from, to time.Time) (*StatsSummary, error)
	ListSessions(ctx context.Context, from, to time.Time) ([]*domain.SessionRecord, error)
}

// CommandService is the widget command queue.
type CommandService interface {
	session.CommandSource
	Enqueue(ctx context.Context, action domain.CommandAction, source string) (*domain.Command, error)
}

type DeviceService interface {
	// EnsureOriginID returns the persisted origin-id, generating one on
	// first use.
	EnsureOriginID(ctx context.Context) (string, error)
	Get(ctx context.Context) (*domain.Device, error)
	Rename(ctx context.Context, name string) error
}
