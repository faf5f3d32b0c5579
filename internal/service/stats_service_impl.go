package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/alexanderramin/focussync/internal/repository"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultStatsBuffer is the number of pending writes held before new ones are
// dropped.
const DefaultStatsBuffer = 128

type StatsConfig struct {
	Clock  clockwork.Clock
	Buffer int
	Logger *slog.Logger
}

type statsService struct {
	records  repository.SessionRecordRepo
	events   repository.DeepBreathEventRepo
	clock    clockwork.Clock
	logger   *slog.Logger
	pending  chan statsWrite
	observer UseCaseObserver
}

type statsWrite struct {
	record *domain.SessionRecord
	event  *domain.DeepBreathEvent
}

func NewStatsService(
	records repository.SessionRecordRepo,
	events repository.DeepBreathEventRepo,
	cfg StatsConfig,
	observers ...UseCaseObserver,
) StatsService {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultStatsBuffer
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &statsService{
		records:  records,
		events:   events,
		clock:    cfg.Clock,
		logger:   cfg.Logger.With("component", "stats"),
		pending:  make(chan statsWrite, cfg.Buffer),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *statsService) RecordSession(start, end time.Time, durationSeconds int, outcome domain.SessionOutcome, tag string) {
	if durationSeconds <= 0 {
		s.logger.Debug("skipping empty session record", "outcome", outcome)
		return
	}
	s.enqueue(statsWrite{record: &domain.SessionRecord{
		ID:              uuid.New().String(),
		StartedAt:       start.UTC(),
		EndedAt:         end.UTC(),
		DurationSeconds: durationSeconds,
		Outcome:         outcome,
		Tag:             tag,
		CreatedAt:       s.clock.Now().UTC(),
	}})
}

func (s *statsService) RecordDeepBreathEvent(kind domain.DeepBreathEventKind) {
	s.enqueue(statsWrite{event: &domain.DeepBreathEvent{
		ID:         uuid.New().String(),
		Kind:       kind,
		OccurredAt: s.clock.Now().UTC(),
	}})
}

func (s *statsService) enqueue(w statsWrite) {
	select {
	case s.pending <- w:
	default:
		s.logger.Warn("stats buffer full, dropping entry")
	}
}

// Run writes queued entries until ctx is cancelled, then flushes what is
// already buffered.
func (s *statsService) Run(ctx context.Context) error {
	for {
		select {
		case w := <-s.pending:
			s.write(ctx, w)
		case <-ctx.Done():
			s.flush(context.WithoutCancel(ctx))
			return ctx.Err()
		}
	}
}

func (s *statsService) flush(ctx context.Context) {
	for {
		select {
		case w := <-s.pending:
			s.write(ctx, w)
		default:
			return
		}
	}
}

func (s *statsService) write(ctx context.Context, w statsWrite) {
	var err error
	switch {
	case w.record != nil:
		err = s.records.Create(ctx, w.record)
	case w.event != nil:
		err = s.events.Create(ctx, w.event)
	}
	if err != nil {
		s.logger.Warn("writing stats entry", "error", err)
	}
}

func (s *statsService) Summary(ctx context.Context, from, to time.Time) (summary *StatsSummary, err error) {
	defer observe(ctx, s.observer, "stats-summary", time.Now(), &err,
		slog.Time("from", from),
		slog.Time("to", to))

	if !to.After(from) {
		return nil, fmt.Errorf("invalid window: %s is not after %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	outcomes, err := s.records.SummarizeBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	breaths, err := s.events.CountByKindBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &StatsSummary{From: from, To: to, Outcomes: outcomes, DeepBreath: breaths}, nil
}

func (s *statsService) ListSessions(ctx context.Context, from, to time.Time) ([]*domain.SessionRecord, error) {
	return s.records.ListBetween(ctx, from, to)
}
