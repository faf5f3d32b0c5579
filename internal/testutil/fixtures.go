package testutil

import (
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/google/uuid"
)

// Session record options
type RecordOption func(*domain.SessionRecord)

func WithOutcome(o domain.SessionOutcome) RecordOption {
	return func(r *domain.SessionRecord) {
		r.Outcome = o
	}
}

func WithTag(tag string) RecordOption {
	return func(r *domain.SessionRecord) {
		r.Tag = tag
	}
}

func WithEndedAt(t time.Time) RecordOption {
	return func(r *domain.SessionRecord) {
		r.EndedAt = t
	}
}

// NewTestRecord builds a completed record of the given length starting at
// startedAt.
func NewTestRecord(startedAt time.Time, minutes int, opts ...RecordOption) *domain.SessionRecord {
	r := &domain.SessionRecord{
		ID:              uuid.New().String(),
		StartedAt:       startedAt,
		EndedAt:         startedAt.Add(time.Duration(minutes) * time.Minute),
		DurationSeconds: minutes * 60,
		Outcome:         domain.OutcomeCompleted,
		CreatedAt:       time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Command options
type CommandOption func(*domain.Command)

func WithSource(source string) CommandOption {
	return func(c *domain.Command) {
		c.Source = source
	}
}

func NewTestCommand(action domain.CommandAction, issuedAt time.Time, opts ...CommandOption) *domain.Command {
	c := &domain.Command{
		ID:        uuid.New().String(),
		Action:    action,
		IssuedAt:  issuedAt,
		CreatedAt: issuedAt,
		Source:    "test",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func NewTestDeepBreathEvent(kind domain.DeepBreathEventKind, at time.Time) *domain.DeepBreathEvent {
	return &domain.DeepBreathEvent{
		ID:         uuid.New().String(),
		Kind:       kind,
		OccurredAt: at,
	}
}
