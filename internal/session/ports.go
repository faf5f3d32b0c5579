package session

import (
	"context"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
)

// Publisher pushes local snapshots to the replication channel. Calls must not
// block the owning goroutine; failures are the publisher's concern.
type Publisher interface {
	PublishState(s domain.SharedSessionState)
	PublishPreferences(p domain.SharedPreferences)
}

// Blocker is the distraction-blocking collaborator.
type Blocker interface {
	BeginBlocking()
	EndBlocking()
	// OverrideSelection replaces the blocking profile; nil clears the override.
	OverrideSelection(profile *domain.BlockingProfile)
}

// Notifier delivers best-effort user notifications.
type Notifier interface {
	NotifyExternalStart(durationMinutes int)
	NotifyBlockStart(block domain.ScheduleBlock)
	NotifyBlockEnd(block domain.ScheduleBlock)
	NotifyScheduleChange(enabled bool, name string)
}

// Stats receives session history and deep-breath events, fire-and-forget.
type Stats interface {
	RecordSession(start, end time.Time, durationSeconds int, outcome domain.SessionOutcome, tag string)
	RecordDeepBreathEvent(kind domain.DeepBreathEventKind)
}

// CommandSource yields pending widget commands.
type CommandSource interface {
	// TakeFresh consumes pending commands and returns the newest one issued
	// within maxAge of now, or nil when there is none.
	TakeFresh(ctx context.Context, now time.Time, maxAge time.Duration) (*domain.Command, error)
}

type NoopPublisher struct{}

func (NoopPublisher) PublishState(domain.SharedSessionState)      {}
func (NoopPublisher) PublishPreferences(domain.SharedPreferences) {}

type NoopBlocker struct{}

func (NoopBlocker) BeginBlocking()                            {}
func (NoopBlocker) EndBlocking()                              {}
func (NoopBlocker) OverrideSelection(*domain.BlockingProfile) {}

type NoopNotifier struct{}

func (NoopNotifier) NotifyExternalStart(int)               {}
func (NoopNotifier) NotifyBlockStart(domain.ScheduleBlock) {}
func (NoopNotifier) NotifyBlockEnd(domain.ScheduleBlock)   {}
func (NoopNotifier) NotifyScheduleChange(bool, string)     {}

type NoopStats struct{}

func (NoopStats) RecordSession(time.Time, time.Time, int, domain.SessionOutcome, string) {}
func (NoopStats) RecordDeepBreathEvent(domain.DeepBreathEventKind)                       {}
