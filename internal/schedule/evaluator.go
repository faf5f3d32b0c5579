// Package schedule starts and stops sessions from time-of-day rules.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/alexanderramin/focussync/internal/metrics"
	"github.com/alexanderramin/focussync/internal/session"
	"github.com/jonboulle/clockwork"
)

// Controller is the session surface the evaluator drives. session.Engine
// implements it.
type Controller interface {
	View(ctx context.Context) (domain.LocalSessionView, error)
	StartScheduledSession(ctx context.Context, minutes int, tag, blockID string) (bool, error)
	StopScheduledSessionIfNeeded(ctx context.Context) error
}

// Source supplies the active schedule and the blocking profiles it refers to.
type Source interface {
	ActiveSchedule() (domain.Schedule, bool)
	Profile(name string) (*domain.BlockingProfile, bool)
}

type EvaluatorConfig struct {
	Clock    clockwork.Clock
	Location *time.Location
	Blocker  session.Blocker
	Notifier session.Notifier
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Evaluator compares the clock against the active schedule. It is not safe
// for concurrent use; the Runner calls it from one job at a time.
type Evaluator struct {
	ctrl     Controller
	src      Source
	clock    clockwork.Clock
	loc      *time.Location
	blocker  session.Blocker
	notifier session.Notifier
	recorder metrics.Recorder
	logger   *slog.Logger

	enabledKnown bool
	enabled      bool
	scheduleName string
	active       *domain.ScheduleBlock
	// started is the occurrence key of the last block this evaluator started.
	started    string
	overridden bool
}

func NewEvaluator(ctrl Controller, src Source, cfg EvaluatorConfig) *Evaluator {
	e := &Evaluator{
		ctrl:     ctrl,
		src:      src,
		clock:    cfg.Clock,
		loc:      cfg.Location,
		blocker:  cfg.Blocker,
		notifier: cfg.Notifier,
		recorder: metrics.OrNoop(cfg.Recorder),
		logger:   cfg.Logger,
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.blocker == nil {
		e.blocker = session.NoopBlocker{}
	}
	if e.notifier == nil {
		e.notifier = session.NoopNotifier{}
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Evaluate runs one pass. A running session, whatever started it, is never
// preempted; only sessions started by a schedule block are stopped when the
// block ends.
func (e *Evaluator) Evaluate(ctx context.Context) error {
	sched, ok := e.src.ActiveSchedule()
	enabled := ok && sched.Enabled
	e.trackEnabled(enabled, sched.Name)
	if !enabled {
		return e.teardown(ctx)
	}

	now := e.clock.Now().In(e.loc)
	block, found := sched.ActiveBlock(now)
	if !found {
		return e.teardown(ctx)
	}

	if e.active == nil || e.active.ID != block.ID {
		if e.active != nil {
			e.notifier.NotifyBlockEnd(*e.active)
		}
		e.active = &block
	}

	occurrence := occurrenceKey(block, now)
	if e.started == occurrence {
		return nil
	}

	view, err := e.ctrl.View(ctx)
	if err != nil {
		return fmt.Errorf("reading session view: %w", err)
	}
	if view.IsRunning {
		return nil
	}

	minutes := remainingMinutes(block, now)
	// The override is set first so BeginBlocking sees the block's profile.
	e.override(block)
	started, err := e.ctrl.StartScheduledSession(ctx, minutes, block.Label, block.ID)
	if err != nil || !started {
		// A session started in between keeps its own blocking selection.
		e.clearOverride()
	}
	if err != nil {
		return fmt.Errorf("starting session for block %s: %w", block.ID, err)
	}
	if !started {
		return nil
	}
	e.started = occurrence
	e.recorder.IncScheduleAction("start")
	e.notifier.NotifyBlockStart(block)
	e.logger.Info("schedule block started session",
		"block_id", block.ID,
		"kind", string(block.Kind),
		"minutes", minutes)
	return nil
}

func (e *Evaluator) trackEnabled(enabled bool, name string) {
	if e.enabledKnown && e.enabled != enabled {
		if !enabled && name == "" {
			name = e.scheduleName
		}
		e.notifier.NotifyScheduleChange(enabled, name)
		e.logger.Info("schedule changed", "enabled", enabled, "schedule", name)
	}
	e.enabledKnown = true
	e.enabled = enabled
	if name != "" {
		e.scheduleName = name
	}
}

// teardown leaves schedule control: the block-started session is stopped and
// the profile override cleared.
func (e *Evaluator) teardown(ctx context.Context) error {
	if e.active != nil {
		ended := *e.active
		e.active = nil
		e.notifier.NotifyBlockEnd(ended)
		e.logger.Info("schedule block ended", "block_id", ended.ID)
	}

	view, err := e.ctrl.View(ctx)
	if err != nil {
		return fmt.Errorf("reading session view: %w", err)
	}
	if view.IsRunning && view.Origin.IsSchedule() {
		if err := e.ctrl.StopScheduledSessionIfNeeded(ctx); err != nil {
			return fmt.Errorf("stopping scheduled session: %w", err)
		}
		e.recorder.IncScheduleAction("stop")
	}
	e.clearOverride()
	return nil
}

func (e *Evaluator) clearOverride() {
	if e.overridden {
		e.blocker.OverrideSelection(nil)
		e.overridden = false
	}
}

func (e *Evaluator) override(block domain.ScheduleBlock) {
	var profile *domain.BlockingProfile
	switch block.Kind {
	case domain.BlockBreak:
		profile = domain.EmptyProfile()
	default:
		if block.Profile != "" {
			p, ok := e.src.Profile(block.Profile)
			if !ok {
				e.logger.Warn("unknown blocking profile", "block_id", block.ID, "profile", block.Profile)
			} else {
				profile = p
			}
		}
	}
	if profile == nil && !e.overridden {
		return
	}
	e.blocker.OverrideSelection(profile)
	e.overridden = profile != nil
}

// remainingMinutes rounds the time left in the block up to whole minutes.
func remainingMinutes(block domain.ScheduleBlock, now time.Time) int {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := midnight.Add(time.Duration(block.EndMinute()) * time.Minute)
	return domain.ClampMinutes(int(math.Ceil(end.Sub(now).Minutes())))
}

func occurrenceKey(block domain.ScheduleBlock, now time.Time) string {
	return block.ID + "@" + now.Format(time.DateOnly)
}
