// Package session implements the focus session state machine, its
// deep-breath stop confirmation and the reconciliation of snapshots
// replicated from the user's other devices.
//
// Machine is not safe for concurrent use; Engine serializes every call on a
// single goroutine.
package session

import (
	"log/slog"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/alexanderramin/focussync/internal/metrics"
	"github.com/alexanderramin/focussync/internal/timer"
	"github.com/jonboulle/clockwork"
)

// Options configures a Machine. Nil ports default to no-ops.
type Options struct {
	OriginID         string
	Clock            clockwork.Clock
	DeepBreathCount  time.Duration
	DeepBreathWindow time.Duration

	Publisher Publisher
	Blocker   Blocker
	Notifier  Notifier
	Stats     Stats
	Recorder  metrics.Recorder
	Logger    *slog.Logger

	// OnChange is called with the new view after every mutation.
	OnChange func(domain.LocalSessionView)
}

// deferredManual holds the manual settings a scheduled session displaced.
type deferredManual struct {
	minutes int
	tag     string
}

type Machine struct {
	originID  string
	clock     clockwork.Clock
	publisher Publisher
	blocker   Blocker
	notifier  Notifier
	stats     Stats
	recorder  metrics.Recorder
	logger    *slog.Logger
	onChange  func(domain.LocalSessionView)

	prefs          domain.SharedPreferences
	minutes        int
	running        bool
	origin         domain.SessionOrigin
	tag            string
	activeDuration time.Duration
	sessionStart   *time.Time
	// startedBy is the origin-id of the device that started the session.
	startedBy string
	blocking  bool
	deferred  *deferredManual
	lastStamp time.Time

	countdown *timer.Countdown
	breath    *deepBreath
}

// NewMachine builds the local view from the last known shared snapshots.
// A running snapshot resumes its countdown without publishing.
func NewMachine(opts Options, state domain.SharedSessionState, prefs domain.SharedPreferences) *Machine {
	m := &Machine{
		originID:  opts.OriginID,
		clock:     opts.Clock,
		publisher: opts.Publisher,
		blocker:   opts.Blocker,
		notifier:  opts.Notifier,
		stats:     opts.Stats,
		recorder:  metrics.OrNoop(opts.Recorder),
		logger:    opts.Logger,
		onChange:  opts.OnChange,
		origin:    domain.ManualOrigin(),
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}
	if m.publisher == nil {
		m.publisher = NoopPublisher{}
	}
	if m.blocker == nil {
		m.blocker = NoopBlocker{}
	}
	if m.notifier == nil {
		m.notifier = NoopNotifier{}
	}
	if m.stats == nil {
		m.stats = NoopStats{}
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}

	m.countdown = timer.New(m.clock, timer.Callbacks{
		OnTick:     func(time.Duration) { m.changed() },
		OnComplete: m.completed,
	})
	m.breath = newDeepBreath(m.clock, opts.DeepBreathCount, opts.DeepBreathWindow, m.deepBreathEvent, m.changed)

	m.observeStamp(state.UpdatedAt)
	m.observeStamp(prefs.UpdatedAt)
	prefs.Minutes = domain.ClampMinutes(prefs.Minutes)
	m.prefs = prefs
	m.minutes = prefs.Minutes

	if !state.IsRunning || !state.Valid() {
		return m
	}
	// Another device's session that ended while we were away is not resumed;
	// our own is, so its completion is recorded and published.
	ended := !state.StartedAt.Add(state.DurationOrMin()).After(m.clock.Now())
	if !ended || state.OriginID == m.originID {
		m.minutes = domain.ClampMinutes(state.Duration / 60)
		m.startedBy = state.OriginID
		m.beginSession(state.DurationOrMin(), *state.StartedAt, false)
	}
	return m
}

// View returns a copy of the current local state.
func (m *Machine) View() domain.LocalSessionView {
	v := domain.LocalSessionView{
		Minutes:             m.minutes,
		IsRunning:           m.running,
		DeepBreath:          m.breath.phase,
		DeepBreathRemaining: m.breath.remaining(),
		DeepBreathEnabled:   m.prefs.DeepBreathEnabled,
		Origin:              m.origin,
		Tag:                 m.tag,
		ActiveDuration:      m.activeDuration,
	}
	if m.running {
		v.Remaining = m.countdown.Remaining()
		start := *m.sessionStart
		v.CurrentSessionStart = &start
	} else {
		v.Remaining = time.Duration(m.minutes) * time.Minute
	}
	return v
}

// Tick advances the session and deep-breath countdowns.
func (m *Machine) Tick() {
	m.countdown.Tick()
	m.breath.tick()
}

// Toggle starts a manual session when idle and stops the running one
// otherwise, routing the stop through the deep-breath flow when enabled.
func (m *Machine) Toggle() {
	if !m.running {
		m.origin = domain.ManualOrigin()
		m.startedBy = m.originID
		m.recorder.IncTransition(metrics.TransitionStarted)
		m.beginSession(time.Duration(m.minutes)*time.Minute, m.clock.Now(), true)
		return
	}
	if m.prefs.DeepBreathEnabled && !m.breath.requestStop() {
		return
	}
	m.recorder.IncTransition(metrics.TransitionStopped)
	m.endSession(domain.OutcomeStopped, true)
}

// SetMinutes changes the default session length. Ignored while running.
func (m *Machine) SetMinutes(n int) {
	if m.running {
		return
	}
	m.minutes = domain.ClampMinutes(n)
	m.prefs.Minutes = m.minutes
	m.publishPreferences()
	m.changed()
}

// SetDeepBreathEnabled toggles the stop confirmation flow. Disabling resets
// an active flow without ending the session.
func (m *Machine) SetDeepBreathEnabled(enabled bool) {
	m.prefs.DeepBreathEnabled = enabled
	if !enabled {
		m.breath.reset()
	}
	m.publishPreferences()
	m.changed()
}

// StartScheduledSession starts a session on behalf of a schedule block.
// It reports false when a session is already running.
func (m *Machine) StartScheduledSession(durationMinutes int, tag, blockID string) bool {
	if m.running {
		return false
	}
	m.deferred = &deferredManual{minutes: m.minutes, tag: m.tag}
	m.minutes = domain.ClampMinutes(durationMinutes)
	m.tag = tag
	m.origin = domain.ScheduleOrigin(blockID)
	m.startedBy = m.originID
	m.recorder.IncTransition(metrics.TransitionScheduledStart)
	m.beginSession(time.Duration(m.minutes)*time.Minute, m.clock.Now(), true)
	return true
}

// StopScheduledSessionIfNeeded ends the running session only if a schedule
// block started it.
func (m *Machine) StopScheduledSessionIfNeeded() {
	if !m.running || !m.origin.IsSchedule() {
		return
	}
	m.recorder.IncTransition(metrics.TransitionStopped)
	m.endSession(domain.OutcomeStopped, true)
}

func (m *Machine) beginSession(duration time.Duration, start time.Time, publish bool) {
	m.breath.reset()
	m.running = true
	m.activeDuration = duration
	m.sessionStart = &start
	m.recorder.SetSessionRunning(true)

	if publish {
		m.publisher.PublishState(domain.SharedSessionState{
			Duration:  int(duration / time.Second),
			StartedAt: &start,
			IsRunning: true,
			UpdatedAt: m.stamp(),
			OriginID:  m.originID,
		})
	}
	if !m.blocking {
		m.blocking = true
		m.blocker.BeginBlocking()
	}
	m.logger.Info("session started",
		"minutes", m.minutes,
		"origin", string(m.origin.Kind),
		"block_id", m.origin.BlockID,
		"started_by", m.startedBy)

	// May complete synchronously when the start lies far enough in the past.
	m.countdown.Start(duration, start)
	m.changed()
}

func (m *Machine) completed() {
	m.recorder.IncTransition(metrics.TransitionCompleted)
	m.endSession(domain.OutcomeCompleted, true)
}

// endSession returns to Idle. publish=false is used when the stop came from
// another device.
func (m *Machine) endSession(outcome domain.SessionOutcome, publish bool) {
	if !m.running {
		m.breath.reset()
		return
	}
	m.breath.reset()
	m.countdown.Stop()

	start := *m.sessionStart
	end := m.clock.Now()
	if m.startedBy == m.originID {
		m.stats.RecordSession(start, end, int(m.activeDuration/time.Second), outcome, m.tag)
		m.recorder.ObserveSessionDuration(string(outcome), end.Sub(start))
	}

	m.running = false
	m.sessionStart = nil
	m.activeDuration = 0
	m.startedBy = ""
	m.recorder.SetSessionRunning(false)

	if m.deferred != nil {
		m.minutes = m.deferred.minutes
		m.tag = m.deferred.tag
		m.deferred = nil
	}
	m.origin = domain.ManualOrigin()

	if publish {
		m.publisher.PublishState(domain.SharedSessionState{
			Duration:  m.minutes * 60,
			IsRunning: false,
			UpdatedAt: m.stamp(),
			OriginID:  m.originID,
		})
	}
	if m.blocking {
		m.blocking = false
		m.blocker.EndBlocking()
	}
	m.logger.Info("session ended", "outcome", string(outcome), "published", publish)
	m.changed()
}

func (m *Machine) publishPreferences() {
	p := m.prefs
	p.UpdatedAt = m.stamp()
	p.OriginID = m.originID
	m.prefs = p
	m.publisher.PublishPreferences(p)
}

// stamp returns a timestamp strictly after every previous one from this
// machine and every snapshot it has observed, even if the wall clock steps
// back or lags another device's.
func (m *Machine) stamp() time.Time {
	now := m.clock.Now().UTC()
	if !now.After(m.lastStamp) {
		now = m.lastStamp.Add(time.Millisecond)
	}
	m.lastStamp = now
	return now
}

func (m *Machine) observeStamp(ts time.Time) {
	if ts.After(m.lastStamp) {
		m.lastStamp = ts
	}
}

func (m *Machine) deepBreathEvent(kind domain.DeepBreathEventKind) {
	m.recorder.IncDeepBreathEvent(string(kind))
	m.stats.RecordDeepBreathEvent(kind)
	m.logger.Debug("deep breath", "event", string(kind))
}

func (m *Machine) changed() {
	if m.onChange != nil {
		m.onChange(m.View())
	}
}
