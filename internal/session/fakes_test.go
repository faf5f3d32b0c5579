package session

import (
	"context"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/jonboulle/clockwork"
)

const localOrigin = "device-A"

type fakePublisher struct {
	states []domain.SharedSessionState
	prefs  []domain.SharedPreferences
}

func (p *fakePublisher) PublishState(s domain.SharedSessionState)      { p.states = append(p.states, s) }
func (p *fakePublisher) PublishPreferences(s domain.SharedPreferences) { p.prefs = append(p.prefs, s) }

func (p *fakePublisher) lastState() domain.SharedSessionState {
	return p.states[len(p.states)-1]
}

type fakeBlocker struct {
	begins, ends int
	overrides    []*domain.BlockingProfile
}

func (b *fakeBlocker) BeginBlocking() { b.begins++ }
func (b *fakeBlocker) EndBlocking()   { b.ends++ }
func (b *fakeBlocker) OverrideSelection(p *domain.BlockingProfile) {
	b.overrides = append(b.overrides, p)
}

type fakeNotifier struct {
	externalStarts []int
}

func (n *fakeNotifier) NotifyExternalStart(minutes int) {
	n.externalStarts = append(n.externalStarts, minutes)
}
func (n *fakeNotifier) NotifyBlockStart(domain.ScheduleBlock) {}
func (n *fakeNotifier) NotifyBlockEnd(domain.ScheduleBlock)   {}
func (n *fakeNotifier) NotifyScheduleChange(bool, string)     {}

type sessionEntry struct {
	duration int
	outcome  domain.SessionOutcome
	tag      string
}

type fakeStats struct {
	sessions []sessionEntry
	events   []domain.DeepBreathEventKind
}

func (s *fakeStats) RecordSession(_, _ time.Time, durationSeconds int, outcome domain.SessionOutcome, tag string) {
	s.sessions = append(s.sessions, sessionEntry{duration: durationSeconds, outcome: outcome, tag: tag})
}

func (s *fakeStats) RecordDeepBreathEvent(kind domain.DeepBreathEventKind) {
	s.events = append(s.events, kind)
}

type fakeCommands struct {
	queue []*domain.Command
}

func (c *fakeCommands) TakeFresh(_ context.Context, now time.Time, maxAge time.Duration) (*domain.Command, error) {
	defer func() { c.queue = nil }()
	var newest *domain.Command
	for _, cmd := range c.queue {
		if now.Sub(cmd.IssuedAt) > maxAge {
			continue
		}
		if newest == nil || cmd.IssuedAt.After(newest.IssuedAt) {
			newest = cmd
		}
	}
	return newest, nil
}

type harness struct {
	clock     *clockwork.FakeClock
	publisher *fakePublisher
	blocker   *fakeBlocker
	notifier  *fakeNotifier
	stats     *fakeStats
	machine   *Machine
}

func newHarness(state domain.SharedSessionState, prefs domain.SharedPreferences) *harness {
	h := &harness{
		clock:     clockwork.NewFakeClockAt(time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)),
		publisher: &fakePublisher{},
		blocker:   &fakeBlocker{},
		notifier:  &fakeNotifier{},
		stats:     &fakeStats{},
	}
	h.machine = NewMachine(Options{
		OriginID:  localOrigin,
		Clock:     h.clock,
		Publisher: h.publisher,
		Blocker:   h.blocker,
		Notifier:  h.notifier,
		Stats:     h.stats,
	}, state, prefs)
	return h
}

func newIdleHarness() *harness {
	return newHarness(domain.DefaultSessionState(), domain.DefaultPreferences())
}

// advance moves the clock one second at a time, ticking the machine.
func (h *harness) advance(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += time.Second {
		h.clock.Advance(time.Second)
		h.machine.Tick()
	}
}

func (h *harness) assertInvariant() bool {
	v := h.machine.View()
	return v.IsRunning == (v.CurrentSessionStart != nil)
}

func remoteRunning(start time.Time, seconds int, origin string) domain.SharedSessionState {
	return domain.SharedSessionState{
		Duration:  seconds,
		StartedAt: &start,
		IsRunning: true,
		UpdatedAt: start,
		OriginID:  origin,
	}
}
