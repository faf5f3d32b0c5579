package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/alexanderramin/focussync/internal/session"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// machineController drives a Machine directly; the evaluator tests are
// single-threaded so no Engine is needed.
type machineController struct{ m *session.Machine }

func (c machineController) View(context.Context) (domain.LocalSessionView, error) {
	return c.m.View(), nil
}

func (c machineController) StartScheduledSession(_ context.Context, minutes int, tag, blockID string) (bool, error) {
	return c.m.StartScheduledSession(minutes, tag, blockID), nil
}

func (c machineController) StopScheduledSessionIfNeeded(context.Context) error {
	c.m.StopScheduledSessionIfNeeded()
	return nil
}

type staticSource struct {
	schedule *domain.Schedule
	profiles map[string]*domain.BlockingProfile
}

func (s *staticSource) ActiveSchedule() (domain.Schedule, bool) {
	if s.schedule == nil {
		return domain.Schedule{}, false
	}
	return *s.schedule, true
}

func (s *staticSource) Profile(name string) (*domain.BlockingProfile, bool) {
	p, ok := s.profiles[name]
	return p, ok
}

type recordingBlocker struct {
	overrides []*domain.BlockingProfile
}

func (b *recordingBlocker) BeginBlocking() {}
func (b *recordingBlocker) EndBlocking()   {}
func (b *recordingBlocker) OverrideSelection(p *domain.BlockingProfile) {
	b.overrides = append(b.overrides, p)
}

type recordingNotifier struct {
	starts, ends []string
	changes      []bool
}

func (n *recordingNotifier) NotifyExternalStart(int) {}
func (n *recordingNotifier) NotifyBlockStart(b domain.ScheduleBlock) {
	n.starts = append(n.starts, b.ID)
}
func (n *recordingNotifier) NotifyBlockEnd(b domain.ScheduleBlock) { n.ends = append(n.ends, b.ID) }
func (n *recordingNotifier) NotifyScheduleChange(enabled bool, _ string) {
	n.changes = append(n.changes, enabled)
}

type evalHarness struct {
	clock    *clockwork.FakeClock
	machine  *session.Machine
	source   *staticSource
	blocker  *recordingBlocker
	notifier *recordingNotifier
	eval     *Evaluator
}

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

func morningSchedule() *domain.Schedule {
	return &domain.Schedule{
		Name:    "workdays",
		Enabled: true,
		Blocks: []domain.ScheduleBlock{
			{ID: "morning", Kind: domain.BlockFocus, StartMinute: 9 * 60, DurationMinutes: 50, Weekdays: weekdays, Profile: "social", Label: "Morning focus"},
			{ID: "pause", Kind: domain.BlockBreak, StartMinute: 9*60 + 50, DurationMinutes: 10, Weekdays: weekdays},
		},
	}
}

// newEvalHarness starts on Tuesday 2026-10-20 at the given time.
func newEvalHarness(hour, minute int) *evalHarness {
	h := &evalHarness{
		clock:    clockwork.NewFakeClockAt(time.Date(2026, 10, 20, hour, minute, 0, 0, time.UTC)),
		source:   &staticSource{schedule: morningSchedule(), profiles: map[string]*domain.BlockingProfile{"social": {Name: "social", Rules: []string{"news.example"}}}},
		blocker:  &recordingBlocker{},
		notifier: &recordingNotifier{},
	}
	h.machine = session.NewMachine(session.Options{OriginID: "device-A", Clock: h.clock, Blocker: h.blocker},
		domain.DefaultSessionState(), domain.DefaultPreferences())
	h.eval = NewEvaluator(machineController{h.machine}, h.source, EvaluatorConfig{
		Clock:    h.clock,
		Location: time.UTC,
		Blocker:  h.blocker,
		Notifier: h.notifier,
	})
	return h
}

func (h *evalHarness) run(t *testing.T) {
	t.Helper()
	require.NoError(t, h.eval.Evaluate(context.Background()))
}

// advance moves time forward, ticking the machine every second.
func (h *evalHarness) advance(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += time.Second {
		h.clock.Advance(time.Second)
		h.machine.Tick()
	}
}

func TestEvaluate_StartsBlockSessionMidBlock(t *testing.T) {
	h := newEvalHarness(9, 10)

	h.run(t)

	v := h.machine.View()
	require.True(t, v.IsRunning)
	assert.Equal(t, domain.ScheduleOrigin("morning"), v.Origin)
	assert.Equal(t, 40, v.Minutes)
	assert.Equal(t, 40*time.Minute, v.Remaining)
	assert.Equal(t, "Morning focus", v.Tag)
	assert.Equal(t, []string{"morning"}, h.notifier.starts)
	require.Len(t, h.blocker.overrides, 1)
	assert.Equal(t, "social", h.blocker.overrides[0].Name)

	// Still running: nothing happens.
	h.advance(time.Minute)
	h.run(t)
	assert.Len(t, h.notifier.starts, 1)
	assert.Len(t, h.blocker.overrides, 1)
	assert.True(t, h.machine.View().IsRunning)
}

func TestEvaluate_RoundsRemainingUp(t *testing.T) {
	h := newEvalHarness(9, 10)
	h.clock.Advance(30 * time.Second)

	h.run(t)

	assert.Equal(t, 40, h.machine.View().Minutes)
}

func TestEvaluate_ManualSessionNeverPreempted(t *testing.T) {
	h := newEvalHarness(9, 45)
	h.machine.Toggle()

	h.run(t)
	assert.Equal(t, domain.ManualOrigin(), h.machine.View().Origin)

	// The morning block ends and the break begins, then everything ends.
	h.advance(6 * time.Minute)
	h.run(t)
	h.advance(10 * time.Minute)
	h.run(t)

	v := h.machine.View()
	assert.True(t, v.IsRunning)
	assert.Equal(t, domain.ManualOrigin(), v.Origin)
	assert.Empty(t, h.notifier.starts)
	assert.Equal(t, []string{"morning", "pause"}, h.notifier.ends)
}

// racingController starts a manual session just before the scheduled start
// reaches the machine, so the machine refuses it.
type racingController struct{ machineController }

func (c racingController) StartScheduledSession(ctx context.Context, minutes int, tag, blockID string) (bool, error) {
	c.m.Toggle()
	return c.machineController.StartScheduledSession(ctx, minutes, tag, blockID)
}

func TestEvaluate_RefusedStartClearsOverride(t *testing.T) {
	h := newEvalHarness(9, 10)
	h.eval = NewEvaluator(racingController{machineController{h.machine}}, h.source, EvaluatorConfig{
		Clock:    h.clock,
		Location: time.UTC,
		Blocker:  h.blocker,
		Notifier: h.notifier,
	})

	h.run(t)

	v := h.machine.View()
	require.True(t, v.IsRunning)
	assert.Equal(t, domain.ManualOrigin(), v.Origin)
	assert.Empty(t, h.notifier.starts)
	require.Len(t, h.blocker.overrides, 2)
	assert.Equal(t, "social", h.blocker.overrides[0].Name)
	assert.Nil(t, h.blocker.overrides[1], "the manual session runs without the block's profile")

	// Later passes leave the manual session and its selection alone.
	h.advance(5 * time.Minute)
	h.run(t)
	assert.Len(t, h.blocker.overrides, 2)
	assert.Equal(t, domain.ManualOrigin(), h.machine.View().Origin)
}

func TestEvaluate_StopsScheduledSessionWhenBlockEnds(t *testing.T) {
	h := newEvalHarness(9, 58)
	h.run(t)
	require.True(t, h.machine.View().IsRunning)
	assert.Equal(t, domain.EmptyProfile(), h.blocker.overrides[0], "break blocks clear the blocking selection")

	h.clock.Advance(150 * time.Second)
	h.run(t)

	v := h.machine.View()
	assert.False(t, v.IsRunning)
	assert.Equal(t, domain.DefaultMinutes, v.Minutes, "manual minutes restored")
	assert.Nil(t, h.blocker.overrides[len(h.blocker.overrides)-1], "override cleared")
	assert.Equal(t, []string{"pause"}, h.notifier.ends)
}

func TestEvaluate_UserStopIsNotOverridden(t *testing.T) {
	h := newEvalHarness(9, 10)
	h.run(t)
	h.machine.Toggle()
	require.False(t, h.machine.View().IsRunning)

	h.advance(time.Minute)
	h.run(t)

	assert.False(t, h.machine.View().IsRunning, "the same occurrence is started once")
	assert.Len(t, h.notifier.starts, 1)
}

func TestEvaluate_NextOccurrenceStartsAgain(t *testing.T) {
	h := newEvalHarness(9, 10)
	h.run(t)
	h.machine.Toggle()

	h.clock.Advance(24 * time.Hour)
	h.run(t)

	assert.True(t, h.machine.View().IsRunning)
	assert.Equal(t, []string{"morning", "morning"}, h.notifier.starts)
}

func TestEvaluate_WeekendHasNoBlocks(t *testing.T) {
	h := newEvalHarness(9, 10)
	h.clock.Advance(4 * 24 * time.Hour)

	h.run(t)

	assert.False(t, h.machine.View().IsRunning)
}

func TestEvaluate_DisablingStopsAndNotifies(t *testing.T) {
	h := newEvalHarness(9, 10)
	h.run(t)
	require.True(t, h.machine.View().IsRunning)

	h.source.schedule.Enabled = false
	h.run(t)

	assert.False(t, h.machine.View().IsRunning)
	assert.Equal(t, []bool{false}, h.notifier.changes)
	assert.Equal(t, []string{"morning"}, h.notifier.ends)
	assert.Nil(t, h.blocker.overrides[len(h.blocker.overrides)-1])

	h.source.schedule.Enabled = true
	h.run(t)
	assert.Equal(t, []bool{false, true}, h.notifier.changes)
}

func TestEvaluate_NoScheduleIsQuiet(t *testing.T) {
	h := newEvalHarness(9, 10)
	h.source.schedule = nil

	h.run(t)
	h.run(t)

	assert.False(t, h.machine.View().IsRunning)
	assert.Empty(t, h.notifier.changes)
	assert.Empty(t, h.blocker.overrides)
}

func TestEvaluate_UsesConfiguredLocation(t *testing.T) {
	h := newEvalHarness(7, 10)
	loc := time.FixedZone("UTC+2", 2*60*60)
	h.eval = NewEvaluator(machineController{h.machine}, h.source, EvaluatorConfig{
		Clock:    h.clock,
		Location: loc,
		Blocker:  h.blocker,
		Notifier: h.notifier,
	})

	h.run(t)

	v := h.machine.View()
	assert.True(t, v.IsRunning)
	assert.Equal(t, 40, v.Minutes)
}
