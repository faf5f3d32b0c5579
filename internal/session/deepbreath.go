package session

import (
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/alexanderramin/focussync/internal/timer"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultDeepBreathCount  = 30 * time.Second
	DefaultDeepBreathWindow = 60 * time.Second
)

// deepBreath gates the stop transition behind a pause and a confirmation
// window. A single countdown serves both phases, so at most one timer is
// ever active.
type deepBreath struct {
	clock  clockwork.Clock
	count  time.Duration
	window time.Duration
	phase  domain.DeepBreathPhase
	timer  *timer.Countdown

	onEvent  func(kind domain.DeepBreathEventKind)
	onChange func()
}

func newDeepBreath(clock clockwork.Clock, count, window time.Duration, onEvent func(domain.DeepBreathEventKind), onChange func()) *deepBreath {
	if count <= 0 {
		count = DefaultDeepBreathCount
	}
	if window <= 0 {
		window = DefaultDeepBreathWindow
	}
	d := &deepBreath{
		clock:    clock,
		count:    count,
		window:   window,
		phase:    domain.DeepBreathNone,
		onEvent:  onEvent,
		onChange: onChange,
	}
	d.timer = timer.New(clock, timer.Callbacks{
		OnTick:     func(time.Duration) { d.onChange() },
		OnComplete: d.phaseElapsed,
	})
	return d
}

// requestStop advances the sub-flow and reports whether the caller should
// now perform the real stop.
func (d *deepBreath) requestStop() bool {
	switch d.phase {
	case domain.DeepBreathNone:
		d.phase = domain.DeepBreathCounting
		d.onEvent(domain.DeepBreathStarted)
		d.timer.Start(d.count, d.clock.Now())
		d.onChange()
		return false
	case domain.DeepBreathReadyToConfirm:
		d.onEvent(domain.DeepBreathConfirmed)
		d.reset()
		return true
	default:
		return false
	}
}

func (d *deepBreath) phaseElapsed() {
	switch d.phase {
	case domain.DeepBreathCounting:
		d.phase = domain.DeepBreathReadyToConfirm
		d.timer.Start(d.window, d.clock.Now())
	case domain.DeepBreathReadyToConfirm:
		d.phase = domain.DeepBreathNone
		d.onEvent(domain.DeepBreathTimedOut)
	}
	d.onChange()
}

// reset cancels the active phase timer and returns to None.
func (d *deepBreath) reset() {
	d.timer.Stop()
	d.phase = domain.DeepBreathNone
}

func (d *deepBreath) tick() {
	d.timer.Tick()
}

func (d *deepBreath) active() bool {
	return d.phase != domain.DeepBreathNone
}

func (d *deepBreath) remaining() time.Duration {
	return d.timer.Remaining()
}
