// Package timer implements a drift-correcting countdown.
//
// A Countdown stores an absolute end time and recomputes the remaining time
// from the injected clock on every tick, so skipped ticks or a suspended
// process never desynchronize it. It owns no goroutine: the caller drives
// Tick from its own execution context.
package timer

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Callbacks are invoked synchronously from Start, Tick and Stop.
// Any of them may be nil.
type Callbacks struct {
	OnTick        func(remaining time.Duration)
	OnStateChange func(running bool)
	OnComplete    func()
}

type Countdown struct {
	clock     clockwork.Clock
	cb        Callbacks
	running   bool
	endTime   time.Time
	remaining time.Duration
}

func New(clock clockwork.Clock, cb Callbacks) *Countdown {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Countdown{clock: clock, cb: cb}
}

// Start begins counting down to startDate+duration. A non-positive duration
// is clamped to one second. If the end time has already passed the countdown
// completes before Start returns.
func (c *Countdown) Start(duration time.Duration, startDate time.Time) {
	if duration <= 0 {
		duration = time.Second
	}
	c.endTime = startDate.Add(duration)
	c.remaining = duration
	wasRunning := c.running
	c.running = true
	if !wasRunning && c.cb.OnStateChange != nil {
		c.cb.OnStateChange(true)
	}
	c.Tick()
}

// Tick recomputes the remaining time. It is a no-op when stopped.
func (c *Countdown) Tick() {
	if !c.running {
		return
	}
	remaining := c.endTime.Sub(c.clock.Now())
	if remaining > 0 {
		c.remaining = remaining
		if c.cb.OnTick != nil {
			c.cb.OnTick(remaining)
		}
		return
	}

	c.remaining = 0
	c.running = false
	if c.cb.OnStateChange != nil {
		c.cb.OnStateChange(false)
	}
	if c.cb.OnComplete != nil {
		c.cb.OnComplete()
	}
}

// Stop cancels the countdown and zeroes the remaining time.
func (c *Countdown) Stop() {
	wasRunning := c.running
	c.running = false
	c.remaining = 0
	c.endTime = time.Time{}
	if wasRunning && c.cb.OnStateChange != nil {
		c.cb.OnStateChange(false)
	}
}

func (c *Countdown) Running() bool {
	return c.running
}

// Remaining returns the value computed at the last Start or Tick.
func (c *Countdown) Remaining() time.Duration {
	return c.remaining
}

// EndTime returns the absolute end of the current run, or zero when stopped.
func (c *Countdown) EndTime() time.Time {
	if !c.running {
		return time.Time{}
	}
	return c.endTime
}
