package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/jonboulle/clockwork"
)

var ErrEngineStopped = errors.New("session engine is not running")

// EngineConfig configures the goroutine that owns a Machine.
type EngineConfig struct {
	Clock           clockwork.Clock
	TickInterval    time.Duration
	CommandInterval time.Duration
	CommandMaxAge   time.Duration
	Commands        CommandSource
	Logger          *slog.Logger
}

// Engine serializes every Machine mutation on the goroutine running Run:
// public calls, countdown ticks, widget command checks and replication
// deliveries.
type Engine struct {
	cfg     EngineConfig
	machine *Machine
	ops     chan func()
	done    chan struct{}
	logger  *slog.Logger

	mu   sync.Mutex
	subs map[chan domain.LocalSessionView]struct{}
}

// NewEngine builds the Machine from opts and wires its change events to the
// engine subscribers. opts.OnChange, if set, still runs first.
func NewEngine(cfg EngineConfig, opts Options, state domain.SharedSessionState, prefs domain.SharedPreferences) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.CommandInterval <= 0 {
		cfg.CommandInterval = 2 * time.Second
	}
	if cfg.CommandMaxAge <= 0 {
		cfg.CommandMaxAge = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		cfg:    cfg,
		ops:    make(chan func()),
		done:   make(chan struct{}),
		logger: cfg.Logger,
		subs:   make(map[chan domain.LocalSessionView]struct{}),
	}
	if opts.Clock == nil {
		opts.Clock = cfg.Clock
	}
	if opts.Logger == nil {
		opts.Logger = cfg.Logger
	}
	inner := opts.OnChange
	opts.OnChange = func(v domain.LocalSessionView) {
		if inner != nil {
			inner(v)
		}
		e.broadcast(v)
	}
	e.machine = NewMachine(opts, state, prefs)
	return e
}

// Run owns the Machine until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	tick := e.cfg.Clock.NewTicker(e.cfg.TickInterval)
	defer tick.Stop()
	poll := e.cfg.Clock.NewTicker(e.cfg.CommandInterval)
	defer poll.Stop()

	e.logger.Info("session engine started", "origin_id", e.machine.originID)
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("session engine stopped")
			return ctx.Err()
		case op := <-e.ops:
			op()
		case <-tick.Chan():
			e.machine.Tick()
		case <-poll.Chan():
			if e.cfg.Commands == nil {
				continue
			}
			if err := e.machine.CheckCommands(ctx, e.cfg.Commands, e.cfg.CommandMaxAge); err != nil {
				e.logger.Warn("checking widget commands", "error", err)
			}
		}
	}
}

// do runs fn on the owning goroutine and waits for it to finish.
func (e *Engine) do(ctx context.Context, fn func(m *Machine)) error {
	finished := make(chan struct{})
	op := func() {
		defer close(finished)
		fn(e.machine)
	}
	select {
	case e.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrEngineStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) Toggle(ctx context.Context) error {
	return e.do(ctx, (*Machine).Toggle)
}

func (e *Engine) SetMinutes(ctx context.Context, n int) error {
	return e.do(ctx, func(m *Machine) { m.SetMinutes(n) })
}

func (e *Engine) SetDeepBreathEnabled(ctx context.Context, enabled bool) error {
	return e.do(ctx, func(m *Machine) { m.SetDeepBreathEnabled(enabled) })
}

func (e *Engine) ApplyExternalState(ctx context.Context, s domain.SharedSessionState) error {
	return e.do(ctx, func(m *Machine) { m.ApplyExternalState(s) })
}

func (e *Engine) ApplyExternalPreferences(ctx context.Context, p domain.SharedPreferences) error {
	return e.do(ctx, func(m *Machine) { m.ApplyExternalPreferences(p) })
}

// StartScheduledSession reports whether a session was started.
func (e *Engine) StartScheduledSession(ctx context.Context, minutes int, tag, blockID string) (bool, error) {
	var started bool
	err := e.do(ctx, func(m *Machine) { started = m.StartScheduledSession(minutes, tag, blockID) })
	return started, err
}

func (e *Engine) StopScheduledSessionIfNeeded(ctx context.Context) error {
	return e.do(ctx, (*Machine).StopScheduledSessionIfNeeded)
}

func (e *Engine) View(ctx context.Context) (domain.LocalSessionView, error) {
	var v domain.LocalSessionView
	err := e.do(ctx, func(m *Machine) { v = m.View() })
	return v, err
}

// Subscribe returns a channel of view changes. Slow subscribers miss
// intermediate views rather than blocking the engine.
func (e *Engine) Subscribe() (<-chan domain.LocalSessionView, func()) {
	ch := make(chan domain.LocalSessionView, 8)
	e.mu.Lock()
	e.subs[ch] = struct{}{}
	e.mu.Unlock()
	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.subs[ch]; ok {
			delete(e.subs, ch)
			close(ch)
		}
	}
}

func (e *Engine) broadcast(v domain.LocalSessionView) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for ch := range e.subs {
		select {
		case ch <- v:
		default:
		}
	}
}
