package replication

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/alexanderramin/focussync/internal/metrics"
)

// DefaultQueueSize bounds the outbound publish queue.
const DefaultQueueSize = 64

// Applier receives snapshots written by other devices. session.Engine
// implements it.
type Applier interface {
	ApplyExternalState(ctx context.Context, s domain.SharedSessionState) error
	ApplyExternalPreferences(ctx context.Context, p domain.SharedPreferences) error
}

// SyncerConfig configures a Syncer.
type SyncerConfig struct {
	OriginID  string
	QueueSize int
	Logger    *slog.Logger
	Recorder  metrics.Recorder
}

type outbound struct {
	key   string
	value []byte
	ts    time.Time
}

// Syncer connects the session engine to a Store. Outbound it is the
// engine's Publisher: writes are queued in order and sent by Run so a slow
// store never blocks the caller. Inbound it drops echoes, entries no newer
// than the last one seen per key, and undecodable values before handing the
// rest to the Applier.
type Syncer struct {
	store    Store
	originID string
	logger   *slog.Logger
	recorder metrics.Recorder
	queue    chan outbound

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

func NewSyncer(store Store, cfg SyncerConfig) *Syncer {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Syncer{
		store:    store,
		originID: cfg.OriginID,
		logger:   logger,
		recorder: metrics.OrNoop(cfg.Recorder),
		queue:    make(chan outbound, cfg.QueueSize),
		lastSeen: make(map[string]time.Time),
	}
}

// LoadInitial reads the current snapshots. A missing, unreadable or
// inconsistent value falls back to the default snapshot so startup never
// fails on replication.
func (s *Syncer) LoadInitial(ctx context.Context) (domain.SharedSessionState, domain.SharedPreferences) {
	state := domain.DefaultSessionState()
	if e, ok := s.load(ctx, domain.KeySessionState); ok {
		if decoded, err := DecodeState(e.Value); err != nil {
			s.recorder.IncReplication(e.Key, metrics.ReplicationDecodeError)
			s.logger.Warn("using default session state", "error", err)
		} else {
			state = decoded
			s.observe(e.Key, e.UpdatedAt)
		}
	}

	prefs := domain.DefaultPreferences()
	if e, ok := s.load(ctx, domain.KeySessionPreferences); ok {
		if decoded, err := DecodePreferences(e.Value); err != nil {
			s.recorder.IncReplication(e.Key, metrics.ReplicationDecodeError)
			s.logger.Warn("using default preferences", "error", err)
		} else {
			prefs = decoded
			s.observe(e.Key, e.UpdatedAt)
		}
	}
	return state, prefs
}

func (s *Syncer) load(ctx context.Context, key string) (Entry, bool) {
	e, err := s.store.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		return Entry{}, false
	case err != nil:
		s.logger.Warn("reading replicated snapshot", "key", key, "error", err)
		return Entry{}, false
	}
	return e, true
}

// PublishState queues a session snapshot for replication.
func (s *Syncer) PublishState(st domain.SharedSessionState) {
	data, err := EncodeState(st)
	if err != nil {
		s.publishFailed(domain.KeySessionState, err)
		return
	}
	s.enqueue(outbound{key: domain.KeySessionState, value: data, ts: st.UpdatedAt})
}

// PublishPreferences queues a preferences snapshot for replication.
func (s *Syncer) PublishPreferences(p domain.SharedPreferences) {
	data, err := EncodePreferences(p)
	if err != nil {
		s.publishFailed(domain.KeySessionPreferences, err)
		return
	}
	s.enqueue(outbound{key: domain.KeySessionPreferences, value: data, ts: p.UpdatedAt})
}

func (s *Syncer) enqueue(o outbound) {
	s.observe(o.key, o.ts)
	select {
	case s.queue <- o:
	default:
		s.publishFailed(o.key, errors.New("publish queue full"))
	}
}

func (s *Syncer) publishFailed(key string, err error) {
	s.recorder.IncReplication(key, metrics.ReplicationPublishError)
	s.logger.Warn("publishing snapshot", "key", key, "error", err)
}

// Run sends queued writes and applies watched updates until ctx is done.
// When the store cannot be watched the device keeps working local-only.
func (s *Syncer) Run(ctx context.Context, target Applier) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.publishLoop(ctx)
	}()

	updates, err := s.store.Watch(ctx, domain.KeySessionState, domain.KeySessionPreferences)
	if err != nil {
		s.logger.Warn("replication watch unavailable, running local-only", "error", err)
	} else {
		s.catchUp(ctx, target)
		s.watchLoop(ctx, updates, target)
	}
	wg.Wait()
	return ctx.Err()
}

// catchUp applies values written between LoadInitial and the start of the
// watch. Entries already seen are filtered as stale.
func (s *Syncer) catchUp(ctx context.Context, target Applier) {
	for _, key := range []string{domain.KeySessionState, domain.KeySessionPreferences} {
		e, ok := s.load(ctx, key)
		if !ok {
			continue
		}
		if err := s.apply(ctx, e, target); err != nil {
			s.logger.Warn("applying replicated snapshot", "key", key, "error", err)
		}
	}
}

func (s *Syncer) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-s.queue:
			if err := s.store.Set(ctx, o.key, o.value, o.ts); err != nil {
				s.publishFailed(o.key, err)
				continue
			}
			s.recorder.IncReplication(o.key, metrics.ReplicationPublished)
		}
	}
}

func (s *Syncer) watchLoop(ctx context.Context, updates <-chan Entry, target Applier) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-updates:
			if !ok {
				if ctx.Err() == nil {
					s.logger.Warn("replication watch closed, running local-only")
				}
				return
			}
			if err := s.apply(ctx, e, target); err != nil {
				s.logger.Warn("applying replicated snapshot", "key", e.Key, "error", err)
			}
		}
	}
}

func (s *Syncer) apply(ctx context.Context, e Entry, target Applier) error {
	switch e.Key {
	case domain.KeySessionState:
		st, err := DecodeState(e.Value)
		if err != nil {
			return s.decodeFailed(e, err)
		}
		if !s.accept(e, st.OriginID) {
			return nil
		}
		return target.ApplyExternalState(ctx, st)
	case domain.KeySessionPreferences:
		p, err := DecodePreferences(e.Value)
		if err != nil {
			return s.decodeFailed(e, err)
		}
		if !s.accept(e, p.OriginID) {
			return nil
		}
		return target.ApplyExternalPreferences(ctx, p)
	default:
		s.logger.Debug("ignoring unknown replicated key", "key", e.Key)
		return nil
	}
}

func (s *Syncer) decodeFailed(e Entry, err error) error {
	s.recorder.IncReplication(e.Key, metrics.ReplicationDecodeError)
	s.logger.Warn("dropping undecodable snapshot", "key", e.Key, "error", err)
	return nil
}

// accept reports whether e should reach the Applier and records the outcome.
func (s *Syncer) accept(e Entry, originID string) bool {
	if originID == s.originID {
		s.recorder.IncReplication(e.Key, metrics.ReplicationEcho)
		s.logger.Debug("ignoring echo", "key", e.Key)
		return false
	}
	s.mu.Lock()
	fresh := e.UpdatedAt.After(s.lastSeen[e.Key])
	if fresh {
		s.lastSeen[e.Key] = e.UpdatedAt
	}
	s.mu.Unlock()
	if !fresh {
		s.recorder.IncReplication(e.Key, metrics.ReplicationStale)
		s.logger.Debug("ignoring stale snapshot", "key", e.Key, "updated_at", e.UpdatedAt)
		return false
	}
	s.recorder.IncReplication(e.Key, metrics.ReplicationApplied)
	return true
}

// observe raises the per-key high-water mark.
func (s *Syncer) observe(key string, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts.After(s.lastSeen[key]) {
		s.lastSeen[key] = ts
	}
}
