package replication

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It backs local-only mode and stands in
// for the remote channel in tests: InjectRemote simulates another device's
// write and Redeliver replays an arbitrary, possibly outdated, entry.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]Entry
	watchers map[*memoryWatcher]struct{}
	closed   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]Entry),
		watchers: make(map[*memoryWatcher]struct{}),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	e.Value = slices.Clone(e.Value)
	return e, nil
}

// Set stores value unless the key already holds a write with a later
// timestamp. Watchers see only writes that were kept.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ts time.Time) error {
	s.put(Entry{Key: key, Value: slices.Clone(value), UpdatedAt: ts})
	return nil
}

// InjectRemote writes as if another device had, with the same
// last-writer-wins rule as Set.
func (s *MemoryStore) InjectRemote(key string, value []byte, ts time.Time) {
	s.put(Entry{Key: key, Value: slices.Clone(value), UpdatedAt: ts})
}

// Redeliver pushes e to watchers without touching the stored value,
// simulating a late or duplicated delivery.
func (s *MemoryStore) Redeliver(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked(e)
}

func (s *MemoryStore) put(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if cur, ok := s.entries[e.Key]; ok && cur.UpdatedAt.After(e.UpdatedAt) {
		return
	}
	s.entries[e.Key] = e
	s.notifyLocked(e)
}

func (s *MemoryStore) notifyLocked(e Entry) {
	for w := range s.watchers {
		if w.wants(e.Key) {
			w.push(e)
		}
	}
}

func (s *MemoryStore) Watch(ctx context.Context, keys ...string) (<-chan Entry, error) {
	w := &memoryWatcher{
		keys:   keys,
		signal: make(chan struct{}, 1),
		out:    make(chan Entry),
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(w.out)
		return w.out, nil
	}
	s.watchers[w] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.watchers, w)
			s.mu.Unlock()
			close(w.out)
		}()
		w.run(ctx)
	}()
	return w.out, nil
}

// Close stops accepting writes. Open watches end when their contexts do.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// memoryWatcher queues entries so a slow reader never blocks writers.
type memoryWatcher struct {
	keys   []string
	mu     sync.Mutex
	queue  []Entry
	signal chan struct{}
	out    chan Entry
}

func (w *memoryWatcher) wants(key string) bool {
	return len(w.keys) == 0 || slices.Contains(w.keys, key)
}

func (w *memoryWatcher) push(e Entry) {
	e.Value = slices.Clone(e.Value)
	w.mu.Lock()
	w.queue = append(w.queue, e)
	w.mu.Unlock()
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *memoryWatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.signal:
		}
		for {
			w.mu.Lock()
			if len(w.queue) == 0 {
				w.mu.Unlock()
				break
			}
			e := w.queue[0]
			w.queue = w.queue[1:]
			w.mu.Unlock()

			select {
			case w.out <- e:
			case <-ctx.Done():
				return
			}
		}
	}
}
