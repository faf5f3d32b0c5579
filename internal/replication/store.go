// Package replication carries the shared session snapshots between the
// devices of one user over an eventually-consistent key-value channel.
package replication

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get when the key has never been written.
var ErrNotFound = errors.New("replication: key not found")

// Entry is one replicated value with the writer's timestamp.
type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// Store is the replication channel. Implementations resolve concurrent
// writes last-writer-wins by UpdatedAt and may deliver watched updates late,
// out of order, or more than once.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, value []byte, ts time.Time) error
	// Watch streams updates for keys until ctx is cancelled, then closes the
	// channel. Values present before the call are not replayed.
	Watch(ctx context.Context, keys ...string) (<-chan Entry, error)
	Close() error
}
