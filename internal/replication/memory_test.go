package replication

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)

func receive(t *testing.T, ch <-chan Entry) Entry {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no entry delivered")
		return Entry{}
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_LastWriterWins(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("new"), t0.Add(time.Second)))
	require.NoError(t, s.Set(ctx, "k", []byte("old"), t0))

	e, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), e.Value)
	assert.True(t, e.UpdatedAt.Equal(t0.Add(time.Second)))
}

func TestMemoryStore_WatchDeliversKeptWritesOnly(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := s.Watch(ctx, "a")
	require.NoError(t, err)

	s.InjectRemote("b", []byte("ignored"), t0)
	s.InjectRemote("a", []byte("1"), t0.Add(time.Second))
	s.InjectRemote("a", []byte("0"), t0)
	s.InjectRemote("a", []byte("2"), t0.Add(2*time.Second))

	assert.Equal(t, []byte("1"), receive(t, ch).Value)
	assert.Equal(t, []byte("2"), receive(t, ch).Value)
}

func TestMemoryStore_RedeliverBypassesStoredValue(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := s.Watch(ctx)
	require.NoError(t, err)

	s.InjectRemote("a", []byte("current"), t0.Add(time.Second))
	s.Redeliver(Entry{Key: "a", Value: []byte("late"), UpdatedAt: t0})

	assert.Equal(t, []byte("current"), receive(t, ch).Value)
	assert.Equal(t, []byte("late"), receive(t, ch).Value)
	e, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("current"), e.Value)
}

func TestMemoryStore_WatchClosesOnCancel(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := s.Watch(ctx, "a")
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel not closed")
	}
}
