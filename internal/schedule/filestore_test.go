package schedule

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNewFileStore_MissingFileMeansNoSchedule(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "schedule.yaml"), FileStoreConfig{})
	require.NoError(t, err)

	_, ok := s.ActiveSchedule()
	assert.False(t, ok)
}

func TestNewFileStore_InvalidFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	writeFile(t, path, "active: [")

	_, err := NewFileStore(path, FileStoreConfig{})
	assert.Error(t, err)
}

func TestFileStore_ReloadKeepsLastGood(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	writeFile(t, path, sampleYAML)
	s, err := NewFileStore(path, FileStoreConfig{})
	require.NoError(t, err)

	writeFile(t, path, "schedules: [{name: x, blocks: [{id: a, start: nope}]}]")
	assert.Error(t, s.Reload())

	sched, ok := s.ActiveSchedule()
	require.True(t, ok)
	assert.Equal(t, "workdays", sched.Name)
}

func TestFileStore_WatchReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	writeFile(t, path, sampleYAML)
	reloaded := make(chan *File, 4)
	s, err := NewFileStore(path, FileStoreConfig{
		Debounce: 20 * time.Millisecond,
		OnReload: func(f *File) { reloaded <- f },
	})
	require.NoError(t, err)
	<-reloaded

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()

	// The watch may not be registered yet; keep rewriting until a reload lands.
	updated := `
active: evening
schedules:
  - name: evening
    blocks: [{id: e, start: "19:00", minutes: 25}]
`
	require.Eventually(t, func() bool {
		writeFile(t, path, updated)
		select {
		case <-reloaded:
			sched, ok := s.ActiveSchedule()
			return ok && sched.Name == "evening"
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}
