package hooks

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runBlocker(t *testing.T, b *CommandBlocker) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func readEventually(t *testing.T, path, want string) {
	t.Helper()
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && string(data) == want
	}, 5*time.Second, 20*time.Millisecond)
}

func TestCommandBlocker_RunsHooksInOrderWithProfile(t *testing.T) {
	log := filepath.Join(t.TempDir(), "hooks.log")
	b := NewCommandBlocker(BlockerConfig{
		BeginCommand: `echo "begin:$FOCUSSYNC_PROFILE:$FOCUSSYNC_BLOCKING" >> ` + log,
		EndCommand:   `echo "end:$FOCUSSYNC_PROFILE" >> ` + log,
	})
	runBlocker(t, b)

	b.OverrideSelection(&domain.BlockingProfile{Name: "social", Rules: []string{"twitter.com"}})
	b.BeginBlocking()
	b.OverrideSelection(nil)
	b.EndBlocking()

	readEventually(t, log, "begin:social:begin\nend:\n")
}

func TestCommandBlocker_EmptyCommandsAreSkipped(t *testing.T) {
	b := NewCommandBlocker(BlockerConfig{})

	b.BeginBlocking()
	b.EndBlocking()

	assert.Empty(t, b.jobs)
}

func TestCommandBlocker_FailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	marker := filepath.Join(t.TempDir(), "after")
	b := NewCommandBlocker(BlockerConfig{
		BeginCommand: "echo nope >&2; exit 3",
		EndCommand:   "touch " + marker,
		Logger:       logger,
	})

	b.BeginBlocking()
	b.EndBlocking()
	ctx, cancel := context.WithCancel(context.Background())
	b.exec(ctx, <-b.jobs)
	b.exec(ctx, <-b.jobs)
	cancel()

	assert.Contains(t, buf.String(), "blocking hook failed")
	assert.Contains(t, buf.String(), "output=nope")
	_, err := os.Stat(marker)
	require.NoError(t, err, "a failing hook does not stop later hooks")
}

func TestCommandBlocker_Timeout(t *testing.T) {
	var buf bytes.Buffer
	b := NewCommandBlocker(BlockerConfig{
		BeginCommand: "sleep 5",
		Timeout:      50 * time.Millisecond,
		Logger:       slog.New(slog.NewTextHandler(&buf, nil)),
	})
	b.BeginBlocking()

	start := time.Now()
	b.exec(context.Background(), <-b.jobs)

	assert.Less(t, time.Since(start), 4*time.Second)
	assert.Contains(t, buf.String(), "blocking hook failed")
}
