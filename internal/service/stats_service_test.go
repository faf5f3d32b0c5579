package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/alexanderramin/focussync/internal/repository"
	"github.com/alexanderramin/focussync/internal/testutil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var morning = time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)

type statsFixture struct {
	svc     StatsService
	records *repository.SQLiteSessionRecordRepo
	clock   *clockwork.FakeClock
}

func setupStats(t *testing.T, buffer int) *statsFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	f := &statsFixture{
		records: repository.NewSQLiteSessionRecordRepo(database),
		clock:   clockwork.NewFakeClockAt(morning),
	}
	f.svc = NewStatsService(f.records, repository.NewSQLiteDeepBreathEventRepo(database), StatsConfig{
		Clock:  f.clock,
		Buffer: buffer,
	})
	return f
}

// runUntilDrained runs the writer and stops it, which flushes the buffer.
func runUntilDrained(t *testing.T, svc StatsService) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, svc.Run(ctx), context.Canceled)
}

func TestStatsService_RecordsAndSummarizes(t *testing.T) {
	f := setupStats(t, 0)
	ctx := context.Background()

	f.svc.RecordSession(morning, morning.Add(25*time.Minute), 1500, domain.OutcomeCompleted, "Morning focus")
	f.svc.RecordSession(morning.Add(time.Hour), morning.Add(time.Hour+5*time.Minute), 300, domain.OutcomeStopped, "")
	f.svc.RecordDeepBreathEvent(domain.DeepBreathStarted)
	f.svc.RecordDeepBreathEvent(domain.DeepBreathConfirmed)
	runUntilDrained(t, f.svc)

	summary, err := f.svc.Summary(ctx, morning.Add(-time.Hour), morning.Add(23*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Sessions())
	assert.Equal(t, 1800, summary.FocusSeconds())
	assert.Equal(t, 1, summary.DeepBreath[domain.DeepBreathStarted])
	assert.Equal(t, 1, summary.DeepBreath[domain.DeepBreathConfirmed])

	sessions, err := f.svc.ListSessions(ctx, morning.Add(-time.Hour), morning.Add(23*time.Hour))
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "Morning focus", sessions[0].Tag)
	assert.NotEmpty(t, sessions[0].ID)
}

func TestStatsService_SkipsEmptySessions(t *testing.T) {
	f := setupStats(t, 0)

	f.svc.RecordSession(morning, morning, 0, domain.OutcomeStopped, "")
	runUntilDrained(t, f.svc)

	list, err := f.records.ListBetween(context.Background(), morning.Add(-time.Hour), morning.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStatsService_DropsOnOverflow(t *testing.T) {
	f := setupStats(t, 2)

	for i := 0; i < 5; i++ {
		start := morning.Add(time.Duration(i) * time.Hour)
		f.svc.RecordSession(start, start.Add(time.Minute), 60, domain.OutcomeCompleted, "")
	}
	runUntilDrained(t, f.svc)

	list, err := f.records.ListBetween(context.Background(), morning, morning.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, list, 2, "writes beyond the buffer are dropped, never blocking the caller")
}

func TestStatsService_WritesWhileRunning(t *testing.T) {
	f := setupStats(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.svc.Run(ctx) }()

	f.svc.RecordSession(morning, morning.Add(time.Minute), 60, domain.OutcomeCompleted, "")

	assert.Eventually(t, func() bool {
		list, err := f.records.ListBetween(context.Background(), morning, morning.Add(time.Hour))
		return err == nil && len(list) == 1
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestStatsService_SummaryRejectsEmptyWindow(t *testing.T) {
	f := setupStats(t, 0)

	_, err := f.svc.Summary(context.Background(), morning, morning)

	assert.Error(t, err)
}
