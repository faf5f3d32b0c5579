package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/alexanderramin/focussync/internal/metrics"
	"github.com/alexanderramin/focussync/internal/repository"
	"github.com/alexanderramin/focussync/internal/testutil"
	prom "github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingObserver struct {
	events []UseCaseEvent
}

func (c *capturingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	c.events = append(c.events, e)
}

func TestUseCaseObserver_ReceivesEnqueue(t *testing.T) {
	database := testutil.NewTestDB(t)
	obs := &capturingObserver{}
	svc := NewCommandService(repository.NewSQLiteCommandRepo(database), testutil.NewTestUoW(database), nil, obs)

	_, err := svc.Enqueue(context.Background(), domain.CommandStop, "http")
	require.NoError(t, err)
	_, err = svc.Enqueue(context.Background(), "bogus", "http")
	require.Error(t, err)

	require.Len(t, obs.events, 2)
	assert.Equal(t, "enqueue-command", obs.events[0].Name)
	assert.False(t, obs.events[0].Failed())
	assert.Contains(t, obs.events[0].Attrs, slog.String("source", "http"))
	assert.True(t, obs.events[1].Failed())
}

func TestLogUseCaseObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "stats-summary"})
	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "enqueue-command", Err: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, "use_case=stats-summary")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "error=boom")
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}

func TestMetricsUseCaseObserver(t *testing.T) {
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	database := testutil.NewTestDB(t)
	capture := &capturingObserver{}
	svc := NewCommandService(repository.NewSQLiteCommandRepo(database), testutil.NewTestUoW(database), nil,
		NewMetricsUseCaseObserver(rec), nil, capture)

	_, err := svc.Enqueue(context.Background(), domain.CommandStart, "cli")
	require.NoError(t, err)
	_, err = svc.Enqueue(context.Background(), "pause", "cli")
	require.Error(t, err)

	require.Len(t, capture.events, 2, "every non-nil observer sees the event")
	series, err := promtest.GatherAndCount(reg, "focussync_use_case_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, series, "one series per result")
}
