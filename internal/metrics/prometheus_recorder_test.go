package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncTransition(TransitionStarted)
	pr.IncTransition(TransitionStarted)
	pr.ObserveSessionDuration("completed", 25*time.Minute)
	pr.SetSessionRunning(true)
	pr.IncDeepBreathEvent("started")
	pr.IncReplication("session.state", ReplicationEcho)
	pr.IncScheduleAction("start")
	pr.IncCommand("start", false)
	pr.ObserveUseCase("stats-summary", 2*time.Millisecond, true)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 8)

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.transitions.WithLabelValues("started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.running))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.commands.WithLabelValues("start", "discarded")))
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncTransition(TransitionStopped)
		pr.SetSessionRunning(false)
		pr.IncReplication("k", ReplicationStale)
	})
}

func TestOrNoop(t *testing.T) {
	assert.IsType(t, NoopRecorder{}, OrNoop(nil))
	pr := NewPrometheusRecorder(nil)
	assert.Same(t, pr, OrNoop(pr))
}
