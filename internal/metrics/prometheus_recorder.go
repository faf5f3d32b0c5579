package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	transitions     *prom.CounterVec
	sessionDuration *prom.HistogramVec
	running         prom.Gauge
	deepBreath      *prom.CounterVec
	replication     *prom.CounterVec
	schedule        *prom.CounterVec
	commands        *prom.CounterVec
	useCases        *prom.HistogramVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.transitions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "focussync",
			Name:      "session_transitions_total",
			Help:      "Session state machine transitions by kind",
		}, []string{"transition"})
		pr.sessionDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "focussync",
			Name:      "session_duration_seconds",
			Help:      "Elapsed time of finished sessions",
			Buckets:   []float64{60, 300, 900, 1500, 1800, 2700, 3600, 5400},
		}, []string{"outcome"})
		pr.running = prom.NewGauge(prom.GaugeOpts{
			Namespace: "focussync",
			Name:      "session_running",
			Help:      "1 while a session is running on this device",
		})
		pr.deepBreath = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "focussync",
			Name:      "deep_breath_events_total",
			Help:      "Deep-breath sub-flow events by kind",
		}, []string{"kind"})
		pr.replication = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "focussync",
			Name:      "replication_events_total",
			Help:      "Replicated snapshot handling by key and result",
		}, []string{"key", "result"})
		pr.schedule = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "focussync",
			Name:      "schedule_actions_total",
			Help:      "Schedule evaluator actions",
		}, []string{"action"})
		pr.commands = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "focussync",
			Name:      "widget_commands_total",
			Help:      "Widget commands consumed by action and acceptance",
		}, []string{"action", "result"})
		pr.useCases = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "focussync",
			Name:      "use_case_duration_seconds",
			Help:      "Latency of storage-backed service calls",
			Buckets:   prom.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"use_case", "result"})
		reg.MustRegister(pr.transitions, pr.sessionDuration, pr.running, pr.deepBreath, pr.replication, pr.schedule, pr.commands, pr.useCases)
	})
	return pr
}

func (p *PrometheusRecorder) IncTransition(t TransitionLabel) {
	if p == nil || p.transitions == nil {
		return
	}
	p.transitions.WithLabelValues(string(t)).Inc()
}

func (p *PrometheusRecorder) ObserveSessionDuration(outcome string, d time.Duration) {
	if p == nil || p.sessionDuration == nil {
		return
	}
	p.sessionDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetSessionRunning(running bool) {
	if p == nil || p.running == nil {
		return
	}
	if running {
		p.running.Set(1)
		return
	}
	p.running.Set(0)
}

func (p *PrometheusRecorder) IncDeepBreathEvent(kind string) {
	if p == nil || p.deepBreath == nil {
		return
	}
	p.deepBreath.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncReplication(key string, result ReplicationLabel) {
	if p == nil || p.replication == nil {
		return
	}
	p.replication.WithLabelValues(key, string(result)).Inc()
}

func (p *PrometheusRecorder) IncScheduleAction(action string) {
	if p == nil || p.schedule == nil {
		return
	}
	p.schedule.WithLabelValues(action).Inc()
}

func (p *PrometheusRecorder) IncCommand(action string, accepted bool) {
	if p == nil || p.commands == nil {
		return
	}
	res := "discarded"
	if accepted {
		res = "accepted"
	}
	p.commands.WithLabelValues(action, res).Inc()
}

func (p *PrometheusRecorder) ObserveUseCase(name string, d time.Duration, ok bool) {
	if p == nil || p.useCases == nil {
		return
	}
	res := "ok"
	if !ok {
		res = "error"
	}
	p.useCases.WithLabelValues(name, res).Observe(d.Seconds())
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
