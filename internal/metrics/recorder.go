// Package metrics exposes session engine counters behind a Recorder
// interface. NoopRecorder is the default; PrometheusRecorder is injected when
// the metrics endpoint is enabled.
package metrics

import "time"

// TransitionLabel enumerates session state machine transitions.
type TransitionLabel string

const (
	TransitionStarted        TransitionLabel = "started"
	TransitionStopped        TransitionLabel = "stopped"
	TransitionCompleted      TransitionLabel = "completed"
	TransitionExternalStart  TransitionLabel = "external_start"
	TransitionExternalStop   TransitionLabel = "external_stop"
	TransitionScheduledStart TransitionLabel = "scheduled_start"
)

// ReplicationLabel enumerates what happened to a replicated snapshot.
type ReplicationLabel string

const (
	ReplicationPublished    ReplicationLabel = "published"
	ReplicationPublishError ReplicationLabel = "publish_error"
	ReplicationApplied      ReplicationLabel = "applied"
	ReplicationEcho         ReplicationLabel = "echo"
	ReplicationStale        ReplicationLabel = "stale"
	ReplicationDecodeError  ReplicationLabel = "decode_error"
)

// Recorder defines observability hooks for the session engine.
type Recorder interface {
	IncTransition(t TransitionLabel)
	ObserveSessionDuration(outcome string, d time.Duration)
	SetSessionRunning(running bool)
	IncDeepBreathEvent(kind string)
	IncReplication(key string, result ReplicationLabel)
	IncScheduleAction(action string)
	IncCommand(action string, accepted bool)
	ObserveUseCase(name string, d time.Duration, ok bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncTransition(TransitionLabel)                {}
func (NoopRecorder) ObserveSessionDuration(string, time.Duration) {}
func (NoopRecorder) SetSessionRunning(bool)                       {}
func (NoopRecorder) IncDeepBreathEvent(string)                    {}
func (NoopRecorder) IncReplication(string, ReplicationLabel)      {}
func (NoopRecorder) IncScheduleAction(string)                     {}
func (NoopRecorder) IncCommand(string, bool)                      {}
func (NoopRecorder) ObserveUseCase(string, time.Duration, bool)   {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
