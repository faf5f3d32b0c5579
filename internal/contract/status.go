// Package contract defines the JSON shapes exchanged with the control API.
package contract

import (
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
)

// SessionStatus is the wire form of the local session view.
type SessionStatus struct {
	IsRunning           bool                   `json:"is_running"`
	Minutes             int                    `json:"minutes"`
	RemainingSeconds    int                    `json:"remaining_seconds"`
	DurationSeconds     int                    `json:"duration_seconds"`
	StartedAt           *time.Time             `json:"started_at,omitempty"`
	DeepBreathEnabled   bool                   `json:"deep_breath_enabled"`
	DeepBreath          domain.DeepBreathPhase `json:"deep_breath"`
	DeepBreathRemaining int                    `json:"deep_breath_remaining_seconds,omitempty"`
	Origin              domain.SessionOrigin   `json:"origin"`
	Tag                 string                 `json:"tag,omitempty"`
}

// NewSessionStatus converts a view, rounding durations up to whole seconds.
func NewSessionStatus(v domain.LocalSessionView) SessionStatus {
	return SessionStatus{
		IsRunning:           v.IsRunning,
		Minutes:             v.Minutes,
		RemainingSeconds:    v.RemainingSeconds(),
		DurationSeconds:     ceilSeconds(v.ActiveDuration),
		StartedAt:           v.CurrentSessionStart,
		DeepBreathEnabled:   v.DeepBreathEnabled,
		DeepBreath:          v.DeepBreath,
		DeepBreathRemaining: ceilSeconds(v.DeepBreathRemaining),
		Origin:              v.Origin,
		Tag:                 v.Tag,
	}
}

// Progress is the elapsed fraction of the running session.
func (s SessionStatus) Progress() float64 {
	if !s.IsRunning || s.DurationSeconds <= 0 {
		return 0
	}
	return float64(s.DurationSeconds-s.RemainingSeconds) / float64(s.DurationSeconds)
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
