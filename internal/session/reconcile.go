package session

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/alexanderramin/focussync/internal/metrics"
)

// ApplyExternalState reconciles a session snapshot written by another device.
// Snapshots carrying this device's origin-id are echoes and change nothing.
// Applying the same snapshot twice leaves the same local state.
func (m *Machine) ApplyExternalState(s domain.SharedSessionState) {
	if s.OriginID == m.originID {
		return
	}
	m.observeStamp(s.UpdatedAt)
	if !s.Valid() {
		m.logger.Debug("ignoring inconsistent session snapshot", "origin_id", s.OriginID)
		return
	}

	if !s.IsRunning {
		if m.running {
			m.recorder.IncTransition(metrics.TransitionExternalStop)
		}
		m.endSession(domain.OutcomeStopped, false)
		return
	}

	duration := s.DurationOrMin()
	start := *s.StartedAt
	if m.running && m.sessionStart.Equal(start) && m.activeDuration == duration {
		return
	}

	minutes := domain.ClampMinutes(s.Duration / 60)
	sameSession := m.sessionStart != nil && m.sessionStart.Equal(start)
	if !sameSession {
		m.notifier.NotifyExternalStart(minutes)
		m.recorder.IncTransition(metrics.TransitionExternalStart)
	}

	if m.running {
		// Another device replaced or resized the running session. A replaced
		// session of ours ends here; a resized one is still the same session
		// and is recorded when it finishes.
		m.breath.reset()
		m.countdown.Stop()
		if !sameSession && m.startedBy == m.originID {
			m.stats.RecordSession(*m.sessionStart, m.clock.Now(), int(m.activeDuration/time.Second), domain.OutcomeStopped, m.tag)
		}
	}
	if !sameSession {
		if m.deferred != nil {
			m.tag = m.deferred.tag
			m.deferred = nil
		}
		m.origin = domain.ManualOrigin()
		m.startedBy = s.OriginID
	}
	m.minutes = minutes
	// A snapshot whose end has already passed completes on the spot, which
	// returns this device to Idle and publishes the stop.
	m.beginSession(duration, start, false)
}

// ApplyExternalPreferences reconciles a preferences snapshot written by
// another device.
func (m *Machine) ApplyExternalPreferences(p domain.SharedPreferences) {
	if p.OriginID == m.originID {
		return
	}
	m.observeStamp(p.UpdatedAt)
	p.Minutes = domain.ClampMinutes(p.Minutes)
	m.prefs = p

	switch {
	case !m.running:
		m.minutes = p.Minutes
	case m.deferred != nil:
		m.deferred.minutes = p.Minutes
	}
	if m.running && !p.DeepBreathEnabled && m.breath.active() {
		m.breath.reset()
	}
	m.changed()
}

// CheckCommands consumes at most one fresh widget command and applies it as
// a toggle when it would change the running state. Stale commands are
// discarded by the source.
func (m *Machine) CheckCommands(ctx context.Context, src CommandSource, maxAge time.Duration) error {
	if src == nil {
		return nil
	}
	cmd, err := src.TakeFresh(ctx, m.clock.Now(), maxAge)
	if err != nil {
		return fmt.Errorf("taking widget command: %w", err)
	}
	if cmd == nil {
		return nil
	}

	accepted := false
	switch cmd.Action {
	case domain.CommandStart:
		accepted = !m.running
	case domain.CommandStop:
		accepted = m.running
	}
	m.recorder.IncCommand(string(cmd.Action), accepted)
	m.logger.Info("widget command", "action", string(cmd.Action), "accepted", accepted)
	if accepted {
		m.Toggle()
	}
	return nil
}
