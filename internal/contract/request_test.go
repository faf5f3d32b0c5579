package contract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionStatus_RoundsUp(t *testing.T) {
	start := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	s := NewSessionStatus(domain.LocalSessionView{
		Minutes:             25,
		IsRunning:           true,
		Remaining:           10*time.Minute + 300*time.Millisecond,
		ActiveDuration:      25 * time.Minute,
		DeepBreath:          domain.DeepBreathCounting,
		DeepBreathRemaining: 29*time.Second + time.Millisecond,
		Origin:              domain.ScheduleOrigin("morning"),
		CurrentSessionStart: &start,
	})

	assert.Equal(t, 601, s.RemainingSeconds)
	assert.Equal(t, 1500, s.DurationSeconds)
	assert.Equal(t, 30, s.DeepBreathRemaining)
	assert.InDelta(t, 0.599, s.Progress(), 0.001)
}

func TestSessionStatus_ProgressWhileIdle(t *testing.T) {
	s := NewSessionStatus(domain.LocalSessionView{Minutes: 25, Remaining: 25 * time.Minute})
	assert.Zero(t, s.Progress())
}

func TestSessionStatus_JSONShape(t *testing.T) {
	data, err := json.Marshal(NewSessionStatus(domain.LocalSessionView{
		Minutes:   5,
		Remaining: 5 * time.Minute,
		Origin:    domain.ManualOrigin(),
	}))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"is_running": false,
		"minutes": 5,
		"remaining_seconds": 300,
		"duration_seconds": 0,
		"deep_breath_enabled": false,
		"deep_breath": "",
		"origin": {"kind": "manual"}
	}`, string(data))
}

func TestPreferencesRequest_Empty(t *testing.T) {
	assert.True(t, PreferencesRequest{}.Empty())
	n := 5
	assert.False(t, PreferencesRequest{Minutes: &n}.Empty())
}
