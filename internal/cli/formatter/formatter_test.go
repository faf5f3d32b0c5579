package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/focussync/internal/contract"
	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/stretchr/testify/assert"
)

func usePlain(t *testing.T) {
	t.Helper()
	prev := Plain()
	SetPlain(true)
	t.Cleanup(func() { SetPlain(prev) })
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{-5, "00:00"},
		{59, "00:59"},
		{1500, "25:00"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCountdown(tt.seconds))
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0m", FormatMinutes(0))
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "2h", FormatMinutes(120))
	assert.Equal(t, "1h 30m", FormatMinutes(90))
}

func TestHumanTimestamp(t *testing.T) {
	now := time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Just now", HumanTimestamp(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", HumanTimestamp(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", HumanTimestamp(now.Add(-3*time.Hour), now))
	assert.Equal(t, "Oct 18 12:00", HumanTimestamp(now.Add(-48*time.Hour), now))
}

func TestRenderProgress(t *testing.T) {
	usePlain(t)
	assert.Equal(t, "[█████░░░░░]  50%", RenderProgress(0.5, 10))
	assert.Equal(t, "[░░]   0%", RenderProgress(-1, 1))
	assert.Equal(t, "[████] 100%", RenderProgress(2, 4))
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	usePlain(t)
	got := RenderTable([]string{"A", "LONGER"}, [][]string{{"xyz", "1"}})
	assert.Equal(t, "A    LONGER\n───  ──────\nxyz  1\n", got)
	assert.Empty(t, RenderTable(nil, nil))
}

func TestFormatSession(t *testing.T) {
	usePlain(t)

	idle := FormatSession(&contract.SessionStatus{Minutes: 25, RemainingSeconds: 1500, Origin: domain.ManualOrigin()})
	assert.Contains(t, idle, "○ IDLE  25:00")
	assert.Contains(t, idle, "next session: 25m")
	assert.Contains(t, idle, "deep breath: off")

	running := FormatSession(&contract.SessionStatus{
		IsRunning:           true,
		Minutes:             40,
		RemainingSeconds:    600,
		DurationSeconds:     2400,
		DeepBreathEnabled:   true,
		DeepBreath:          domain.DeepBreathReadyToConfirm,
		DeepBreathRemaining: 42,
		Origin:              domain.ScheduleOrigin("morning"),
		Tag:                 "Morning focus",
	})
	assert.Contains(t, running, "● RUNNING  10:00")
	assert.Contains(t, running, "75%")
	assert.Contains(t, running, "origin: schedule (morning)")
	assert.Contains(t, running, "tag: Morning focus")
	assert.Contains(t, running, "toggle again to stop (42s)")
}

func TestFormatStats(t *testing.T) {
	usePlain(t)
	now := time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC)

	out := FormatStats(StatsView{
		From: now.Add(-24 * time.Hour),
		To:   now,
		Now:  now,
		Outcomes: []domain.OutcomeSummary{
			{Outcome: domain.OutcomeCompleted, Count: 2, TotalSeconds: 3000},
			{Outcome: domain.OutcomeStopped, Count: 1, TotalSeconds: 600},
		},
		DeepBreath: map[domain.DeepBreathEventKind]int{domain.DeepBreathStarted: 3, domain.DeepBreathConfirmed: 1},
		Sessions: []*domain.SessionRecord{
			{ID: "0123456789", StartedAt: now.Add(-2 * time.Hour), DurationSeconds: 1500, Outcome: domain.OutcomeCompleted, Tag: "Writing"},
		},
	})

	assert.Contains(t, out, "Total: 3 sessions, 1h focused")
	assert.Contains(t, out, "3 started, 1 confirmed, 0 timed out")
	assert.Contains(t, out, "01234567")
	assert.Contains(t, out, "Writing")

	empty := FormatStats(StatsView{From: now.Add(-time.Hour), To: now, Now: now})
	assert.Contains(t, empty, "No sessions in this window.")
}

func TestFormatSchedule_MarksActiveBlock(t *testing.T) {
	usePlain(t)
	s := domain.Schedule{Name: "weekdays", Enabled: true, Blocks: []domain.ScheduleBlock{
		{ID: "morning", Kind: domain.BlockFocus, StartMinute: 540, DurationMinutes: 50,
			Weekdays: []time.Weekday{time.Monday, time.Tuesday}, Profile: "social"},
		{ID: "pause", Kind: domain.BlockBreak, StartMinute: 590, DurationMinutes: 10},
	}}
	tuesday := time.Date(2026, 10, 20, 9, 10, 0, 0, time.UTC)

	out := FormatSchedule(s, true, tuesday)

	assert.Contains(t, out, "weekdays enabled")
	assert.Contains(t, out, "▶  morning")
	assert.Contains(t, out, "09:00–09:50")
	assert.Contains(t, out, "Mon,Tue")
	assert.Contains(t, out, "every day")
}
