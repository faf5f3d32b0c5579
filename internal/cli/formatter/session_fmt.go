package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/focussync/internal/contract"
	"github.com/alexanderramin/focussync/internal/domain"
)

const sessionProgressBarWidth = 20

// FormatSession renders the daemon's session status.
func FormatSession(s *contract.SessionStatus) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", RunningIndicator(s.IsRunning), Bold(FormatCountdown(s.RemainingSeconds)))
	if s.IsRunning {
		b.WriteString(RenderProgress(s.Progress(), sessionProgressBarWidth) + "\n")
		fmt.Fprintf(&b, "%s %s\n", Dim("length:"), FormatMinutes(s.DurationSeconds/60))
		if s.StartedAt != nil {
			fmt.Fprintf(&b, "%s %s\n", Dim("started:"), s.StartedAt.Local().Format("15:04:05"))
		}
	} else {
		fmt.Fprintf(&b, "%s %s\n", Dim("next session:"), FormatMinutes(s.Minutes))
	}

	origin := "manual"
	if s.Origin.Kind == domain.OriginSchedule {
		origin = "schedule (" + s.Origin.BlockID + ")"
	}
	fmt.Fprintf(&b, "%s %s\n", Dim("origin:"), origin)
	if s.Tag != "" {
		fmt.Fprintf(&b, "%s %s\n", Dim("tag:"), render(StylePurple, s.Tag))
	}

	deepBreath := "off"
	if s.DeepBreathEnabled {
		deepBreath = "on"
		if s.IsRunning && s.DeepBreath != "" && s.DeepBreath != domain.DeepBreathNone {
			deepBreath = DeepBreathIndicator(s.DeepBreath, s.DeepBreathRemaining)
		}
	}
	fmt.Fprintf(&b, "%s %s", Dim("deep breath:"), deepBreath)

	return RenderBox("Session", b.String())
}
