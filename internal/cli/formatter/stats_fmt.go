package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
)

// StatsView is what the stats command renders.
type StatsView struct {
	From       time.Time
	To         time.Time
	Outcomes   []domain.OutcomeSummary
	DeepBreath map[domain.DeepBreathEventKind]int
	Sessions   []*domain.SessionRecord
	Now        time.Time
}

// FormatStats renders a stats summary and the sessions in the window.
func FormatStats(v StatsView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s → %s\n\n", Dim("window:"), v.From.Format("Jan 2 15:04"), v.To.Format("Jan 2 15:04"))

	count, seconds := 0, 0
	rows := make([][]string, 0, len(v.Outcomes))
	for _, o := range v.Outcomes {
		count += o.Count
		seconds += o.TotalSeconds
		rows = append(rows, []string{OutcomeIndicator(o.Outcome), fmt.Sprintf("%d", o.Count), FormatMinutes(o.TotalSeconds / 60)})
	}
	if count == 0 {
		b.WriteString(Dim("No sessions in this window.") + "\n")
	} else {
		b.WriteString(RenderTable([]string{"OUTCOME", "SESSIONS", "FOCUS"}, rows))
		fmt.Fprintf(&b, "\n%s %d sessions, %s focused\n", Bold("Total:"), count, FormatMinutes(seconds/60))
	}

	started := v.DeepBreath[domain.DeepBreathStarted]
	if started > 0 {
		fmt.Fprintf(&b, "%s %d started, %d confirmed, %d timed out\n",
			Dim("deep breath:"),
			started,
			v.DeepBreath[domain.DeepBreathConfirmed],
			v.DeepBreath[domain.DeepBreathTimedOut])
	}

	if len(v.Sessions) > 0 {
		b.WriteString("\n" + Header("Sessions") + "\n")
		rows := make([][]string, 0, len(v.Sessions))
		for _, s := range v.Sessions {
			tag := s.Tag
			if tag == "" {
				tag = Dim("--")
			}
			rows = append(rows, []string{
				TruncID(s.ID),
				HumanTimestamp(s.StartedAt, v.Now),
				FormatMinutes((s.DurationSeconds + 59) / 60),
				OutcomeIndicator(s.Outcome),
				tag,
			})
		}
		b.WriteString(RenderTable([]string{"ID", "STARTED", "LENGTH", "OUTCOME", "TAG"}, rows))
	}

	return RenderBox("Stats", strings.TrimRight(b.String(), "\n"))
}
