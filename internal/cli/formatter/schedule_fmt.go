package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
)

var weekdayAbbrev = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// FormatSchedule renders a schedule's blocks, marking the one active at now.
func FormatSchedule(s domain.Schedule, active bool, now time.Time) string {
	var b strings.Builder

	state := render(StyleGreen, "enabled")
	if !s.Enabled {
		state = render(StyleYellow, "disabled")
	}
	if !active {
		state += Dim(" (not active)")
	}
	fmt.Fprintf(&b, "%s %s\n\n", Bold(s.Name), state)

	current, hasCurrent := s.ActiveBlock(now)
	rows := make([][]string, 0, len(s.Blocks))
	for _, blk := range s.Blocks {
		marker := " "
		if hasCurrent && blk.ID == current.ID {
			marker = render(StyleGreen, "▶")
		}
		kind := render(StyleBlue, string(blk.Kind))
		if blk.Kind == domain.BlockBreak {
			kind = render(StyleYellow, string(blk.Kind))
		}
		rows = append(rows, []string{
			marker,
			blk.ID,
			kind,
			fmt.Sprintf("%s–%s", clock(blk.StartMinute), clock(blk.EndMinute())),
			FormatWeekdays(blk.Weekdays),
			orDash(blk.Profile),
			orDash(blk.Label),
		})
	}
	b.WriteString(RenderTable([]string{"", "ID", "KIND", "TIME", "DAYS", "PROFILE", "LABEL"}, rows))

	return RenderBox("Schedule", strings.TrimRight(b.String(), "\n"))
}

// FormatWeekdays renders a weekday set; empty means every day.
func FormatWeekdays(days []time.Weekday) string {
	if len(days) == 0 {
		return "every day"
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = weekdayAbbrev[d]
	}
	return strings.Join(names, ",")
}

func clock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

func orDash(s string) string {
	if s == "" {
		return Dim("--")
	}
	return s
}
