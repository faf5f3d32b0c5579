package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// plain disables styling and borders, for output that is not a terminal.
var plain bool

// SetPlain switches between styled and plain output.
func SetPlain(v bool) {
	plain = v
}

// Plain reports whether output is unstyled.
func Plain() bool {
	return plain
}

func render(style lipgloss.Style, text string) string {
	if plain {
		return text
	}
	return style.Render(text)
}

// OutcomeIndicator returns a colored indicator for a finished session.
func OutcomeIndicator(outcome domain.SessionOutcome) string {
	switch outcome {
	case domain.OutcomeCompleted:
		return render(StyleGreen, "✔ completed")
	case domain.OutcomeStopped:
		return render(StyleYellow, "■ stopped")
	default:
		return render(StyleDim, string(outcome))
	}
}

// RunningIndicator returns "● RUNNING" or "○ IDLE".
func RunningIndicator(running bool) string {
	if running {
		return render(StyleGreen, "● RUNNING")
	}
	return render(StyleDim, "○ IDLE")
}

// DeepBreathIndicator describes the deep-breath sub-flow phase.
func DeepBreathIndicator(phase domain.DeepBreathPhase, remainingSec int) string {
	switch phase {
	case domain.DeepBreathCounting:
		return render(StyleBlue, fmt.Sprintf("breathe… %ds", remainingSec))
	case domain.DeepBreathReadyToConfirm:
		return render(StyleYellow, fmt.Sprintf("toggle again to stop (%ds)", remainingSec))
	default:
		return render(StyleDim, "--")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", render(StyleHeader, upper), render(StyleDim, line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return render(StyleDim, text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return render(StyleBold, text)
}
