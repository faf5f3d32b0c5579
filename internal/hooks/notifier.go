package hooks

import (
	"log/slog"

	"github.com/alexanderramin/focussync/internal/domain"
)

// LogNotifier implements the notification port by logging each event.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "notifier")}
}

func (n *LogNotifier) NotifyExternalStart(durationMinutes int) {
	n.logger.Info("session started on another device", "minutes", durationMinutes)
}

func (n *LogNotifier) NotifyBlockStart(block domain.ScheduleBlock) {
	n.logger.Info("schedule block started", blockAttrs(block)...)
}

func (n *LogNotifier) NotifyBlockEnd(block domain.ScheduleBlock) {
	n.logger.Info("schedule block ended", blockAttrs(block)...)
}

func (n *LogNotifier) NotifyScheduleChange(enabled bool, name string) {
	if enabled {
		n.logger.Info("schedule enabled", "schedule", name)
		return
	}
	n.logger.Info("schedule disabled", "schedule", name)
}

func blockAttrs(block domain.ScheduleBlock) []any {
	attrs := []any{"block", block.ID, "kind", string(block.Kind), "minutes", block.DurationMinutes}
	if block.Label != "" {
		attrs = append(attrs, "label", block.Label)
	}
	return attrs
}
