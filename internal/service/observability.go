package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/focussync/internal/metrics"
)

// UseCaseEvent describes one finished service call.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Err       error
	Attrs     []slog.Attr
}

func (e UseCaseEvent) Failed() bool { return e.Err != nil }

type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver logs calls at debug and failures at error.
func NewLogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{logger: logger.With("component", "service")}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := append([]slog.Attr{
		slog.String("use_case", event.Name),
		slog.Int64("duration_ms", event.Duration.Milliseconds()),
	}, event.Attrs...)
	level := slog.LevelDebug
	if event.Failed() {
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	o.logger.LogAttrs(ctx, level, "service use case", attrs...)
}

type metricsUseCaseObserver struct {
	recorder metrics.Recorder
}

// NewMetricsUseCaseObserver feeds call latency and failures to recorder.
func NewMetricsUseCaseObserver(recorder metrics.Recorder) UseCaseObserver {
	return &metricsUseCaseObserver{recorder: metrics.OrNoop(recorder)}
}

func (o *metricsUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.recorder.ObserveUseCase(event.Name, event.Duration, !event.Failed())
}

type multiUseCaseObserver []UseCaseObserver

func (m multiUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, obs := range m {
		obs.ObserveUseCase(ctx, event)
	}
}

// useCaseObserverOrNoop combines the non-nil observers.
func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	var live multiUseCaseObserver
	for _, obs := range observers {
		if obs != nil {
			live = append(live, obs)
		}
	}
	switch len(live) {
	case 0:
		return NoopUseCaseObserver{}
	case 1:
		return live[0]
	}
	return live
}

// observe reports a finished use case. Defer it with a pointer to the named
// error result.
func observe(ctx context.Context, obs UseCaseObserver, name string, startedAt time.Time, err *error, attrs ...slog.Attr) {
	event := UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Attrs:     attrs,
	}
	if err != nil {
		event.Err = *err
	}
	obs.ObserveUseCase(ctx, event)
}
