package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

const DefaultInterval = 15 * time.Second

type RunnerConfig struct {
	Clock    clockwork.Clock
	Interval time.Duration
	Logger   *slog.Logger
}

// Runner evaluates the schedule periodically on a gocron job. Singleton
// mode keeps a slow pass from overlapping the next one.
type Runner struct {
	scheduler gocron.Scheduler
	eval      *Evaluator
	interval  time.Duration
	logger    *slog.Logger
}

func NewRunner(eval *Evaluator, cfg RunnerConfig) (*Runner, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	opts := []gocron.SchedulerOption{}
	if cfg.Clock != nil {
		opts = append(opts, gocron.WithClock(cfg.Clock))
	}
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Runner{scheduler: s, eval: eval, interval: cfg.Interval, logger: cfg.Logger}, nil
}

// Run evaluates once immediately and then every interval until ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context) error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(func() { r.evaluate(ctx) }),
		gocron.WithName("schedule-evaluation"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule evaluation job: %w", err)
	}

	r.logger.Info("starting schedule runner", "interval", r.interval)
	r.scheduler.Start()
	<-ctx.Done()
	r.logger.Info("stopping schedule runner")
	if err := r.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutting down scheduler: %w", err)
	}
	return ctx.Err()
}

func (r *Runner) evaluate(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := r.eval.Evaluate(ctx); err != nil {
		r.logger.Warn("schedule evaluation failed", "error", err)
	}
}
