// Package app wires the focussync daemon: storage, replication, the session
// engine, the schedule runner and the control API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/alexanderramin/focussync/internal/api"
	"github.com/alexanderramin/focussync/internal/config"
	"github.com/alexanderramin/focussync/internal/db"
	"github.com/alexanderramin/focussync/internal/hooks"
	"github.com/alexanderramin/focussync/internal/metrics"
	"github.com/alexanderramin/focussync/internal/replication"
	"github.com/alexanderramin/focussync/internal/repository"
	"github.com/alexanderramin/focussync/internal/schedule"
	"github.com/alexanderramin/focussync/internal/service"
	"github.com/alexanderramin/focussync/internal/session"
	"github.com/jonboulle/clockwork"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// Options overrides collaborators, mainly for tests.
type Options struct {
	Clock  clockwork.Clock
	Logger *slog.Logger
	// Store replaces the replication store chosen from the config.
	Store replication.Store
	// OnReady is called once the engine is built, before components start.
	OnReady func(*session.Engine)
}

type Daemon struct {
	cfg    config.Config
	opts   Options
	logger *slog.Logger
}

func NewDaemon(cfg config.Config, opts Options) *Daemon {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Daemon{cfg: cfg, opts: opts, logger: opts.Logger}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails. A cancelled ctx is a clean shutdown and returns nil.
func (d *Daemon) Run(ctx context.Context) error {
	cfg := d.cfg
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		reg := prom.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}

	observer := service.NewLogUseCaseObserver(d.logger)
	useCaseMetrics := service.NewMetricsUseCaseObserver(recorder)
	devices := service.NewDeviceService(repository.NewSQLiteDeviceRepo(database), observer, useCaseMetrics)
	originID, err := devices.EnsureOriginID(ctx)
	if err != nil {
		return err
	}
	stats := service.NewStatsService(
		repository.NewSQLiteSessionRecordRepo(database),
		repository.NewSQLiteDeepBreathEventRepo(database),
		service.StatsConfig{Clock: d.opts.Clock, Logger: d.logger},
		observer,
		useCaseMetrics,
	)
	commands := service.NewCommandService(
		repository.NewSQLiteCommandRepo(database),
		db.NewSQLiteUnitOfWork(database),
		d.opts.Clock,
		observer,
		useCaseMetrics,
	)

	store, err := d.openStore(ctx, originID)
	if err != nil {
		return err
	}
	defer store.Close()

	syncer := replication.NewSyncer(store, replication.SyncerConfig{
		OriginID: originID,
		Logger:   d.logger,
		Recorder: recorder,
	})
	state, prefs := syncer.LoadInitial(ctx)
	if prefs.UpdatedAt.IsZero() {
		prefs.Minutes = cfg.DefaultMinutes
	}

	blocker := hooks.NewCommandBlocker(hooks.BlockerConfig{
		BeginCommand: cfg.BlockBeginHook,
		EndCommand:   cfg.BlockEndHook,
		Timeout:      cfg.HookTimeout,
		Logger:       d.logger,
	})
	notifier := hooks.NewLogNotifier(d.logger)

	engine := session.NewEngine(session.EngineConfig{
		Clock:           d.opts.Clock,
		TickInterval:    cfg.TickInterval,
		CommandInterval: cfg.CommandInterval,
		CommandMaxAge:   cfg.CommandMaxAge,
		Commands:        commands,
		Logger:          d.logger,
	}, session.Options{
		OriginID:         originID,
		DeepBreathCount:  cfg.DeepBreathCount,
		DeepBreathWindow: cfg.DeepBreathWindow,
		Publisher:        syncer,
		Blocker:          blocker,
		Notifier:         notifier,
		Stats:            stats,
		Recorder:         recorder,
	}, state, prefs)

	if err := os.MkdirAll(filepath.Dir(cfg.ScheduleFile), 0o755); err != nil {
		return fmt.Errorf("creating schedule directory: %w", err)
	}
	schedules, err := schedule.NewFileStore(cfg.ScheduleFile, schedule.FileStoreConfig{Logger: d.logger})
	if err != nil {
		return err
	}
	evaluator := schedule.NewEvaluator(engine, schedules, schedule.EvaluatorConfig{
		Clock:    d.opts.Clock,
		Location: loc,
		Blocker:  blocker,
		Notifier: notifier,
		Recorder: recorder,
		Logger:   d.logger,
	})
	runner, err := schedule.NewRunner(evaluator, schedule.RunnerConfig{
		Clock:    d.opts.Clock,
		Interval: cfg.EvalInterval,
		Logger:   d.logger,
	})
	if err != nil {
		return err
	}

	if d.opts.OnReady != nil {
		d.opts.OnReady(engine)
	}

	d.logger.Info("focussync daemon starting", "origin_id", originID, "db", cfg.DBPath, "schedule", schedules.Path())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return stats.Run(gctx) })
	g.Go(func() error { return blocker.Run(gctx) })
	g.Go(func() error { return engine.Run(gctx) })
	g.Go(func() error { return syncer.Run(gctx, engine) })
	g.Go(func() error { return schedules.Watch(gctx) })
	g.Go(func() error { return runner.Run(gctx) })
	if cfg.HTTPAddr != "" {
		server := api.NewServer(api.Config{
			Addr:     cfg.HTTPAddr,
			Session:  engine,
			Commands: commands,
			Metrics:  metricsHandler,
			Logger:   d.logger,
		})
		g.Go(func() error { return server.Run(gctx) })
	}

	err = g.Wait()
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		d.logger.Info("focussync daemon stopped")
		return nil
	}
	return err
}

// openStore connects to NATS when configured. An unreachable server degrades
// to a local-only in-memory store.
func (d *Daemon) openStore(ctx context.Context, originID string) (replication.Store, error) {
	if d.opts.Store != nil {
		return d.opts.Store, nil
	}
	if d.cfg.NATSURL == "" {
		d.logger.Info("no NATS URL configured, running local-only")
		return replication.NewMemoryStore(), nil
	}
	store, err := replication.NewNATSStore(ctx, replication.NATSConfig{
		URL:    d.cfg.NATSURL,
		Bucket: d.cfg.NATSBucket,
		Name:   "focussync-" + originID,
		Logger: d.logger,
	})
	if err != nil {
		d.logger.Warn("replication unavailable, running local-only", "url", d.cfg.NATSURL, "error", err)
		return replication.NewMemoryStore(), nil
	}
	return store, nil
}
