package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/focussync/internal/api"
	"github.com/alexanderramin/focussync/internal/app"
	"github.com/alexanderramin/focussync/internal/cli"
	"github.com/alexanderramin/focussync/internal/config"
	"github.com/alexanderramin/focussync/internal/db"
	"github.com/alexanderramin/focussync/internal/repository"
	"github.com/alexanderramin/focussync/internal/service"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	clock := clockwork.NewRealClock()
	observer := service.NewLogUseCaseObserver(logger)

	recordRepo := repository.NewSQLiteSessionRecordRepo(database)
	eventRepo := repository.NewSQLiteDeepBreathEventRepo(database)
	commandRepo := repository.NewSQLiteCommandRepo(database)
	deviceRepo := repository.NewSQLiteDeviceRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	a := &cli.App{
		Config:   cfg,
		Stats:    service.NewStatsService(recordRepo, eventRepo, service.StatsConfig{Clock: clock, Logger: logger}, observer),
		Commands: service.NewCommandService(commandRepo, uow, clock, observer),
		Devices:  service.NewDeviceService(deviceRepo, observer),
		Control:  api.NewClient(cfg.HTTPAddr),
		Now:      clock.Now,
	}

	a.RunDaemon = func(ctx context.Context) error {
		return app.NewDaemon(cfg, app.Options{Clock: clock, Logger: logger}).Run(ctx)
	}

	a.IsTerminal = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	rootCmd := cli.NewRootCmd(a)
	return rootCmd.Execute()
}
