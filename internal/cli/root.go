package cli

import (
	"context"
	"time"

	"github.com/alexanderramin/focussync/internal/cli/formatter"
	"github.com/alexanderramin/focussync/internal/config"
	"github.com/alexanderramin/focussync/internal/contract"
	"github.com/alexanderramin/focussync/internal/service"
	"github.com/spf13/cobra"
)

// Control drives a running daemon. api.Client implements it.
type Control interface {
	Status(ctx context.Context) (*contract.SessionStatus, error)
	Toggle(ctx context.Context) (*contract.SessionStatus, error)
	SetPreferences(ctx context.Context, req contract.PreferencesRequest) (*contract.SessionStatus, error)
}

// App holds what CLI commands need. Services read and write the local
// database directly; Control reaches the daemon.
type App struct {
	Config   config.Config
	Stats    service.StatsService
	Commands service.CommandService
	Devices  service.DeviceService
	Control  Control

	// RunDaemon runs the daemon until ctx is cancelled.
	RunDaemon func(ctx context.Context) error
	// IsTerminal reports whether stdout is a terminal; styling is off otherwise.
	IsTerminal func() bool
	Now        func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "focussync" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var noColor bool

	root := &cobra.Command{
		Use:           "focussync",
		Short:         "Focus timer that stays in sync across your devices",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			tty := app.IsTerminal != nil && app.IsTerminal()
			formatter.SetPlain(noColor || !tty)
		},
	}
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colors and borders")

	root.AddCommand(
		newRunCmd(app),
		newStatusCmd(app),
		newToggleCmd(app),
		newSetCmd(app),
		newCommandCmd(app),
		newStatsCmd(app),
		newScheduleCmd(app),
		newDeviceCmd(app),
	)

	return root
}
