package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/focussync/internal/cli/formatter"
	"github.com/alexanderramin/focussync/internal/schedule"
	"github.com/spf13/cobra"
)

func newScheduleCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect the schedule file",
	}
	cmd.PersistentFlags().StringVar(&file, "file", "", "Schedule file (defaults to the configured path)")

	path := func() string {
		if file != "" {
			return file
		}
		return app.Config.ScheduleFile
	}

	cmd.AddCommand(
		newScheduleShowCmd(app, path),
		newScheduleCheckCmd(path),
	)

	return cmd
}

func newScheduleShowCmd(app *App, path func() string) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show schedules and the block active now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := schedule.LoadFile(path())
			if err != nil {
				return err
			}
			loc, err := app.Config.Location()
			if err != nil {
				return err
			}
			now := app.now().In(loc)
			if at != "" {
				minute, err := schedule.ParseClock(at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				y, m, d := now.Date()
				now = time.Date(y, m, d, minute/60, minute%60, 0, 0, loc)
			}

			out := cmd.OutOrStdout()
			if len(f.Schedules) == 0 {
				fmt.Fprintln(out, "No schedules defined.")
				return nil
			}
			for _, s := range f.Schedules {
				fmt.Fprintln(out, formatter.FormatSchedule(s, s.Name == f.Active, now))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Evaluate at HH:MM today instead of now")

	return cmd
}

func newScheduleCheckCmd(path func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the schedule file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := schedule.LoadFile(path())
			if err != nil {
				return err
			}
			active := f.Active
			if active == "" {
				active = "none"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d schedules, %d profiles, active: %s\n",
				path(), len(f.Schedules), len(f.Profiles), active)
			return nil
		},
	}
}
