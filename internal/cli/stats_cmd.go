package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/focussync/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newStatsCmd(app *App) *cobra.Command {
	var days int
	var list bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize sessions recorded on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			ctx := cmd.Context()
			now := app.now()
			from := now.Add(-time.Duration(days) * 24 * time.Hour)

			summary, err := app.Stats.Summary(ctx, from, now)
			if err != nil {
				return err
			}
			view := formatter.StatsView{
				From:       from,
				To:         now,
				Now:        now,
				Outcomes:   summary.Outcomes,
				DeepBreath: summary.DeepBreath,
			}
			if list {
				view.Sessions, err = app.Stats.ListSessions(ctx, from, now)
				if err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStats(view))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Window size in days, ending now")
	cmd.Flags().BoolVar(&list, "list", false, "List individual sessions")

	return cmd
}
