package cli

import (
	"fmt"

	"github.com/alexanderramin/focussync/internal/cli/formatter"
	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/spf13/cobra"
)

func newCommandCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "command",
		Short: "Queue a start or stop request for the daemon",
		Long: `Queue a start or stop request for the daemon, the way a widget does.

The daemon picks the request up on its next poll. Requests older than the
configured max age are discarded.`,
	}

	for _, action := range []domain.CommandAction{domain.CommandStart, domain.CommandStop} {
		cmd.AddCommand(&cobra.Command{
			Use:   string(action),
			Short: fmt.Sprintf("Request the session to %s", action),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := app.Commands.Enqueue(cmd.Context(), action, "cli")
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %s command %s\n", c.Action, formatter.TruncID(c.ID))
				return nil
			},
		})
	}

	return cmd
}
