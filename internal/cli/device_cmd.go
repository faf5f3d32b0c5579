package cli

import (
	"fmt"

	"github.com/alexanderramin/focussync/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newDeviceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Show or rename this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.Devices.EnsureOriginID(ctx); err != nil {
				return err
			}
			d, err := app.Devices.Get(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDevice(d))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rename NAME",
		Short: "Rename this device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Devices.Rename(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Device renamed to %s\n", args[0])
			return nil
		},
	})

	return cmd
}
