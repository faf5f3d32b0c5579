package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/focussync/internal/cli/formatter"
	"github.com/alexanderramin/focussync/internal/contract"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Control.Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSession(s))
			return nil
		},
	}
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Start a session, or stop the running one",
		Long: `Start a session, or stop the running one.

With deep breath enabled, stopping takes two toggles: the first starts a
short countdown, the second (within the confirmation window) stops.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Control.Toggle(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSession(s))
			return nil
		},
	}
}

func newSetCmd(app *App) *cobra.Command {
	var minutes int
	var deepBreath string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change shared preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req contract.PreferencesRequest
			if cmd.Flags().Changed("minutes") {
				req.Minutes = &minutes
			}
			if cmd.Flags().Changed("deep-breath") {
				enabled, err := parseSwitch(deepBreath)
				if err != nil {
					return fmt.Errorf("--deep-breath: %w", err)
				}
				req.DeepBreathEnabled = &enabled
			}
			if req.Empty() {
				return fmt.Errorf("nothing to set: pass --minutes or --deep-breath")
			}

			s, err := app.Control.SetPreferences(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSession(s))
			return nil
		},
	}

	cmd.Flags().IntVar(&minutes, "minutes", 0, "Session length in minutes")
	cmd.Flags().StringVar(&deepBreath, "deep-breath", "", "Deep-breath confirmation before stopping (on|off)")

	return cmd
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("want on or off, got %q", s)
	}
	return b, nil
}
