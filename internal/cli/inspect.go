package cli

import (
	"github.com/spf13/cobra"

	"buyorder-alerts/internal/app"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <payload.json> [more.json...]",
	Short: "Extract and fingerprint buy orders from saved JSON payloads",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Inspect(cmd.Context(), app.InspectOptions{Files: args})
	},
}
