// scanctl is the command line companion to the scan station server. It
// drives the scanner directly through the same driver stack, without going
// through the HTTP API.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scanctl",
		Short: "Control scanners and build documents from the command line",
		Long: `scanctl talks to the configured scanner driver directly: list devices,
run single or feeder scans, and assemble the captured pages into a PDF or
image files.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newDevicesCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
