// Package cli implements the deskmate CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "deskmate",
	Short: "Desktop companion host shell",
	Long: `Deskmate is the host shell for the desktop companion: it supervises
the backend worker, serves the UI surfaces, and mediates every privileged
call between them.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(backendCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}
