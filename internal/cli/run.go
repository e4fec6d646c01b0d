package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deskmate-io/deskmate/internal/config"
	"github.com/deskmate-io/deskmate/internal/lifecycle"
	"github.com/deskmate-io/deskmate/internal/logging"
)

var devServerURL string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Deskmate host shell",
	Long: `Run starts the host shell: it acquires the single-instance lock,
brings the backend worker to ready, opens the companion overlay, and
stays in the system tray until quit.

If another instance is already running, this one activates its dashboard
and exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		if devServerURL != "" {
			settings.Dev.ServerURL = devServerURL
		}

		logger, err := logging.Setup(verbose)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}

		if code := lifecycle.Run(settings, logger); code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&devServerURL, "dev-server", "", "frontend dev server URL (enables dev mode)")
}
