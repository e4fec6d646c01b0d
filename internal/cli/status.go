package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskmate-io/deskmate/internal/backendapi"
	"github.com/deskmate-io/deskmate/internal/config"
	"github.com/deskmate-io/deskmate/internal/logging"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show host shell and backend status",
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := config.LoadHostInfo()
		if err != nil {
			return fmt.Errorf("failed to read host record: %w", err)
		}

		fmt.Println(styleBrand.Render("Deskmate"))
		if info == nil {
			fmt.Printf("  %s %s\n", styleLabel.Render("Host:"), styleWarning.Render("not running"))
		} else {
			fmt.Printf("  %s %s\n", styleLabel.Render("Host:"), styleSuccess.Render("running"))
			fmt.Printf("  %s %s\n", styleLabel.Render("PID:"), styleValue.Render(fmt.Sprintf("%d", info.PID)))
			fmt.Printf("  %s %s\n", styleLabel.Render("Started:"), styleValue.Render(info.StartedAt.Local().Format(time.RFC1123)))
		}

		settings, err := config.LoadSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		logger, err := logging.Setup(verbose)
		if err != nil {
			return err
		}

		baseURL := fmt.Sprintf("http://%s:%d", settings.Backend.Host, settings.Backend.Port)
		client := backendapi.New(baseURL, settings.Backend.HealthPath, logger)

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		health, err := client.CheckHealth(ctx)
		switch {
		case err != nil:
			fmt.Printf("  %s %s\n", styleLabel.Render("Backend:"), styleWarning.Render("unreachable"))
		case health.Healthy():
			fmt.Printf("  %s %s\n", styleLabel.Render("Backend:"), styleSuccess.Render("healthy"))
		default:
			fmt.Printf("  %s %s\n", styleLabel.Render("Backend:"), styleWarning.Render(health.Status))
		}
		return nil
	},
}
