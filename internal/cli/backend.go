package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskmate-io/deskmate/internal/backend"
	"github.com/deskmate-io/deskmate/internal/backendapi"
	"github.com/deskmate-io/deskmate/internal/config"
	"github.com/deskmate-io/deskmate/internal/logging"
	"github.com/deskmate-io/deskmate/internal/models"
)

const backendStopGrace = 5 * time.Second

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Manage and inspect the backend worker",
}

var backendStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the backend worker without the host shell",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		logger, err := logging.Setup(verbose)
		if err != nil {
			return err
		}

		if info, err := config.LoadBackendInfo(); err != nil {
			return fmt.Errorf("failed to read backend record: %w", err)
		} else if info != nil {
			if backend.PIDAlive(info.PID) {
				fmt.Printf("%s backend already running (pid %d, %s)\n", styleWarning.Render("!"), info.PID, info.BaseURL)
				return nil
			}
			// Stale record from a crashed or externally killed worker.
			_ = config.RemoveBackendInfo()
		}

		sup := backend.NewFromSettings(settings, logger)

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		if err := sup.Start(ctx); err != nil {
			fmt.Printf("%s backend failed to start\n", styleError.Render("✗"))
			return err
		}

		if sup.External() {
			fmt.Printf("%s backend already running at %s (not managed by this CLI)\n", styleWarning.Render("!"), sup.BaseURL())
			return nil
		}

		info := models.NewBackendInfo(sup.OwnedPID(), sup.BaseURL())
		if err := config.SaveBackendInfo(info); err != nil {
			return fmt.Errorf("failed to record backend process: %w", err)
		}

		fmt.Printf("%s backend started (pid %d, %s)\n", styleSuccess.Render("✓"), info.PID, info.BaseURL)
		return nil
	},
}

var backendStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a backend worker started with \"backend start\"",
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := config.LoadBackendInfo()
		if err != nil {
			return fmt.Errorf("failed to read backend record: %w", err)
		}
		if info == nil {
			fmt.Printf("%s no managed backend is recorded\n", styleWarning.Render("!"))
			return nil
		}

		if !backend.PIDAlive(info.PID) {
			if err := config.RemoveBackendInfo(); err != nil {
				return fmt.Errorf("failed to clear stale backend record: %w", err)
			}
			fmt.Printf("%s backend (pid %d) was already gone; record cleared\n", styleWarning.Render("!"), info.PID)
			return nil
		}

		if err := backend.TerminatePID(info.PID, backendStopGrace); err != nil {
			return fmt.Errorf("failed to stop backend: %w", err)
		}
		if err := config.RemoveBackendInfo(); err != nil {
			return fmt.Errorf("failed to clear backend record: %w", err)
		}

		fmt.Printf("%s backend stopped (pid %d)\n", styleSuccess.Render("✓"), info.PID)
		return nil
	},
}

var backendStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the backend worker's process and health status",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		logger, err := logging.Setup(verbose)
		if err != nil {
			return err
		}

		info, err := config.LoadBackendInfo()
		if err != nil {
			return fmt.Errorf("failed to read backend record: %w", err)
		}
		switch {
		case info == nil:
			fmt.Printf("%s %s\n", styleLabel.Render("Managed:"), styleValue.Render("no"))
		case backend.PIDAlive(info.PID):
			fmt.Printf("%s %s\n", styleLabel.Render("Managed:"), styleSuccess.Render("running"))
			fmt.Printf("%s %s\n", styleLabel.Render("PID:"), styleValue.Render(fmt.Sprintf("%d", info.PID)))
			fmt.Printf("%s %s\n", styleLabel.Render("Started:"), styleValue.Render(info.StartedAt.Local().Format(time.RFC1123)))
		default:
			fmt.Printf("%s %s\n", styleLabel.Render("Managed:"), styleWarning.Render("stale record (process gone)"))
		}

		baseURL := fmt.Sprintf("http://%s:%d", settings.Backend.Host, settings.Backend.Port)
		client := backendapi.New(baseURL, settings.Backend.HealthPath, logger)

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		health, err := client.CheckHealth(ctx)
		switch {
		case err != nil:
			fmt.Printf("%s %s\n", styleLabel.Render("Health:"), styleWarning.Render("unreachable"))
		case health.Healthy():
			fmt.Printf("%s %s\n", styleLabel.Render("Health:"), styleSuccess.Render(health.Status))
		default:
			fmt.Printf("%s %s\n", styleLabel.Render("Health:"), styleWarning.Render(health.Status))
		}
		return nil
	},
}

var detailedHealth bool

var backendHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the backend worker's health endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if detailedHealth {
			detailed, err := client.CheckDetailedHealth(ctx)
			if err != nil {
				fmt.Printf("%s backend at %s is unreachable\n", styleError.Render("✗"), baseURL)
				return err
			}
			printHealth(detailed.Health)
			fmt.Printf("  %s %s\n", styleLabel.Render("Uptime:"), styleValue.Render(fmt.Sprintf("%.0fs", detailed.UptimeSeconds)))
			fmt.Printf("  %s %s\n", styleLabel.Render("CPU:"), styleValue.Render(fmt.Sprintf("%.1f%%", detailed.System.CPUPercent)))
			fmt.Printf("  %s %s\n", styleLabel.Render("Memory:"), styleValue.Render(fmt.Sprintf("%.1f%%", detailed.System.MemoryPercent)))
			fmt.Printf("  %s %s\n", styleLabel.Render("Disk:"), styleValue.Render(fmt.Sprintf("%.1f%%", detailed.System.DiskPercent)))
			return nil
		}

		health, err := client.CheckHealth(ctx)
		if err != nil {
			fmt.Printf("%s backend at %s is unreachable\n", styleError.Render("✗"), baseURL)
			return err
		}
		printHealth(health)
		return nil
	},
}

func printHealth(health backendapi.Health) {
	badge := styleSuccess.Render("✓")
	if !health.Healthy() {
		badge = styleWarning.Render("!")
	}
	fmt.Printf("%s %s %s\n", badge, styleLabel.Render("Status:"), styleValue.Render(health.Status))
	if health.Service != "" {
		fmt.Printf("  %s %s\n", styleLabel.Render("Service:"), styleValue.Render(health.Service))
	}
	if health.Version != "" {
		fmt.Printf("  %s %s\n", styleLabel.Render("Version:"), styleValue.Render(health.Version))
	}
}

var backendURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the backend worker's base URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		fmt.Printf("http://%s:%d\n", settings.Backend.Host, settings.Backend.Port)
		return nil
	},
}

func init() {
	backendHealthCmd.Flags().BoolVar(&detailedHealth, "detailed", false, "include uptime and system metrics")
	backendCmd.AddCommand(backendStartCmd)
	backendCmd.AddCommand(backendStopCmd)
	backendCmd.AddCommand(backendStatusCmd)
	backendCmd.AddCommand(backendHealthCmd)
	backendCmd.AddCommand(backendURLCmd)
}
