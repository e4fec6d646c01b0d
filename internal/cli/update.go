package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskmate-io/deskmate/internal/updater"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer Deskmate release",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		result, err := updater.NewChecker().Check(ctx)
		if err != nil {
			return fmt.Errorf("update check failed: %w", err)
		}

		if !result.Available {
			fmt.Printf("%s Deskmate %s is up to date\n", styleSuccess.Render("✓"), result.CurrentVersion)
			return nil
		}

		fmt.Printf("%s %s → %s\n", styleUpdate.Render("Update available:"), result.CurrentVersion, result.LatestVersion)
		if result.ReleaseURL != "" {
			fmt.Printf("  %s %s\n", styleLabel.Render("Release:"), styleValue.Render(result.ReleaseURL))
		}
		if asset := updater.FindAsset(result.Release, updater.HostAssetName()); asset != nil {
			fmt.Printf("  %s %s\n", styleLabel.Render("Download:"), styleValue.Render(asset.BrowserDownloadURL))
		}
		return nil
	},
}
