package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentify-dev/agentify/internal/telemetry"
	"github.com/agentify-dev/agentify/internal/ui"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Manage anonymous usage analytics",
	Long: `View and manage Agentify's anonymous telemetry settings.

Telemetry is opt-in. Only event names, durations, and counts are ever
sent; wizard content never leaves your machine.`,
}

var telemetryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current telemetry decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		consent, err := telemetry.GetConsentStatus()
		if err != nil {
			return fmt.Errorf("read telemetry status: %w", err)
		}
		if consent == nil {
			fmt.Println(ui.StyleSubtle.Render("Telemetry: not configured (disabled by default)."))
			fmt.Println("  To enable: agentify telemetry enable")
			return nil
		}
		if consent.Enabled {
			fmt.Println("Telemetry: enabled")
			fmt.Printf("  Install ID:    %s\n", consent.InstallID)
			fmt.Printf("  Consent given: %s\n", consent.ConsentDate.Format("2006-01-02"))
			fmt.Println("  To disable:    agentify telemetry disable")
		} else {
			fmt.Println("Telemetry: disabled")
			fmt.Println("  To enable: agentify telemetry enable")
		}
		return nil
	},
}

var telemetryEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable anonymous telemetry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := telemetry.SetConsentStatus(true, version); err != nil {
			return fmt.Errorf("enable telemetry: %w", err)
		}
		if t := telemetry.Get(); t != nil {
			t.SetEnabled(true)
		}
		fmt.Println(ui.StylePrefixDone.Render("Telemetry enabled."))
		return nil
	},
}

var telemetryDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable anonymous telemetry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := telemetry.SetConsentStatus(false, version); err != nil {
			return fmt.Errorf("disable telemetry: %w", err)
		}
		if t := telemetry.Get(); t != nil {
			t.SetEnabled(false)
		}
		fmt.Println(ui.StylePrefixDone.Render("Telemetry disabled."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(telemetryCmd)
	telemetryCmd.AddCommand(telemetryStatusCmd)
	telemetryCmd.AddCommand(telemetryEnableCmd)
	telemetryCmd.AddCommand(telemetryDisableCmd)
}
