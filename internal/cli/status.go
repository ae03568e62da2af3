package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ticktick-mcp/deployctl/internal/config"
	"github.com/ticktick-mcp/deployctl/internal/deploy"
	"github.com/ticktick-mcp/deployctl/internal/health"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the deployed app",
	Long:  `Check the health endpoint of the deployed app and list its public URLs.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		f := deploy.NewFollowUp(cfg.Flyctl, cfg.AppName, cfg.PlatformDomain, cfg.HealthPath)
		result := health.Check(cmd.Context(), nil, f.HealthURL)

		// Print status
		out := cmd.OutOrStdout()
		color.New(color.FgCyan).Fprintln(out, "App              Status    URL")
		color.New(color.FgCyan).Fprintln(out, "────────────────────────────────────────")
		printAppStatus(cmd, cfg.AppName, result)

		color.New(color.FgCyan).Fprintf(out, "\nSSE endpoint: %s\n", f.SSEURL)
		color.New(color.FgCyan).Fprintf(out, "Details:      %s\n", f.Commands[1])

		return nil
	},
}

func printAppStatus(cmd *cobra.Command, name string, result health.Result) {
	var statusText string
	switch result.Status {
	case health.StatusUp:
		statusText = color.GreenString("✓ UP  ")
	case health.StatusDown:
		statusText = color.RedString("✗ DOWN")
	default:
		statusText = color.RedString("✗ UNKNOWN")
	}

	color.New().Fprintf(cmd.OutOrStdout(), "%-16s %s    %s\n", name, statusText, result.URL)
}
