package cli

import (
	"github.com/spf13/cobra"

	"github.com/ticktick-mcp/deployctl/internal/config"
	"github.com/ticktick-mcp/deployctl/internal/deploy"
	"github.com/ticktick-mcp/deployctl/internal/flyctl"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the app to Fly.io",
	Long: `Deploy the app to Fly.io.

Stops at the first failing flyctl call and exits with its exit code.
A missing env file is not an error.`,
	Args: cobra.NoArgs,
	RunE: runDeploy,
}

func runDeploy(cmd *cobra.Command, args []string) error {
	// Load configuration (Viper resolves behind the scenes)
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, err := withLogger(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	client := flyctl.New(flyctl.NewExecRunner(), cfg.Flyctl)
	return deploy.New(cfg, client, cmd.OutOrStdout()).Run(ctx)
}
