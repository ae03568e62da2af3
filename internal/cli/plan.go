package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ticktick-mcp/deployctl/internal/config"
	"github.com/ticktick-mcp/deployctl/internal/deploy"
	"github.com/ticktick-mcp/deployctl/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the flyctl commands a deploy would run",
	Long: `Print the deploy plan without calling flyctl.

Secret values from the env file are redacted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		env, _, err := deploy.LoadEnvFile(afero.NewOsFs(), cfg)
		if err != nil {
			return err
		}

		p := plan.Build(cfg, env)

		file, _ := cmd.Flags().GetString("file")
		if file != "" {
			if err := plan.Save(p, file); err != nil {
				color.Red("✗ Failed to save plan: %v", err)
				return err
			}
			color.Green("✓ Plan written to %s", file)
			return nil
		}

		output, _ := cmd.Flags().GetString("output")
		if err := plan.Encode(cmd.OutOrStdout(), p, output); err != nil {
			return fmt.Errorf("failed to print plan: %w", err)
		}
		return nil
	},
}

func init() {
	planCmd.Flags().StringP("output", "o", "yaml", "Output format (yaml|json)")
	planCmd.Flags().StringP("file", "f", "", "Write the plan to a file (.json, .yaml or .yml)")
}
