// Package cli holds the cobra command tree for deployctl.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ticktick-mcp/deployctl/internal/config"
	"github.com/ticktick-mcp/deployctl/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "deployctl",
	Short: "Deploy the TickTick MCP server to Fly.io",
	Long: `Deploy the TickTick MCP server to Fly.io using flyctl.

Running deployctl without a subcommand performs a full deploy:
checks flyctl, logs in if needed, creates the app if missing,
pushes secrets from the env file, sets platform secrets,
deploys, and prints the follow-up URLs.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runDeploy,
}

// Execute runs the root command. Ctrl-C cancels the running flyctl process.
func Execute(version string) error {
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// withLogger attaches the configured logger to ctx.
func withLogger(ctx context.Context, cfg *config.Config) (context.Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logger.WithContext(ctx), nil
}

func init() {
	// Flags shared by deploy and plan
	flags := rootCmd.PersistentFlags()
	flags.String("app", "", "Fly.io app name")
	flags.String("region", "", "Primary region")
	flags.String("org", "", "Organization used when creating the app")
	flags.String("env-file", "", "Secrets file (KEY=VALUE per line)")
	flags.String("log-level", "", "Log level ("+zerolog.LevelDebugValue+"|"+zerolog.LevelInfoValue+"|"+zerolog.LevelWarnValue+"|"+zerolog.LevelErrorValue+")")

	// Bind flags to viper
	viper.BindPFlag("app-name", flags.Lookup("app"))
	viper.BindPFlag("region", flags.Lookup("region"))
	viper.BindPFlag("org", flags.Lookup("org"))
	viper.BindPFlag("env-file", flags.Lookup("env-file"))
	viper.BindPFlag("log-level", flags.Lookup("log-level"))

	rootCmd.AddCommand(deployCmd, planCmd, statusCmd, configCmd, versionCmd)
}
