// Package deploy runs the Fly.io deployment sequence for the MCP server.
//
// Steps run in a fixed order and the first failure stops the run. Nothing is
// retried or rolled back: flyctl is the source of truth and its own error
// output is surfaced unchanged.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/ticktick-mcp/deployctl/internal/config"
	"github.com/ticktick-mcp/deployctl/internal/envfile"
	"github.com/ticktick-mcp/deployctl/internal/flyctl"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
)

// Step is one stage of the deployment.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Orchestrator wires the configuration, flyctl client and local filesystem
// together.
type Orchestrator struct {
	Config *config.Config
	Client *flyctl.Client
	FS     afero.Fs
	Out    io.Writer
	GOOS   string
}

// New returns an orchestrator reading the env file from the OS filesystem.
func New(cfg *config.Config, client *flyctl.Client, out io.Writer) *Orchestrator {
	return &Orchestrator{
		Config: cfg,
		Client: client,
		FS:     afero.NewOsFs(),
		Out:    out,
		GOOS:   runtime.GOOS,
	}
}

// Steps lists the stages in the order Run executes them.
func (o *Orchestrator) Steps() []Step {
	return []Step{
		{Name: "check-tool", Run: o.CheckTool},
		{Name: "authenticate", Run: o.EnsureAuth},
		{Name: "ensure-app", Run: o.EnsureApp},
		{Name: "env-secrets", Run: o.PushEnvSecrets},
		{Name: "platform-secrets", Run: o.PushPlatformSecrets},
		{Name: "deploy", Run: o.Deploy},
		{Name: "follow-up", Run: o.PrintFollowUp},
	}
}

// Run executes every step, stopping at the first error.
func (o *Orchestrator) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	cyan.Fprintf(o.Out, "Deploying %s to Fly.io (region %s)\n", o.Config.AppName, o.Config.Region)

	for _, step := range o.Steps() {
		logger.Debug().Str("step", step.Name).Msg("starting step")
		if err := step.Run(ctx); err != nil {
			logger.Debug().Str("step", step.Name).Err(err).Msg("step failed")
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}

	return nil
}

// CheckTool fails with flyctl.ErrToolNotFound when the CLI is missing and
// prints how to install it.
func (o *Orchestrator) CheckTool(ctx context.Context) error {
	path, err := o.Client.Installed()
	if err != nil {
		red.Fprintf(o.Out, "✗ %s is not installed\n", o.Client.Binary)
		cyan.Fprintln(o.Out, "Install it with:")
		for _, line := range InstallGuidance(o.GOOS) {
			cyan.Fprintf(o.Out, "  %s\n", line)
		}
		return err
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("found flyctl")
	green.Fprintf(o.Out, "✓ %s found\n", o.Client.Binary)
	return nil
}

// EnsureAuth logs in interactively when no identity is active.
func (o *Orchestrator) EnsureAuth(ctx context.Context) error {
	cyan.Fprintln(o.Out, "→ Checking Fly.io authentication...")

	if identity, ok := o.Client.Whoami(ctx); ok {
		green.Fprintf(o.Out, "✓ Logged in as %s\n", identity)
		return nil
	}

	yellow.Fprintln(o.Out, "⚠ Not logged in, starting login")
	if err := o.Client.Login(ctx); err != nil {
		red.Fprintln(o.Out, "✗ Login failed")
		return err
	}

	green.Fprintln(o.Out, "✓ Logged in")
	return nil
}

// EnsureApp creates the app when the platform does not know it yet.
func (o *Orchestrator) EnsureApp(ctx context.Context) error {
	app := o.Config.AppName
	cyan.Fprintf(o.Out, "→ Checking app %s...\n", app)

	if o.Client.AppExists(ctx, app) {
		green.Fprintf(o.Out, "✓ App %s exists\n", app)
		return nil
	}

	cyan.Fprintf(o.Out, "→ Creating app %s in org %s...\n", app, o.Config.Org)
	if err := o.Client.CreateApp(ctx, app, o.Config.Org); err != nil {
		red.Fprintf(o.Out, "✗ Failed to create app %s\n", app)
		return err
	}

	green.Fprintf(o.Out, "✓ App %s created\n", app)
	return nil
}

// PushEnvSecrets sets one secret per env file entry. A missing file is not
// an error; the operator is told how to set secrets by hand instead.
func (o *Orchestrator) PushEnvSecrets(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	result, found, err := o.loadEnvFile()
	if err != nil {
		return err
	}

	if !found {
		yellow.Fprintf(o.Out, "⚠ %s not found, skipping secrets from file\n", o.Config.EnvFile)
		cyan.Fprintln(o.Out, "Set secrets manually with:")
		cyan.Fprintf(o.Out, "  %s\n", ManualSecretsCommand(o.Client.Binary, o.Config.AppName))
		return nil
	}

	for _, warning := range result.Warnings {
		logger.Warn().Str("file", o.Config.EnvFile).Msg(warning)
		yellow.Fprintf(o.Out, "⚠ %s: %s\n", o.Config.EnvFile, warning)
	}

	cyan.Fprintf(o.Out, "→ Setting %d secrets from %s...\n", len(result.Entries), o.Config.EnvFile)
	return o.setSecrets(ctx, result.Entries)
}

// PushPlatformSecrets sets the app name and public base URL.
func (o *Orchestrator) PushPlatformSecrets(ctx context.Context) error {
	cyan.Fprintln(o.Out, "→ Setting platform secrets...")
	return o.setSecrets(ctx, PlatformSecrets(o.Config.AppName, o.Config.PlatformDomain))
}

// Deploy triggers the remote build and release.
func (o *Orchestrator) Deploy(ctx context.Context) error {
	cyan.Fprintf(o.Out, "→ Deploying %s...\n", o.Config.AppName)

	if err := o.Client.Deploy(ctx, o.Config.AppName, o.Config.Region); err != nil {
		red.Fprintln(o.Out, "✗ Deployment failed")
		return err
	}

	green.Fprintln(o.Out, "✓ Deployment complete")
	return nil
}

// PrintFollowUp prints the URLs and commands an operator needs next.
func (o *Orchestrator) PrintFollowUp(ctx context.Context) error {
	f := NewFollowUp(o.Client.Binary, o.Config.AppName, o.Config.PlatformDomain, o.Config.HealthPath)

	cyan.Fprintln(o.Out, "\nNext steps:")
	cyan.Fprintf(o.Out, "  OAuth redirect URI: %s\n", f.CallbackURL)
	cyan.Fprintf(o.Out, "  Health check:       %s\n", f.HealthURL)
	cyan.Fprintf(o.Out, "  MCP SSE endpoint:   %s\n", f.SSEURL)
	cyan.Fprintln(o.Out, "\nUseful commands:")
	for _, c := range f.Commands {
		cyan.Fprintf(o.Out, "  %s\n", c)
	}

	return nil
}

func (o *Orchestrator) loadEnvFile() (*envfile.Result, bool, error) {
	return LoadEnvFile(o.FS, o.Config)
}

// LoadEnvFile reads cfg.EnvFile with the configured format and quote mode.
// found is false when the file does not exist.
func LoadEnvFile(fsys afero.Fs, cfg *config.Config) (result *envfile.Result, found bool, err error) {
	format, err := envfile.ParseFormat(cfg.EnvFormat)
	if err != nil {
		return nil, false, err
	}
	mode, err := envfile.ParseQuoteMode(cfg.QuoteMode)
	if err != nil {
		return nil, false, err
	}
	return envfile.Load(fsys, cfg.EnvFile, format, mode)
}

func (o *Orchestrator) setSecrets(ctx context.Context, entries []envfile.Entry) error {
	for _, e := range entries {
		if err := o.Client.SetSecret(ctx, o.Config.AppName, e.Key, e.Value); err != nil {
			red.Fprintf(o.Out, "✗ Failed to set %s\n", e.Key)
			return err
		}
		green.Fprintf(o.Out, "  ✓ %s=%s\n", e.Key, MaskValue(e.Value))
	}
	return nil
}

// IsToolNotFound reports whether err came from a missing flyctl.
func IsToolNotFound(err error) bool {
	return errors.Is(err, flyctl.ErrToolNotFound)
}
