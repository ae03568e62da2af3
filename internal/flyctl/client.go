// Package flyctl drives the Fly.io command-line tool as a subprocess.
//
// Every call maps to exactly one flyctl invocation. The exit code is the only
// success signal consumed; query commands (whoami, status) are read as
// booleans rather than errors.
package flyctl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultBinary is the platform CLI looked up on PATH.
const DefaultBinary = "flyctl"

// ErrToolNotFound is returned when the platform CLI is not installed.
var ErrToolNotFound = errors.New("flyctl not found")

// Redacted replaces secret values in argv and error output.
const Redacted = "***"

// Client issues flyctl commands through a Runner.
type Client struct {
	Runner Runner
	Binary string
}

// New returns a client for binary, falling back to DefaultBinary.
func New(runner Runner, binary string) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{Runner: runner, Binary: binary}
}

// Installed resolves the binary on PATH.
func (c *Client) Installed() (string, error) {
	path, err := c.Runner.LookPath(c.Binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrToolNotFound, c.Binary, err)
	}
	return path, nil
}

// Whoami reports the authenticated identity; ok is false when flyctl exits
// non-zero.
func (c *Client) Whoami(ctx context.Context) (identity string, ok bool) {
	out, err := c.output(ctx, WhoamiArgs()...)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

// Login runs the interactive login flow and blocks until it finishes.
func (c *Client) Login(ctx context.Context) error {
	return c.stream(ctx, LoginArgs()...)
}

// AppExists reports whether the app is known to the platform.
func (c *Client) AppExists(ctx context.Context, app string) bool {
	_, err := c.output(ctx, StatusArgs(app)...)
	return err == nil
}

// CreateApp creates app inside org.
func (c *Client) CreateApp(ctx context.Context, app, org string) error {
	_, err := c.output(ctx, CreateAppArgs(app, org)...)
	return err
}

// SetSecret assigns one secret on app. The value never appears in the
// returned error.
func (c *Client) SetSecret(ctx context.Context, app, key, value string) error {
	_, err := c.output(ctx, SetSecretArgs(app, key, value)...)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			cmdErr.Args = append([]string{c.Binary}, SetSecretArgs(app, key, Redacted)...)
			if value != "" {
				cmdErr.Output = []byte(strings.ReplaceAll(string(cmdErr.Output), value, Redacted))
			}
		}
		return err
	}
	return nil
}

// Deploy builds and releases app, streaming flyctl's progress.
func (c *Client) Deploy(ctx context.Context, app, region string) error {
	return c.stream(ctx, DeployArgs(app, region)...)
}

func (c *Client) output(ctx context.Context, args ...string) ([]byte, error) {
	zerolog.Ctx(ctx).Debug().Str("cmd", c.Binary).Strs("args", redactArgs(args)).Msg("running")
	return c.Runner.Output(ctx, c.Binary, args...)
}

func (c *Client) stream(ctx context.Context, args ...string) error {
	zerolog.Ctx(ctx).Debug().Str("cmd", c.Binary).Strs("args", args).Msg("running interactively")
	return c.Runner.Stream(ctx, c.Binary, args...)
}

func WhoamiArgs() []string { return []string{"auth", "whoami"} }

func LoginArgs() []string { return []string{"auth", "login"} }

func StatusArgs(app string) []string { return []string{"status", "--app", app} }

func CreateAppArgs(app, org string) []string {
	return []string{"apps", "create", app, "--org", org}
}

func SetSecretArgs(app, key, value string) []string {
	return []string{"secrets", "set", key + "=" + value, "--app", app}
}

func DeployArgs(app, region string) []string {
	args := []string{"deploy", "--app", app}
	if region != "" {
		args = append(args, "--primary-region", region)
	}
	return args
}

// redactArgs hides the value half of a "secrets set KEY=VALUE" argv.
func redactArgs(args []string) []string {
	if len(args) < 3 || args[0] != "secrets" || args[1] != "set" {
		return args
	}
	out := append([]string(nil), args...)
	if key, _, ok := strings.Cut(out[2], "="); ok {
		out[2] = key + "=" + Redacted
	}
	return out
}
