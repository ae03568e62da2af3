package flyctl_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticktick-mcp/deployctl/internal/flyctl"
	"github.com/ticktick-mcp/deployctl/internal/flyctl/flyctltest"
)

func TestInstalled(t *testing.T) {
	runner := flyctltest.New()
	client := flyctl.New(runner, "")

	path, err := client.Installed()
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/flyctl", path)

	runner.Missing = true
	_, err = client.Installed()
	assert.ErrorIs(t, err, flyctl.ErrToolNotFound)
}

func TestWhoami(t *testing.T) {
	ctx := context.Background()

	runner := flyctltest.New().Respond("ops@example.com\n", "auth", "whoami")
	identity, ok := flyctl.New(runner, "").Whoami(ctx)
	assert.True(t, ok)
	assert.Equal(t, "ops@example.com", identity)

	runner = flyctltest.New().Fail(1, "auth", "whoami")
	_, ok = flyctl.New(runner, "").Whoami(ctx)
	assert.False(t, ok)
}

func TestAppExists(t *testing.T) {
	ctx := context.Background()

	runner := flyctltest.New()
	assert.True(t, flyctl.New(runner, "").AppExists(ctx, "ticktick-mcp"))
	assert.Equal(t, []string{"flyctl status --app ticktick-mcp"}, runner.Lines())

	runner = flyctltest.New().Fail(1, "status")
	assert.False(t, flyctl.New(runner, "").AppExists(ctx, "ticktick-mcp"))
}

func TestCommandArgs(t *testing.T) {
	ctx := context.Background()
	runner := flyctltest.New()
	client := flyctl.New(runner, "fly")

	require.NoError(t, client.CreateApp(ctx, "ticktick-mcp", "personal"))
	require.NoError(t, client.SetSecret(ctx, "ticktick-mcp", "A", "b=c"))
	require.NoError(t, client.Deploy(ctx, "ticktick-mcp", "iad"))
	require.NoError(t, client.Login(ctx))

	assert.Equal(t, []string{
		"fly apps create ticktick-mcp --org personal",
		"fly secrets set A=b=c --app ticktick-mcp",
		"fly deploy --app ticktick-mcp --primary-region iad",
		"fly auth login",
	}, runner.Lines())

	assert.False(t, runner.Calls[0].Interactive)
	assert.True(t, runner.Calls[2].Interactive)
	assert.True(t, runner.Calls[3].Interactive)
}

func TestSetSecretErrorIsRedacted(t *testing.T) {
	runner := flyctltest.New().Fail(2, "secrets", "set")
	err := flyctl.New(runner, "").SetSecret(context.Background(), "ticktick-mcp", "TOKEN", "hunter2")
	require.Error(t, err)

	assert.NotContains(t, err.Error(), "hunter2")
	assert.Contains(t, err.Error(), "TOKEN=***")
	assert.Equal(t, 2, flyctl.ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, flyctl.ExitCode(nil))
	assert.Equal(t, 1, flyctl.ExitCode(errors.New("boom")))
	assert.Equal(t, 3, flyctl.ExitCode(&flyctl.CommandError{ExitCode: 3, Err: errors.New("exit status 3")}))
	assert.Equal(t, 1, flyctl.ExitCode(&flyctl.CommandError{ExitCode: -1, Err: errors.New("signal: killed")}))
}
