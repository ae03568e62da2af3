package flyctl_test

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticktick-mcp/deployctl/internal/flyctl"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("sh not available on windows")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not on PATH")
	}
}

func TestExecRunnerOutputExitCode(t *testing.T) {
	requireShell(t)

	runner := flyctl.NewExecRunner()
	out, err := runner.Output(context.Background(), "sh", "-c", "echo oops; exit 3")
	require.Error(t, err)

	var cmdErr *flyctl.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Equal(t, "oops", string(cmdErr.Output))
	assert.Contains(t, string(out), "oops")
	assert.Equal(t, 3, flyctl.ExitCode(err))
	assert.Equal(t, []string{"sh", "-c", "echo oops; exit 3"}, cmdErr.Args)
}

func TestExecRunnerStreamExitCode(t *testing.T) {
	requireShell(t)

	var stdout, stderr bytes.Buffer
	runner := &flyctl.ExecRunner{Stdout: &stdout, Stderr: &stderr}

	err := runner.Stream(context.Background(), "sh", "-c", "echo progress; echo failed >&2; exit 5")
	require.Error(t, err)
	assert.Equal(t, 5, flyctl.ExitCode(err))
	assert.Equal(t, "progress\n", stdout.String())
	assert.Equal(t, "failed\n", stderr.String())
}

func TestExecRunnerSuccess(t *testing.T) {
	requireShell(t)

	runner := flyctl.NewExecRunner()
	out, err := runner.Output(context.Background(), "sh", "-c", "echo ok")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(out))
	assert.Equal(t, 0, flyctl.ExitCode(err))
}

func TestExecRunnerMissingBinary(t *testing.T) {
	runner := flyctl.NewExecRunner()
	_, err := runner.LookPath("deployctl-definitely-not-installed")
	assert.Error(t, err)

	_, err = runner.Output(context.Background(), "deployctl-definitely-not-installed")
	require.Error(t, err)
	assert.Equal(t, 1, flyctl.ExitCode(err))
}
