package flyctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner starts platform CLI processes. ExecRunner is the real one; tests
// substitute a fake that records invocations.
type Runner interface {
	LookPath(name string) (string, error)
	// Output runs the command and captures stdout and stderr together.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Stream runs the command attached to the terminal so interactive
	// prompts and progress reach the operator.
	Stream(ctx context.Context, name string, args ...string) error
}

// CommandError is returned when a subprocess exits non-zero or cannot start.
type CommandError struct {
	Args     []string
	ExitCode int
	Output   []byte
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s failed", strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		msg = fmt.Sprintf("%s (exit %d)", msg, e.ExitCode)
	}
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		msg = fmt.Sprintf("%s: %v\n%s", msg, e.Err, out)
	} else {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code carried by err, 0 for nil and 1 for errors
// that did not come from a subprocess.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return cmdErr.ExitCode
	}
	return 1
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner wired to the process's standard streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, newCommandError(name, args, output, err)
	}

	return output, nil
}

func (r *ExecRunner) Stream(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return newCommandError(name, args, nil, err)
	}

	return nil
}

func newCommandError(name string, args []string, output []byte, err error) *CommandError {
	cmdErr := &CommandError{
		Args:   append([]string{name}, args...),
		Output: bytes.TrimSpace(output),
		Err:    err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}
	return cmdErr
}
