// Package flyctltest provides a scripted flyctl.Runner for tests.
package flyctltest

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/ticktick-mcp/deployctl/internal/flyctl"
)

// Call records one invocation.
type Call struct {
	Name        string
	Args        []string
	Interactive bool
}

// Line joins the argv the way a shell would show it.
func (c Call) Line() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner answers commands by argv prefix. Commands without a matching
// response succeed with empty output.
type Runner struct {
	mu        sync.Mutex
	Missing   bool
	Calls     []Call
	responses []response
}

type response struct {
	prefix []string
	output []byte
	code   int
	once   bool
	used   bool
}

// New returns a runner where every command succeeds.
func New() *Runner {
	return &Runner{}
}

// Fail makes commands starting with prefix exit with code.
func (r *Runner) Fail(code int, prefix ...string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, response{prefix: prefix, code: code})
	return r
}

// FailOnce is Fail for the first matching call only.
func (r *Runner) FailOnce(code int, prefix ...string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, response{prefix: prefix, code: code, once: true})
	return r
}

// Respond sets the captured output for commands starting with prefix.
func (r *Runner) Respond(output string, prefix ...string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, response{prefix: prefix, output: []byte(output)})
	return r
}

func (r *Runner) LookPath(name string) (string, error) {
	if r.Missing {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/local/bin/" + name, nil
}

func (r *Runner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return r.run(name, args, false)
}

func (r *Runner) Stream(ctx context.Context, name string, args ...string) error {
	_, err := r.run(name, args, true)
	return err
}

// Count returns how many recorded calls start with prefix.
func (r *Runner) Count(prefix ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.Calls {
		if hasPrefix(c.Args, prefix) {
			n++
		}
	}
	return n
}

// Lines returns every recorded call as a command line.
func (r *Runner) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		lines = append(lines, c.Line())
	}
	return lines
}

func (r *Runner) run(name string, args []string, interactive bool) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Calls = append(r.Calls, Call{Name: name, Args: append([]string(nil), args...), Interactive: interactive})

	for i := range r.responses {
		resp := &r.responses[i]
		if resp.used || !hasPrefix(args, resp.prefix) {
			continue
		}
		if resp.once {
			resp.used = true
		}
		if resp.code != 0 {
			return resp.output, &flyctl.CommandError{
				Args:     append([]string{name}, args...),
				ExitCode: resp.code,
				Output:   resp.output,
				Err:      errors.New("exit status " + strconv.Itoa(resp.code)),
			}
		}
		return resp.output, nil
	}
	return nil, nil
}

func hasPrefix(args, prefix []string) bool {
	if len(prefix) > len(args) {
		return false
	}
	for i, p := range prefix {
		if args[i] != p {
			return false
		}
	}
	return true
}
