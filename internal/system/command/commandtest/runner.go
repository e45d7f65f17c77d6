// Package commandtest provides a recording command.Runner for tests.
package commandtest

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/peachcloud/peach-config/internal/domain/peach"
	"github.com/peachcloud/peach-config/internal/system/command"
)

// Call is one recorded invocation.
type Call struct {
	// Argv is the command line that was requested.
	Argv []string
	// Interactive reports whether the command was run attached to the terminal.
	Interactive bool
}

// String renders the call as a space separated command line.
func (c Call) String() string {
	return strings.Join(c.Argv, " ")
}

// stub scripts the result of every command starting with prefix.
type stub struct {
	prefix []string
	stdout string
	err    error
}

// Runner records invocations and replays scripted results.
// Unscripted commands succeed with empty output.
type Runner struct {
	mu    sync.Mutex
	calls []Call
	stubs []stub
}

var _ command.Runner = (*Runner)(nil)

// New creates an empty recording runner.
func New() *Runner {
	return new(Runner)
}

// Stub makes commands starting with prefix print stdout. Later stubs take precedence.
func (r *Runner) Stub(stdout string, prefix ...string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stubs = append(r.stubs, stub{prefix: prefix, stdout: stdout})

	return r
}

// StubError makes commands starting with prefix fail with err.
func (r *Runner) StubError(err error, prefix ...string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stubs = append(r.stubs, stub{prefix: prefix, err: err})

	return r
}

// StubExit makes commands starting with prefix fail with the given exit status and stderr.
func (r *Runner) StubExit(code int, stderr string, prefix ...string) *Runner {
	return r.StubError(&peach.Error{
		Kind:     peach.KindCommandFailed,
		Command:  prefix,
		ExitCode: code,
		Stderr:   stderr,
	}, prefix...)
}

// Run records argv and returns the scripted result.
func (r *Runner) Run(_ context.Context, argv ...string) (*command.Output, error) {
	s := r.record(argv, false)
	if s.err != nil {
		return nil, s.err
	}

	return &command.Output{
		Argv:   slices.Clone(argv),
		Stdout: []byte(s.stdout),
	}, nil
}

// Interactive records argv and returns the scripted error.
func (r *Runner) Interactive(_ context.Context, argv ...string) error {
	return r.record(argv, true).err
}

// Calls returns every recorded invocation in order.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.calls)
}

// Commands returns every recorded invocation rendered as a command line.
func (r *Runner) Commands() []string {
	calls := r.Calls()
	result := make([]string, 0, len(calls))

	for _, call := range calls {
		result = append(result, call.String())
	}

	return result
}

// Ran reports whether a command line equal to argv was recorded.
func (r *Runner) Ran(argv ...string) bool {
	return slices.Contains(r.Commands(), strings.Join(argv, " "))
}

func (r *Runner) record(argv []string, interactive bool) stub {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{Argv: slices.Clone(argv), Interactive: interactive})

	for i := len(r.stubs) - 1; i >= 0; i-- {
		if hasPrefix(argv, r.stubs[i].prefix) {
			return r.stubs[i]
		}
	}

	return stub{}
}

func hasPrefix(argv, prefix []string) bool {
	if len(prefix) > len(argv) {
		return false
	}

	return slices.Equal(argv[:len(prefix)], prefix)
}
