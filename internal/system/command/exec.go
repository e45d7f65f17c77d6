package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"unicode/utf8"

	"github.com/peachcloud/peach-config/internal/domain/peach"
	"github.com/peachcloud/peach-config/internal/logger"
)

// errEmptyCommand is returned when no executable is given.
var errEmptyCommand = errors.New("empty command")

// Exec runs commands on the host with os/exec.
type Exec struct{}

var _ Runner = Exec{}

// NewExec returns a Runner backed by real processes.
func NewExec() Exec {
	return Exec{}
}

// Run executes argv, capturing stdout and stderr.
func (Exec) Run(ctx context.Context, argv ...string) (*Output, error) {
	if len(argv) == 0 {
		return nil, &peach.Error{Kind: peach.KindLaunch, Err: errEmptyCommand}
	}

	logger.InfoKV(ctx, "Running command", "argv", argv)

	//nolint:gosec // Commands are built from fixed argv lists, never from a shell string.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	out := &Output{
		Argv:     append([]string(nil), argv...),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}

	logger.DebugKV(ctx, "Command finished",
		"argv", argv,
		"exit_code", out.ExitCode,
		"stdout", string(out.Stdout),
		"stderr", string(out.Stderr))

	if runErr != nil {
		return nil, classify(argv, out, runErr)
	}

	return out, nil
}

// Interactive executes argv with the process's stdin, stdout and stderr.
func (Exec) Interactive(ctx context.Context, argv ...string) error {
	if len(argv) == 0 {
		return &peach.Error{Kind: peach.KindLaunch, Err: errEmptyCommand}
	}

	logger.InfoKV(ctx, "Running interactive command", "argv", argv)

	//nolint:gosec // Commands are built from fixed argv lists, never from a shell string.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return classify(argv, &Output{ExitCode: cmd.ProcessState.ExitCode()}, err)
	}

	return nil
}

// classify maps an os/exec failure onto the structured error kinds.
func classify(argv []string, out *Output, err error) error {
	command := append([]string(nil), argv...)

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return &peach.Error{Kind: peach.KindLaunch, Command: command, Err: err}
	}

	if !utf8.Valid(out.Stderr) {
		return &peach.Error{
			Kind:    peach.KindOutputDecode,
			Command: command,
			Err:     fmt.Errorf("stderr of failed command: %w", err),
		}
	}

	return &peach.Error{
		Kind:     peach.KindCommandFailed,
		Command:  command,
		ExitCode: out.ExitCode,
		Stderr:   string(out.Stderr),
	}
}
