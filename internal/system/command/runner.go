package command

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/peachcloud/peach-config/internal/domain/peach"
)

// Runner executes external programs without shell interpretation.
type Runner interface {
	// Run executes argv with captured output. A non-zero exit status is an error.
	Run(ctx context.Context, argv ...string) (*Output, error)
	// Interactive executes argv attached to the operator's terminal.
	Interactive(ctx context.Context, argv ...string) error
}

// Output is the captured result of one successful invocation.
type Output struct {
	// Argv is the executed command line.
	Argv []string
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the exit status.
	ExitCode int
}

// RunText runs argv and returns stdout as text with one trailing newline removed.
func RunText(ctx context.Context, r Runner, argv ...string) (string, error) {
	out, err := r.Run(ctx, argv...)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(out.Stdout) {
		return "", &peach.Error{
			Kind:    peach.KindOutputDecode,
			Command: append([]string(nil), argv...),
		}
	}

	return strings.TrimSuffix(string(out.Stdout), "\n"), nil
}
