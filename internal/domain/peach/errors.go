package peach

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a provisioning failure.
type ErrorKind int

const (
	// KindLaunch means an executable could not be started.
	KindLaunch ErrorKind = iota + 1
	// KindCommandFailed means an executable exited with a non-zero status.
	KindCommandFailed
	// KindOutputDecode means command output was not valid UTF-8 text.
	KindOutputDecode
	// KindFileWrite means a persisted file could not be written.
	KindFileWrite
	// KindFileRead means a persisted file could not be read.
	KindFileRead
	// KindSerialization means JSON could not be encoded or decoded.
	KindSerialization
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindLaunch:
		return "launch"
	case KindCommandFailed:
		return "command failed"
	case KindOutputDecode:
		return "output decode"
	case KindFileWrite:
		return "file write"
	case KindFileRead:
		return "file read"
	case KindSerialization:
		return "serialization"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the structured error returned by command and file operations.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Command is the argv of the failed command, if any.
	Command []string
	// File is the path of the failed file operation, if any.
	File string
	// ExitCode is the exit status for KindCommandFailed.
	ExitCode int
	// Stderr is the decoded standard error for KindCommandFailed.
	Stderr string
	// Err is the underlying cause, if any.
	Err error
}

// Error renders the failure with the offending command or file.
func (e *Error) Error() string {
	var msg string

	switch e.Kind {
	case KindLaunch:
		msg = fmt.Sprintf("could not start %q", FormatCommand(e.Command))
	case KindCommandFailed:
		msg = fmt.Sprintf("%q returned exit status %d", FormatCommand(e.Command), e.ExitCode)
		if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
			msg += ": " + stderr
		}
	case KindOutputDecode:
		msg = fmt.Sprintf("command output is not valid text: %q", FormatCommand(e.Command))
	case KindFileWrite:
		msg = "failed to write file: " + e.File
	case KindFileRead:
		msg = "failed to read file: " + e.File
	case KindSerialization:
		msg = "error serializing json"
		if e.File != "" {
			msg += " in " + e.File
		}
	default:
		msg = e.Kind.String()
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var target *Error
	if !errors.As(err, &target) {
		return false
	}

	return target.Kind == kind
}

// FormatCommand renders argv for messages.
func FormatCommand(argv []string) string {
	return strings.Join(argv, " ")
}
