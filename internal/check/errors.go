package check

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDisabled is returned when the pipeline is turned off in settings.
	ErrDisabled = errors.New("pipeline disabled")
	// ErrSkipped is returned for documents that are never checked
	// (non-perl language, git scheme).
	ErrSkipped = errors.New("document not checkable")
	// ErrCanceled is returned when a newer run or shutdown canceled the run.
	ErrCanceled = errors.New("check canceled")
	// ErrNotFound is wrapped by ProcessError when the shell could not run
	// the configured executable.
	ErrNotFound = errors.New("checker not found or not executable")
	// ErrTimeout is wrapped by ProcessError when the tool exceeded the
	// configured timeout.
	ErrTimeout = errors.New("checker timed out")
)

// ProcessError reports a checker process that could not be started or did
// not finish.
type ProcessError struct {
	Pipeline Pipeline
	Command  string
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %v", e.Pipeline, e.Command, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString(": ")
		b.WriteString(firstLine(s))
	}
	return b.String()
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
