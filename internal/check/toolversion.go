package check

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"perltoolbox/internal/config"
)

const toolVersionTimeout = 5 * time.Second

// ToolVersion runs the executable configured for p with --version through
// the shell and returns the first non-empty output line.
func ToolVersion(ctx context.Context, p Pipeline, s config.Settings) (string, error) {
	exe := p.Exec(s)
	ctx, cancel := context.WithTimeout(ctx, toolVersionTimeout)
	defer cancel()

	line := ShellCommand(exe, []string{"--version"})
	cmd := shellCmd(ctx, line)
	cmd.WaitDelay = waitDelay
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", &ProcessError{Pipeline: p, Command: line, Err: ErrTimeout}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && shellLaunchFailed(exitErr.ExitCode()) {
		err = ErrNotFound
	}
	if err != nil {
		return "", &ProcessError{Pipeline: p, Command: line, Stderr: out.String(), Err: err}
	}
	for _, l := range strings.Split(out.String(), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return l, nil
		}
	}
	return "", fmt.Errorf("%s printed no version", exe)
}
