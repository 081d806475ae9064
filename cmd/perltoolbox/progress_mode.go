package main

import (
	"fmt"
	"os"
	"strings"
)

// progressMode controls the interactive progress view of check.
type progressMode uint8

const (
	progressAuto progressMode = iota
	progressAlways
	progressNever
)

func parseProgressMode(value string) (progressMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return progressAuto, nil
	case "always", "on":
		return progressAlways, nil
	case "never", "off":
		return progressNever, nil
	}
	return progressAuto, fmt.Errorf("invalid --ui value %q (expected auto|always|never)", value)
}

// showProgress decides whether check renders the progress view for a batch
// of files. In auto mode a single file or a redirected stream gets plain
// output, so json and sarif stay clean when piped.
func (m progressMode) showProgress(files int, quiet bool) bool {
	switch {
	case quiet || m == progressNever:
		return false
	case m == progressAlways:
		return true
	}
	return files > 1 && isTerminal(os.Stdout) && isTerminal(os.Stderr)
}
