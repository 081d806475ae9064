// Package config resolves checker settings from defaults, perltoolbox.toml,
// environment variables and editor settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// HighlightWord highlights the word at the reported column.
	HighlightWord = "word"
	// HighlightLine highlights from the reported column to the end of the line.
	HighlightLine = "line"

	DefaultTimeout = 30 * time.Second
)

// Tiers lists the perlcritic severity names from least to most strict.
var Tiers = []string{"gentle", "stern", "harsh", "cruel", "brutal"}

// Settings is the configuration of one check invocation. It is a value:
// callers get a fresh copy per run.
type Settings struct {
	Lint          Lint
	Syntax        Syntax
	TemporaryPath string
	Timeout       time.Duration
}

// Lint configures the perlcritic pipeline.
type Lint struct {
	Enabled          bool
	Exec             string
	Path             string
	Severity         string
	UseProfile       bool
	ExcludedPolicies []string
	HighlightMode    string

	// Editor severity names per perlcritic tier.
	Gentle string
	Stern  string
	Harsh  string
	Cruel  string
	Brutal string
}

// Syntax configures the perl -c pipeline.
type Syntax struct {
	Enabled      bool
	Exec         string
	Path         string
	IncludePaths []string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Lint: Lint{
			Enabled:       true,
			Exec:          "perlcritic",
			Severity:      "gentle",
			HighlightMode: HighlightLine,
			Gentle:        "hint",
			Stern:         "info",
			Harsh:         "warning",
			Cruel:         "warning",
			Brutal:        "error",
		},
		Syntax: Syntax{
			Enabled: true,
			Exec:    "perl",
		},
		Timeout: DefaultTimeout,
	}
}

// TierSeverity returns the configured editor severity name for a tier.
// Unknown tiers yield "" which callers treat as error.
func (l Lint) TierSeverity(tier string) string {
	switch tier {
	case "gentle":
		return l.Gentle
	case "stern":
		return l.Stern
	case "harsh":
		return l.Harsh
	case "cruel":
		return l.Cruel
	case "brutal":
		return l.Brutal
	default:
		return ""
	}
}

// TempDir is the directory check runs write their temp files to.
func (s Settings) TempDir() string {
	if strings.TrimSpace(s.TemporaryPath) == "" {
		return os.TempDir()
	}
	return s.TemporaryPath
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := s
	out.Lint.ExcludedPolicies = slices.Clone(s.Lint.ExcludedPolicies)
	out.Syntax.IncludePaths = slices.Clone(s.Syntax.IncludePaths)
	return out
}

// ValidSeverityThreshold reports whether v is a perlcritic severity switch:
// a tier name or a number from 1 to 5.
func ValidSeverityThreshold(v string) bool {
	if slices.Contains(Tiers, v) {
		return true
	}
	n, err := strconv.Atoi(v)
	return err == nil && n >= 1 && n <= 5
}

// Validate reports every invalid field.
func (s Settings) Validate() error {
	var errs []error
	if !ValidSeverityThreshold(s.Lint.Severity) {
		errs = append(errs, fmt.Errorf("%w: lint.severity=%q", ErrInvalidSeverity, s.Lint.Severity))
	}
	if s.Lint.HighlightMode != HighlightWord && s.Lint.HighlightMode != HighlightLine {
		errs = append(errs, fmt.Errorf("%w: lint.highlightMode=%q", ErrInvalidHighlightMode, s.Lint.HighlightMode))
	}
	if s.Lint.Enabled && strings.TrimSpace(s.Lint.Exec) == "" {
		errs = append(errs, fmt.Errorf("%w: lint.exec", ErrMissingExecutable))
	}
	if s.Syntax.Enabled && strings.TrimSpace(s.Syntax.Exec) == "" {
		errs = append(errs, fmt.Errorf("%w: syntax.exec", ErrMissingExecutable))
	}
	if s.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidTimeout, s.Timeout))
	}
	return errors.Join(errs...)
}

// Sanitize resets invalid fields to their defaults and returns the result.
func (s Settings) Sanitize() Settings {
	def := Defaults()
	out := s.Clone()
	if !ValidSeverityThreshold(out.Lint.Severity) {
		out.Lint.Severity = def.Lint.Severity
	}
	if out.Lint.HighlightMode != HighlightWord && out.Lint.HighlightMode != HighlightLine {
		out.Lint.HighlightMode = def.Lint.HighlightMode
	}
	if strings.TrimSpace(out.Lint.Exec) == "" {
		out.Lint.Exec = def.Lint.Exec
	}
	if strings.TrimSpace(out.Syntax.Exec) == "" {
		out.Syntax.Exec = def.Syntax.Exec
	}
	if out.Timeout < 0 {
		out.Timeout = def.Timeout
	}
	return out
}
