package config

import (
	"strconv"
	"strings"
	"time"
)

// Environment variables that override file settings.
const (
	EnvLintExec      = "PERLTOOLBOX_LINT_EXEC"
	EnvLintSeverity  = "PERLTOOLBOX_LINT_SEVERITY"
	EnvLintProfile   = "PERLTOOLBOX_LINT_USE_PROFILE"
	EnvSyntaxExec    = "PERLTOOLBOX_SYNTAX_EXEC"
	EnvSyntaxInclude = "PERLTOOLBOX_SYNTAX_INCLUDE"
	EnvTemporaryPath = "PERLTOOLBOX_TEMPORARY_PATH"
	EnvTimeout       = "PERLTOOLBOX_TIMEOUT"
)

// ApplyEnv overlays PERLTOOLBOX_* variables read through getenv.
// Unparseable values are ignored.
func ApplyEnv(s Settings, getenv func(string) string) Settings {
	if getenv == nil {
		return s
	}
	out := s.Clone()
	if v := strings.TrimSpace(getenv(EnvLintExec)); v != "" {
		out.Lint.Exec = v
	}
	if v := strings.TrimSpace(getenv(EnvLintSeverity)); v != "" {
		out.Lint.Severity = v
	}
	if v := strings.TrimSpace(getenv(EnvLintProfile)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			out.Lint.UseProfile = b
		}
	}
	if v := strings.TrimSpace(getenv(EnvSyntaxExec)); v != "" {
		out.Syntax.Exec = v
	}
	if v := strings.TrimSpace(getenv(EnvSyntaxInclude)); v != "" {
		out.Syntax.IncludePaths = splitList(v)
	}
	if v := strings.TrimSpace(getenv(EnvTemporaryPath)); v != "" {
		out.TemporaryPath = v
	}
	if v := strings.TrimSpace(getenv(EnvTimeout)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			out.Timeout = d
		}
	}
	return out
}

func splitList(v string) []string {
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
