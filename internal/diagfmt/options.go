// Package diagfmt renders check results for the terminal and for tools.
package diagfmt

import (
	"perltoolbox/internal/diag"
	"perltoolbox/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto shortens long absolute paths to their base name.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode accepts auto, absolute, relative and basename.
func ParsePathMode(s string) (PathMode, bool) {
	switch s {
	case "", "auto":
		return PathModeAuto, true
	case "absolute":
		return PathModeAbsolute, true
	case "relative":
		return PathModeRelative, true
	case "basename":
		return PathModeBasename, true
	}
	return PathModeAuto, false
}

func (m PathMode) format(path, baseDir string) string {
	switch m {
	case PathModeAbsolute:
		return source.FormatPath(path, "absolute", "")
	case PathModeRelative:
		return source.FormatPath(path, "relative", baseDir)
	case PathModeBasename:
		return source.FormatPath(path, "basename", "")
	default:
		return source.FormatPath(path, "auto", "")
	}
}

// Report is the result for one file.
type Report struct {
	Path        string
	Text        string // used for source excerpts, may be empty
	Diagnostics []diag.Diagnostic
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	BaseDir  string
	// ShowSource prints the offending line with a caret underline.
	ShowSource bool
	// ShowDetail prints tool explanations (perlcritic --explain).
	ShowDetail bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode      PathMode
	BaseDir       string
	Max           int // truncates output per call; 0 means all
	IncludeDetail bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
