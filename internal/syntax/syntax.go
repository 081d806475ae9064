// Package syntax turns `perl -c` diagnostics into editor diagnostics.
//
// perl reports compile problems on stderr as free text; every line that
// mentions "line N" is taken to point at line N. Everything else ("syntax
// OK", continuation lines) is ignored.
package syntax

import (
	"regexp"
	"strconv"

	"perltoolbox/internal/config"
	"perltoolbox/internal/diag"
	"perltoolbox/internal/source"
)

// Source is the diagnostic source reported for syntax findings.
const Source = "perl"

var lineRe = regexp.MustCompile(`(?i)line\s+(\d+)`)

// LineNumber extracts the 1-based line a perl message points at.
func LineNumber(msg string) (int, bool) {
	m := lineRe.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ParseOutput converts perl -c stderr into diagnostics. Every match is an
// error covering the whole reported line.
func ParseOutput(output string, _ config.Syntax) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, line := range source.SplitLines(output) {
		n, ok := LineNumber(line)
		if !ok {
			continue
		}
		out = append(out, diag.Diagnostic{
			Range:    diag.LineRange(n-1, 0),
			Severity: diag.SevError,
			Source:   Source,
			Message:  "Syntax: " + line,
		})
	}
	return out
}

// Args builds the perl arguments for compiling tempPath.
func Args(cfg config.Syntax, tempPath string) []string {
	args := make([]string, 0, 2+2*len(cfg.IncludePaths))
	for _, inc := range cfg.IncludePaths {
		if inc == "" {
			continue
		}
		args = append(args, "-I", inc)
	}
	return append(args, "-c", tempPath)
}
