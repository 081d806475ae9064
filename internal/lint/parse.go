package lint

import (
	"perltoolbox/internal/config"
	"perltoolbox/internal/diag"
	"perltoolbox/internal/source"
)

// Source is the diagnostic source reported for lint findings.
const Source = "perlcritic"

// ParseOutput converts perlcritic stdout into diagnostics. The document
// text is only consulted in word highlight mode; doc may be nil.
func ParseOutput(output string, doc *source.Document, cfg config.Lint) []diag.Diagnostic {
	violations := ParseViolations(output)
	if len(violations) == 0 {
		return nil
	}
	var text string
	if doc != nil {
		text = doc.Text
	}
	out := make([]diag.Diagnostic, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Diagnostic(text, cfg))
	}
	return out
}

// Diagnostic builds the editor diagnostic for v.
func (v Violation) Diagnostic(text string, cfg config.Lint) diag.Diagnostic {
	return diag.Diagnostic{
		Range:    v.Range(text, cfg.HighlightMode),
		Severity: v.Tier.Severity(cfg),
		Source:   Source,
		Code:     v.Policy,
		Message:  "Lint: " + v.Tier.Label() + ": " + v.Message,
		Detail:   v.Explanation,
	}
}

// Range returns the highlighted range. In word mode it is the word at the
// reported position, or a point there when no word is found; otherwise it
// runs from the column to the end of the line.
func (v Violation) Range(text, mode string) diag.Range {
	line, col := v.Line-1, v.Column-1
	if mode == config.HighlightWord {
		if r, ok := source.WordRangeAt(text, line, col); ok {
			return r
		}
		return diag.PointRange(line, col)
	}
	return diag.LineRange(line, col)
}
