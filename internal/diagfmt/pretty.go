package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"perltoolbox/internal/diag"
	"perltoolbox/internal/source"
)

type palette struct {
	err, warn, info, hint *color.Color
	path, code, gutter    *color.Color
	caret, note           *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgBlue, color.Bold),
		hint:   color.New(color.FgCyan),
		path:   color.New(color.Bold),
		code:   color.New(color.Faint),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.hint, p.path, p.code, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevWarning:
		return p.warn
	case diag.SevInfo:
		return p.info
	case diag.SevHint:
		return p.hint
	default:
		return p.err
	}
}

// Pretty prints every diagnostic as
//
//	<path>:<line>:<col>: <SEV> <code>: <message>
//
// optionally followed by the source line with a ^~~~ underline and the
// tool's explanation.
func Pretty(w io.Writer, reports []Report, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, r := range reports {
		path := opts.PathMode.format(r.Path, opts.BaseDir)
		for _, d := range r.Diagnostics {
			if err := prettyOne(w, p, path, r.Text, d, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func prettyOne(w io.Writer, p palette, path, text string, d diag.Diagnostic, opts PrettyOpts) error {
	var b strings.Builder
	b.WriteString(p.path.Sprintf("%s:%d:%d:", path, d.Range.Start.Line+1, d.Range.Start.Character+1))
	b.WriteByte(' ')
	b.WriteString(p.severity(d.Severity).Sprint(d.Severity.String()))
	if d.Code != "" {
		b.WriteByte(' ')
		b.WriteString(p.code.Sprint(d.Code))
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	b.WriteByte('\n')

	if opts.ShowSource {
		if line, ok := source.Line(text, d.Range.Start.Line); ok {
			num := fmt.Sprintf("%d", d.Range.Start.Line+1)
			pad := strings.Repeat(" ", len(num))
			fmt.Fprintf(&b, "%s %s\n", pad, p.gutter.Sprint("|"))
			fmt.Fprintf(&b, "%s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), expandTabs(line))
			fmt.Fprintf(&b, "%s %s %s\n", pad, p.gutter.Sprint("|"), p.caret.Sprint(underline(line, d.Range)))
		}
	}
	if opts.ShowDetail && d.Detail != "" {
		fmt.Fprintf(&b, "  %s %s\n", p.note.Sprint("= explanation:"), d.Detail)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func expandTabs(line string) string {
	return strings.ReplaceAll(line, "\t", "    ")
}

// underline builds the caret marker for r on line, measured in display
// columns so wide characters line up.
func underline(line string, r diag.Range) string {
	runes := []rune(expandTabs(line))
	start := clampInt(expandedColumn(line, r.Start.Character), 0, len(runes))
	end := len(runes)
	if !r.ToEndOfLine() && r.End.Line == r.Start.Line {
		end = clampInt(expandedColumn(line, r.End.Character), start, len(runes))
	}
	lead := runewidth.StringWidth(string(runes[:start]))
	width := runewidth.StringWidth(string(runes[start:end]))
	if width < 1 {
		width = 1
	}
	return strings.Repeat(" ", lead) + "^" + strings.Repeat("~", width-1)
}

// expandedColumn maps a rune column on line to the column after tab
// expansion.
func expandedColumn(line string, col int) int {
	out := 0
	i := 0
	for _, r := range line {
		if i >= col {
			break
		}
		if r == '\t' {
			out += 4
		} else {
			out++
		}
		i++
	}
	return out + max(0, col-i)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
