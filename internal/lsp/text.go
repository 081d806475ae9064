package lsp

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"perltoolbox/internal/diag"
	"perltoolbox/internal/source"
)

// applyChanges replays didChange events in order. A change without a range
// replaces the whole buffer.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := offsetForPosition(text, change.Range.Start)
		end := max(offsetForPosition(text, change.Range.End), start)
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

// offsetForPosition maps an LSP position (UTF-16 columns) to a byte offset
// in text. Positions past the end of a line or of the text are clamped.
func offsetForPosition(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	start := 0
	for line := 0; line < pos.Line; line++ {
		nl := strings.IndexByte(text[start:], '\n')
		if nl < 0 {
			return len(text)
		}
		start += nl + 1
	}
	units := 0
	i := start
	for i < len(text) && text[i] != '\n' && units < pos.Character {
		r, size := utf8.DecodeRuneInString(text[i:])
		width := utf8.RuneLen(r)
		if width == 4 {
			width = 2
		} else {
			width = 1
		}
		if units+width > pos.Character {
			break
		}
		units += width
		i += size
	}
	return i
}

// utf16Column converts a column counted in characters on the given line to
// UTF-16 code units. Columns past the end of the line keep their overshoot.
func utf16Column(text string, line, col int) int {
	if col <= 0 || col == diag.EndOfLine {
		return col
	}
	content, ok := source.Line(text, line)
	if !ok {
		return col
	}
	units := 0
	for _, r := range content {
		if col == 0 {
			break
		}
		units += utf16.RuneLen(r)
		col--
	}
	return units + col
}
