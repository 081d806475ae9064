package source

import (
	"unicode"
	"unicode/utf8"

	"perltoolbox/internal/diag"
)

// WordRangeAt returns the range of the run of non-whitespace characters
// touching the zero-based position (line, col). Columns count characters.
// A position directly after a word still selects that word.
func WordRangeAt(text string, line, col int) (diag.Range, bool) {
	content, ok := Line(text, line)
	if !ok || col < 0 {
		return diag.Range{}, false
	}
	runes := make([]rune, 0, utf8.RuneCountInString(content))
	for _, r := range content {
		runes = append(runes, r)
	}
	if col > len(runes) {
		return diag.Range{}, false
	}
	start := col
	for start > 0 && !unicode.IsSpace(runes[start-1]) {
		start--
	}
	end := col
	for end < len(runes) && !unicode.IsSpace(runes[end]) {
		end++
	}
	if start == end {
		return diag.Range{}, false
	}
	return diag.Range{
		Start: diag.Position{Line: line, Character: start},
		End:   diag.Position{Line: line, Character: end},
	}, true
}
