package source

import "strings"

// Line returns the zero-based line n of text without its terminator.
// It returns false when the line does not exist.
func Line(text string, n int) (string, bool) {
	if n < 0 {
		return "", false
	}
	for i := 0; i < n; i++ {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			return "", false
		}
		text = text[idx+1:]
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSuffix(text, "\r"), true
}

// SplitLines splits tool output on '\n' and trims a trailing '\r' from each
// piece. A trailing newline produces a final empty element, as strings.Split
// does.
func SplitLines(output string) []string {
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
