package lint

import (
	"strconv"
	"strings"
)

const (
	// FieldSeparator separates the fields of a violation line.
	FieldSeparator = "~|~"
	// EndMarker terminates a violation before perlcritic's newline.
	EndMarker = "~||~"

	fieldCount = 6
)

// Violation is one parsed perlcritic line.
type Violation struct {
	Tier        Tier
	Line        int // 1-based
	Column      int // 1-based
	Message     string
	Explanation string
	Policy      string
}

// ParseViolation splits a single output line. It returns false for anything
// that is not a well-formed violation.
func ParseViolation(line string) (Violation, bool) {
	line = strings.TrimSuffix(line, "\r")
	line = strings.Replace(line, EndMarker, "", 1)
	fields := strings.Split(line, FieldSeparator)
	if len(fields) != fieldCount {
		return Violation{}, false
	}
	lineNo, ok := positive(fields[1])
	if !ok {
		return Violation{}, false
	}
	col, ok := positive(fields[2])
	if !ok {
		return Violation{}, false
	}
	return Violation{
		Tier:        TierFromCode(fields[0]),
		Line:        lineNo,
		Column:      col,
		Message:     fields[3],
		Explanation: fields[4],
		Policy:      fields[5],
	}, true
}

func positive(field string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ParseViolations returns every well-formed violation in output, in order.
func ParseViolations(output string) []Violation {
	var out []Violation
	for _, line := range strings.Split(output, "\n") {
		if v, ok := ParseViolation(line); ok {
			out = append(out, v)
		}
	}
	return out
}
