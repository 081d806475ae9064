package diag

import (
	"fmt"
	"math"
)

// EndOfLine is the end character used for ranges that run to the end of a
// line. Clients clamp it to the actual line length.
const EndOfLine = math.MaxInt32

// Position is a zero-based line/character pair.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position
	End   Position
}

// LineRange covers line from character col to the end of the line.
func LineRange(line, col int) Range {
	return Range{
		Start: Position{Line: line, Character: col},
		End:   Position{Line: line, Character: EndOfLine},
	}
}

// PointRange is an empty range at a single position.
func PointRange(line, col int) Range {
	p := Position{Line: line, Character: col}
	return Range{Start: p, End: p}
}

// ToEndOfLine reports whether the range runs to the end of its last line.
func (r Range) ToEndOfLine() bool {
	return r.End.Character == EndOfLine
}

func (r Range) String() string {
	if r.ToEndOfLine() {
		return fmt.Sprintf("%d:%d-eol", r.Start.Line+1, r.Start.Character+1)
	}
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line+1, r.Start.Character+1, r.End.Line+1, r.End.Character+1)
}

type Diagnostic struct {
	Range    Range
	Severity Severity
	Source   string
	Code     string
	Message  string
	// Detail is longer tool-provided text, such as a perlcritic explanation.
	// It is not sent to editors.
	Detail string
}
