package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"fortio.org/safecast"

	"perltoolbox/internal/diag"
)

// LocationJSON is a 1-based position range. EndCol is omitted when the
// range runs to the end of the line.
type LocationJSON struct {
	File        string `json:"file"`
	StartLine   uint32 `json:"start_line"`
	StartCol    uint32 `json:"start_col"`
	EndLine     uint32 `json:"end_line"`
	EndCol      uint32 `json:"end_col,omitempty"`
	ToEndOfLine bool   `json:"to_end_of_line,omitempty"`
}

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Source   string       `json:"source"`
	Code     string       `json:"code,omitempty"`
	Message  string       `json:"message"`
	Detail   string       `json:"detail,omitempty"`
	Location LocationJSON `json:"location"`
}

// DiagnosticsOutput is the root of JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(file string, r diag.Range) (LocationJSON, error) {
	var (
		loc LocationJSON
		err error
	)
	loc.File = file
	if loc.StartLine, err = oneBased(r.Start.Line); err != nil {
		return loc, err
	}
	if loc.StartCol, err = oneBased(r.Start.Character); err != nil {
		return loc, err
	}
	if loc.EndLine, err = oneBased(r.End.Line); err != nil {
		return loc, err
	}
	if r.ToEndOfLine() {
		loc.ToEndOfLine = true
		return loc, nil
	}
	if loc.EndCol, err = oneBased(r.End.Character); err != nil {
		return loc, err
	}
	return loc, nil
}

func oneBased(v int) (uint32, error) {
	n, err := safecast.Conv[uint32](v)
	if err != nil {
		return 0, fmt.Errorf("position %d out of range: %w", v, err)
	}
	return n + 1, nil
}

// BuildDiagnosticsOutput prepares JSON output without encoding it.
func BuildDiagnosticsOutput(reports []Report, opts JSONOpts) (DiagnosticsOutput, error) {
	out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	for _, r := range reports {
		path := opts.PathMode.format(r.Path, opts.BaseDir)
		for _, d := range r.Diagnostics {
			if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
				out.Count = len(out.Diagnostics)
				return out, nil
			}
			loc, err := makeLocation(path, d.Range)
			if err != nil {
				return DiagnosticsOutput{}, err
			}
			item := DiagnosticJSON{
				Severity: d.Severity.Name(),
				Source:   d.Source,
				Code:     d.Code,
				Message:  d.Message,
				Location: loc,
			}
			if opts.IncludeDetail {
				item.Detail = d.Detail
			}
			out.Diagnostics = append(out.Diagnostics, item)
		}
	}
	out.Count = len(out.Diagnostics)
	return out, nil
}

// JSON writes the diagnostics as an indented JSON document.
func JSON(w io.Writer, reports []Report, opts JSONOpts) error {
	output, err := BuildDiagnosticsOutput(reports, opts)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
