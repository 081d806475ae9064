package diagfmt

import (
	"fmt"
	"io"
)

// Short prints one line per diagnostic in the conventional compiler form
// understood by editors' problem matchers:
//
//	path:line:col: severity: message [code]
func Short(w io.Writer, reports []Report, pathMode PathMode, baseDir string) error {
	for _, r := range reports {
		path := pathMode.format(r.Path, baseDir)
		for _, d := range r.Diagnostics {
			line := fmt.Sprintf("%s:%d:%d: %s: %s", path, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Severity.Name(), d.Message)
			if d.Code != "" {
				line += " [" + d.Code + "]"
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}
