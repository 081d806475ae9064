package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"perltoolbox/internal/observ"
)

// printTimings writes the phase table, or a JSON object when the
// diagnostics themselves are machine readable.
func printTimings(out io.Writer, timer *observ.Timer, asJSON bool) error {
	report := timer.Report()
	logger().Debug("check timings", slog.Any("timings", report))
	if asJSON {
		enc := json.NewEncoder(out)
		return enc.Encode(report)
	}
	_, err := fmt.Fprint(out, report.Summary())
	return err
}
