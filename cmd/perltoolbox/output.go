package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"perltoolbox/internal/check"
	"perltoolbox/internal/diagfmt"
	"perltoolbox/internal/version"
)

func buildReports(results []check.FileResult) []diagfmt.Report {
	reports := make([]diagfmt.Report, 0, len(results))
	for _, r := range results {
		report := diagfmt.Report{Path: r.Path, Diagnostics: r.Diagnostics}
		if r.Doc != nil {
			report.Text = r.Doc.Text
		}
		reports = append(reports, report)
	}
	return reports
}

func renderResults(cmd *cobra.Command, results []check.FileResult, opts checkOptions) error {
	out := cmd.OutOrStdout()
	reports := buildReports(results)
	pathMode := opts.pathMode
	baseDir, _ := os.Getwd()

	switch opts.format {
	case "pretty":
		colored, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		return diagfmt.Pretty(out, reports, diagfmt.PrettyOpts{
			Color:      colored,
			PathMode:   pathMode,
			BaseDir:    baseDir,
			ShowSource: !opts.noSource,
			ShowDetail: opts.explain,
		})
	case "short":
		return diagfmt.Short(out, reports, pathMode, baseDir)
	case "json":
		if err := diagfmt.JSON(out, reports, diagfmt.JSONOpts{
			PathMode:      pathMode,
			BaseDir:       baseDir,
			IncludeDetail: opts.explain,
		}); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
		return nil
	case "sarif":
		meta := diagfmt.SarifRunMeta{
			ToolName:       "perltoolbox",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		}
		if err := diagfmt.Sarif(out, reports, meta); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", opts.format)
	}
}
