package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"perltoolbox/internal/check"
	"perltoolbox/internal/config"
	"perltoolbox/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show perltoolbox build information",
	Long: `Show perltoolbox build information. With --tools, also run the configured
perlcritic and perl executables with --version.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().Bool("full", false, "include commit, commit message and build date")
	versionCmd.Flags().Bool("tools", false, "report the versions of the configured checkers")
}

// toolVersion is what one checker reported, or why it could not.
type toolVersion struct {
	Pipeline string `json:"pipeline"`
	Exec     string `json:"exec"`
	Version  string `json:"version,omitempty"`
	Error    string `json:"error,omitempty"`
}

type versionReport struct {
	Tool       string        `json:"tool"`
	Version    string        `json:"version"`
	GitCommit  string        `json:"git_commit,omitempty"`
	GitMessage string        `json:"git_message,omitempty"`
	BuildDate  string        `json:"build_date,omitempty"`
	Checkers   []toolVersion `json:"checkers,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("failed to get full flag: %w", err)
	}
	tools, err := cmd.Flags().GetBool("tools")
	if err != nil {
		return fmt.Errorf("failed to get tools flag: %w", err)
	}

	report := versionReport{Tool: "perltoolbox", Version: strings.TrimSpace(version.Version)}
	if report.Version == "" {
		report.Version = "dev"
	}
	if full {
		report.GitCommit = valueOrUnknown(version.GitCommit)
		report.GitMessage = valueOrUnknown(version.GitMessage)
		report.BuildDate = valueOrUnknown(version.BuildDate)
	}
	if tools {
		if report.Checkers, err = checkerVersions(cmd); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	colored, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	renderVersion(out, report, colored)
	return nil
}

// checkerVersions asks each enabled checker, configured as for files in the
// current directory, for its version.
func checkerVersions(cmd *cobra.Command) ([]toolVersion, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	settings, _, err := config.Load(wd)
	if err != nil {
		return nil, err
	}
	var out []toolVersion
	for _, p := range check.Pipelines {
		if !p.Enabled(settings) {
			continue
		}
		tv := toolVersion{Pipeline: p.String(), Exec: p.Exec(settings)}
		if v, err := check.ToolVersion(cmd.Context(), p, settings); err != nil {
			tv.Error = err.Error()
		} else {
			tv.Version = v
		}
		out = append(out, tv)
	}
	return out, nil
}

func renderVersion(out io.Writer, report versionReport, colored bool) {
	v := report.Version
	if v == version.Version {
		v = version.Colored(colored)
	}
	fmt.Fprintf(out, "perltoolbox %s\n", v)
	if report.GitCommit != "" {
		fmt.Fprintf(out, "commit:  %s\n", report.GitCommit)
		fmt.Fprintf(out, "message: %s\n", report.GitMessage)
		fmt.Fprintf(out, "built:   %s\n", report.BuildDate)
	}
	for _, tv := range report.Checkers {
		if tv.Error != "" {
			fmt.Fprintf(out, "%-7s %s: %s\n", tv.Pipeline, tv.Exec, tv.Error)
			continue
		}
		fmt.Fprintf(out, "%-7s %s: %s\n", tv.Pipeline, tv.Exec, tv.Version)
	}
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
