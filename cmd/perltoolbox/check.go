package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"perltoolbox/internal/cache"
	"perltoolbox/internal/check"
	"perltoolbox/internal/config"
	"perltoolbox/internal/diag"
	"perltoolbox/internal/diagfmt"
	"perltoolbox/internal/observ"
	"perltoolbox/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.pl|directory>...",
	Short: "Run perlcritic and perl -c on Perl files",
	Long: `Check Perl files with perlcritic and "perl -c". Directories are searched
recursively for .pl, .pm, .t, .psgi and .cgi files. Settings come from the
nearest perltoolbox.toml and PERLTOOLBOX_* environment variables.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().StringSlice("pipeline", []string{"lint", "syntax"}, "pipelines to run (lint,syntax)")
	checkCmd.Flags().Bool("disk-cache", false, "reuse results for unchanged files from the user cache directory")
	checkCmd.Flags().String("ui", "auto", "progress view while files are checked (auto|always|never)")
	checkCmd.Flags().Bool("explain", false, "include perlcritic policy explanations")
	checkCmd.Flags().Bool("no-source", false, "do not print the offending source line")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output (same as --path-mode absolute)")
	checkCmd.Flags().String("path-mode", "auto", "how to display file paths (auto|absolute|relative|basename)")
	checkCmd.Flags().String("fail-on", "error", "lowest severity that fails the run (error|warning|info|hint|never)")
}

type checkOptions struct {
	format    string
	jobs      int
	pipelines []check.Pipeline
	diskCache bool
	progress  progressMode
	explain   bool
	noSource  bool
	pathMode  diagfmt.PathMode
	failOn    diag.Severity // zero never fails
	maxDiags  int
	timings   bool
	quiet     bool
}

func readCheckOptions(cmd *cobra.Command) (checkOptions, error) {
	var opts checkOptions
	var err error
	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	if opts.format, err = flags.GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch opts.format {
	case "pretty", "short", "json", "sarif":
	default:
		return opts, fmt.Errorf("unknown format: %s", opts.format)
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	names, err := flags.GetStringSlice("pipeline")
	if err != nil {
		return opts, fmt.Errorf("failed to get pipeline flag: %w", err)
	}
	if opts.pipelines, err = parsePipelines(names); err != nil {
		return opts, err
	}
	if opts.diskCache, err = flags.GetBool("disk-cache"); err != nil {
		return opts, fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.progress, err = parseProgressMode(uiValue); err != nil {
		return opts, err
	}
	if opts.explain, err = flags.GetBool("explain"); err != nil {
		return opts, fmt.Errorf("failed to get explain flag: %w", err)
	}
	if opts.noSource, err = flags.GetBool("no-source"); err != nil {
		return opts, fmt.Errorf("failed to get no-source flag: %w", err)
	}
	fullPath, err := flags.GetBool("fullpath")
	if err != nil {
		return opts, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return opts, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	mode, ok := diagfmt.ParsePathMode(pathMode)
	if !ok {
		return opts, fmt.Errorf("invalid --path-mode value %q (expected auto|absolute|relative|basename)", pathMode)
	}
	opts.pathMode = mode
	if fullPath {
		opts.pathMode = diagfmt.PathModeAbsolute
	}
	failOn, err := flags.GetString("fail-on")
	if err != nil {
		return opts, fmt.Errorf("failed to get fail-on flag: %w", err)
	}
	if opts.failOn, err = parseFailOn(failOn); err != nil {
		return opts, err
	}
	if opts.maxDiags, err = root.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.quiet, err = root.GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	return opts, nil
}

func parsePipelines(names []string) ([]check.Pipeline, error) {
	var out []check.Pipeline
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if name == "all" {
			return check.Pipelines, nil
		}
		p, err := check.ParsePipeline(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no pipeline selected")
	}
	return out, nil
}

func parseFailOn(value string) (diag.Severity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "never":
		return 0, nil
	case "error", "warning", "info", "information", "hint":
		return diag.ParseSeverity(value), nil
	default:
		return 0, fmt.Errorf("invalid --fail-on value %q (expected error|warning|info|hint|never)", value)
	}
}

// runCheck exits 0 when nothing reached --fail-on, 1 when a diagnostic did,
// and 2 when a checker could not be run for some file.
func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := readCheckOptions(cmd)
	if err != nil {
		return err
	}
	log := logger()
	timer := observ.NewTimer()

	endCollect := timer.Start("collect")
	files, err := collectFiles(args)
	endCollect(fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !opts.quiet {
			fmt.Fprintln(cmd.ErrOrStderr(), "no Perl files found")
		}
		return nil
	}

	wd, _ := os.Getwd()
	store := config.NewStore(config.WithRoot(wd), config.WithLogger(log))
	if err := validateSettings(store, files); err != nil {
		return err
	}

	runnerOpts := []check.RunnerOption{check.WithRunnerLogger(log)}
	if opts.diskCache {
		dc, err := cache.Open()
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		runnerOpts = append(runnerOpts, check.WithResultCache(dc))
	}
	runner := check.NewProcessRunner(runnerOpts...)
	batch := check.BatchOptions{
		Jobs:           opts.jobs,
		Pipelines:      opts.pipelines,
		MaxDiagnostics: opts.maxDiags,
	}

	endCheck := timer.Start("check")
	var results []check.FileResult
	if opts.progress.showProgress(len(files), opts.quiet) {
		results, err = runCheckWithUI(cmd.Context(), "perltoolbox check", runner, store, files, batch)
	} else {
		results, err = check.CheckFiles(cmd.Context(), runner, store, files, batch)
	}
	endCheck(fmt.Sprintf("%d pipelines", len(opts.pipelines)))
	if err != nil {
		return err
	}

	endRender := timer.Start("render")
	if err := renderResults(cmd, results, opts); err != nil {
		return err
	}
	endRender(opts.format)

	failures := reportFailures(cmd, results)
	if opts.timings {
		asJSON := opts.format == "json" || opts.format == "sarif"
		if err := printTimings(cmd.ErrOrStderr(), timer, asJSON); err != nil {
			return err
		}
	}

	code := 0
	switch {
	case failures > 0:
		code = 2
	case reachesFailOn(results, opts.failOn):
		code = 1
	}
	if code != 0 {
		// Diagnostics were already printed.
		cmd.SilenceErrors = true
		return &exitCodeError{code: code}
	}
	return nil
}

// collectFiles expands directories into the Perl files below them. Explicit
// file arguments are kept whatever their extension. The result is sorted and
// free of duplicates.
func collectFiles(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path: %w", err)
		}
		if !st.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if source.LanguageFromPath(path) == source.LanguagePerl {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	slices.Sort(files)
	return files, nil
}

// validateSettings rejects broken or invalid configuration up front; the
// language server falls back to defaults instead.
func validateSettings(store *config.Store, files []string) error {
	checked := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if checked[dir] {
			continue
		}
		checked[dir] = true
		if path, ok, err := config.FindFile(dir); err != nil {
			return err
		} else if ok {
			if _, err := config.LoadFile(path); err != nil {
				return err
			}
		}
		if _, err := store.Check(file); err != nil {
			return fmt.Errorf("settings for %s: %w", file, err)
		}
	}
	return nil
}

func reportFailures(cmd *cobra.Command, results []check.FileResult) int {
	failures := 0
	for _, r := range results {
		for _, err := range r.Errs {
			failures++
			var procErr *check.ProcessError
			if errors.As(err, &procErr) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s failed: %v\n", r.Path, procErr.Pipeline, procErr.Err)
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, err)
		}
	}
	return failures
}

func reachesFailOn(results []check.FileResult, threshold diag.Severity) bool {
	if threshold == 0 {
		return false
	}
	for _, r := range results {
		for _, d := range r.Diagnostics {
			if d.Severity != 0 && d.Severity <= threshold {
				return true
			}
		}
	}
	return false
}
