package check

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"perltoolbox/internal/cache"
	"perltoolbox/internal/config"
	"perltoolbox/internal/diag"
	"perltoolbox/internal/lint"
	"perltoolbox/internal/source"
	"perltoolbox/internal/syntax"
)

// Runner executes one pipeline against one document.
type Runner interface {
	Run(ctx context.Context, p Pipeline, doc *source.Document, s config.Settings) ([]diag.Diagnostic, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, p Pipeline, doc *source.Document, s config.Settings) ([]diag.Diagnostic, error)

func (f RunnerFunc) Run(ctx context.Context, p Pipeline, doc *source.Document, s config.Settings) ([]diag.Diagnostic, error) {
	return f(ctx, p, doc, s)
}

// ResultCache stores pipeline results keyed by a digest of the command and
// document text. *cache.DiskCache implements it.
type ResultCache interface {
	Lookup(key cache.Digest) ([]diag.Diagnostic, bool, error)
	Store(key cache.Digest, pipeline string, list []diag.Diagnostic) error
}

// ProcessRunner runs perlcritic and perl as shell subprocesses.
//
// Thread Safety: Safe for concurrent use.
type ProcessRunner struct {
	logger *slog.Logger
	cache  ResultCache
	temps  pathLocks
}

// RunnerOption configures a ProcessRunner.
type RunnerOption func(*ProcessRunner)

// WithRunnerLogger sets the logger for process diagnostics.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *ProcessRunner) {
		r.logger = logger
	}
}

// WithResultCache enables result caching.
func WithResultCache(c ResultCache) RunnerOption {
	return func(r *ProcessRunner) {
		r.cache = c
	}
}

func NewProcessRunner(opts ...RunnerOption) *ProcessRunner {
	r := &ProcessRunner{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const waitDelay = time.Second

// invocation is everything needed to start one checker process.
type invocation struct {
	pipeline Pipeline
	tempPath string
	command  string
	dir      string
}

func newInvocation(p Pipeline, doc *source.Document, s config.Settings) invocation {
	inv := invocation{
		pipeline: p,
		tempPath: filepath.Join(s.TempDir(), doc.Basename()+"."+p.String()),
	}
	switch p {
	case PipelineLint:
		inv.command = ShellCommand(s.Lint.Exec, lint.Args(s.Lint, inv.tempPath))
		inv.dir = s.Lint.Path
	case PipelineSyntax:
		inv.command = ShellCommand(s.Syntax.Exec, syntax.Args(s.Syntax, inv.tempPath))
		inv.dir = s.Syntax.Path
	}
	return inv
}

// Run checks doc with pipeline p.
//
// Outputs:
//
//	[]diag.Diagnostic - parsed diagnostics; empty when the tool reported nothing
//	error - ErrSkipped, ErrDisabled, ErrCanceled, a *ProcessError when the
//	    process could not start or timed out, or a temp-file error
//
// The tool's exit status is not inspected: perlcritic exits non-zero whenever
// it finds violations and perl -c does so on every syntax error. Only the
// shell's own "cannot run" statuses count as failures.
func (r *ProcessRunner) Run(ctx context.Context, p Pipeline, doc *source.Document, s config.Settings) ([]diag.Diagnostic, error) {
	if !doc.Checkable() {
		return nil, ErrSkipped
	}
	if !p.Enabled(s) {
		return nil, ErrDisabled
	}

	runID := uuid.NewString()
	start := time.Now()
	ctx, span := startCheckSpan(ctx, p, doc.Path, runID)
	defer span.End()

	logger := r.logger.With(
		slog.String("run_id", runID),
		slog.String("pipeline", p.String()),
		slog.String("uri", doc.URI),
	)

	inv := newInvocation(p, doc, s)
	key := cache.Sum(p.String(), inv.command, inv.dir, parseSettingsKey(p, s), doc.Text)
	if list, ok := r.lookup(key, logger); ok {
		setCheckSpanResult(span, list, true, nil)
		recordCheckMetrics(ctx, p, time.Since(start), len(list), true, true)
		return list, nil
	}

	list, err := r.execute(ctx, inv, doc, s, logger)
	setCheckSpanResult(span, list, false, err)
	recordCheckMetrics(ctx, p, time.Since(start), len(list), false, err == nil)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Store(key, p.String(), list); err != nil {
			logger.Debug("cache store failed", slog.String("error", err.Error()))
		}
	}
	logger.Debug("check completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("diagnostics", len(list)),
	)
	return list, nil
}

// parseSettingsKey covers the settings that shape parsed diagnostics but
// never reach the command line.
func parseSettingsKey(p Pipeline, s config.Settings) string {
	if p != PipelineLint {
		return ""
	}
	parts := []string{s.Lint.HighlightMode}
	for _, tier := range config.Tiers {
		parts = append(parts, s.Lint.TierSeverity(tier))
	}
	return strings.Join(parts, "|")
}

func (r *ProcessRunner) lookup(key cache.Digest, logger *slog.Logger) ([]diag.Diagnostic, bool) {
	if r.cache == nil {
		return nil, false
	}
	list, ok, err := r.cache.Lookup(key)
	if err != nil {
		logger.Debug("cache lookup failed", slog.String("error", err.Error()))
		return nil, false
	}
	return list, ok
}

func (r *ProcessRunner) execute(ctx context.Context, inv invocation, doc *source.Document, s config.Settings, logger *slog.Logger) ([]diag.Diagnostic, error) {
	// Documents with the same basename share a temp path.
	unlock, err := r.temps.acquire(ctx, inv.tempPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	defer unlock()

	// #nosec G306 -- temp copy of the user's own buffer
	if err := os.WriteFile(inv.tempPath, []byte(doc.Text), 0o600); err != nil {
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	defer func() {
		if err := os.Remove(inv.tempPath); err != nil {
			logger.Debug("temp file not removed", slog.String("path", inv.tempPath), slog.String("error", err.Error()))
		}
	}()

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := shellCmd(cmdCtx, inv.command)
	cmd.Dir = inv.dir
	// Killing the shell does not kill the tool it started, which keeps the
	// output pipes open.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("running checker", slog.String("command", inv.command), slog.String("dir", inv.dir))
	err = cmd.Run()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
	}
	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		return nil, &ProcessError{Pipeline: inv.pipeline, Command: inv.command, Stderr: stderr.String(), Err: ErrTimeout}
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, &ProcessError{Pipeline: inv.pipeline, Command: inv.command, Stderr: stderr.String(), Err: err}
	}
	if exitErr != nil && shellLaunchFailed(exitErr.ExitCode()) {
		return nil, &ProcessError{Pipeline: inv.pipeline, Command: inv.command, Stderr: stderr.String(), Err: ErrNotFound}
	}

	switch inv.pipeline {
	case PipelineLint:
		if stderr.Len() > 0 {
			logger.Warn("perlcritic stderr", slog.String("stderr", stderr.String()))
		}
		return lint.ParseOutput(stdout.String(), doc, s.Lint), nil
	default:
		if stdout.Len() > 0 {
			logger.Debug("perl stdout", slog.String("stdout", stdout.String()))
		}
		return syntax.ParseOutput(stderr.String(), s.Syntax), nil
	}
}
