package check

import (
	"context"
	"errors"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"perltoolbox/internal/config"
	"perltoolbox/internal/diag"
	"perltoolbox/internal/source"
)

// Status is the state of one file in a batch.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event reports batch progress. Pipeline is meaningful for StatusWorking,
// Diagnostics for StatusDone and StatusError.
type Event struct {
	File        string
	Pipeline    Pipeline
	Status      Status
	Diagnostics int
}

// FileResult is the outcome of checking one file.
type FileResult struct {
	Path        string
	Doc         *source.Document
	Diagnostics []diag.Diagnostic
	// Errs holds process failures per pipeline; the file's other pipelines
	// still ran.
	Errs     []error
	Duration time.Duration
}

// Failed reports whether any pipeline failed to produce a result.
func (r FileResult) Failed() bool {
	return len(r.Errs) > 0
}

// BatchOptions configures CheckFiles.
type BatchOptions struct {
	// Jobs bounds concurrency; <= 0 uses GOMAXPROCS.
	Jobs int
	// Pipelines restricts the run; nil means all.
	Pipelines []Pipeline
	// Events, when set, receives progress. CheckFiles never closes it.
	Events chan<- Event
	// MaxDiagnostics caps diagnostics per file; zero means no limit.
	MaxDiagnostics int
}

// CheckFiles loads and checks every path. Results keep the order of paths.
// Per-file failures are reported in FileResult; the returned error is only
// set when ctx is canceled.
func CheckFiles(ctx context.Context, runner Runner, provider config.Provider, paths []string, opts BatchOptions) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results, nil
	}
	pipelines := opts.Pipelines
	if len(pipelines) == 0 {
		pipelines = Pipelines
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	emit := func(ev Event) {
		if opts.Events == nil {
			return
		}
		select {
		case opts.Events <- ev:
		case <-ctx.Done():
		}
	}
	for _, path := range paths {
		emit(Event{File: path, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			start := time.Now()
			res := FileResult{Path: path}

			doc, err := source.Load(path)
			if err != nil {
				res.Errs = append(res.Errs, err)
				res.Duration = time.Since(start)
				results[i] = res
				emit(Event{File: path, Status: StatusError})
				return nil
			}
			res.Doc = doc
			settings := provider.Settings(doc.Path)

			bag := diag.NewBag(opts.MaxDiagnostics)
			for _, p := range pipelines {
				emit(Event{File: path, Pipeline: p, Status: StatusWorking})
				list, err := runner.Run(gctx, p, doc, settings)
				switch {
				case err == nil:
					bag.AddAll(list)
				case errors.Is(err, ErrDisabled), errors.Is(err, ErrSkipped):
				case gctx.Err() != nil:
					return gctx.Err()
				default:
					res.Errs = append(res.Errs, err)
				}
			}
			bag.Sort()
			res.Diagnostics = bag.Items()
			res.Duration = time.Since(start)
			results[i] = res

			status := StatusDone
			if res.Failed() {
				status = StatusError
			}
			emit(Event{File: path, Status: status, Diagnostics: len(res.Diagnostics)})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
