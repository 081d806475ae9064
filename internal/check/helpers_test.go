package check

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"perltoolbox/internal/config"
	"perltoolbox/internal/diag"
	"perltoolbox/internal/source"
)

// writeScript creates an executable shell script standing in for a checker.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script checkers need a POSIX shell")
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

// testSettings points both pipelines at scripts in a fresh temp dir.
func testSettings(t *testing.T, lintExec, syntaxExec string) config.Settings {
	t.Helper()
	s := config.Defaults()
	s.TemporaryPath = t.TempDir()
	s.Lint.Exec = lintExec
	s.Syntax.Exec = syntaxExec
	s.Timeout = 5 * time.Second
	return s
}

func perlDoc(uri, text string) *source.Document {
	return source.NewDocument(uri, source.LanguagePerl, text, 1)
}

type publishCall struct {
	URI   string
	List  []diag.Diagnostic
	Clear bool
}

// recorder is an in-memory Publisher.
type recorder struct {
	mu    sync.Mutex
	calls []publishCall
	sets  map[string][]diag.Diagnostic
}

func newRecorder() *recorder {
	return &recorder{sets: make(map[string][]diag.Diagnostic)}
}

func (r *recorder) Publish(doc *source.Document, list []diag.Diagnostic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, publishCall{URI: doc.URI, List: list})
	r.sets[doc.URI] = list
	return nil
}

func (r *recorder) Clear(uri string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, publishCall{URI: uri, Clear: true})
	delete(r.sets, uri)
	return nil
}

func (r *recorder) current(uri string) ([]diag.Diagnostic, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, ok := r.sets[uri]
	return list, ok
}

func (r *recorder) history() []publishCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]publishCall(nil), r.calls...)
}

// gatedRunner blocks each run until released, so tests control completion
// order.
type gatedRunner struct {
	startCh chan gatedRun
}

type gatedRun struct {
	Pipeline Pipeline
	Doc      *source.Document
	release  chan result
}

type result struct {
	list []diag.Diagnostic
	err  error
}

func newGatedRunner() *gatedRunner {
	return &gatedRunner{startCh: make(chan gatedRun, 64)}
}

func (g *gatedRunner) Run(ctx context.Context, p Pipeline, doc *source.Document, _ config.Settings) ([]diag.Diagnostic, error) {
	r := gatedRun{Pipeline: p, Doc: doc, release: make(chan result, 1)}
	g.startCh <- r
	select {
	case res := <-r.release:
		return res.list, res.err
	case <-ctx.Done():
		return nil, ErrCanceled
	}
}

// next waits for the next started run.
func (g *gatedRunner) next(t *testing.T) gatedRun {
	t.Helper()
	select {
	case r := <-g.startCh:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("no run started")
		return gatedRun{}
	}
}

// pair waits for the lint and syntax runs of one trigger.
func (g *gatedRunner) pair(t *testing.T) (lintRun, syntaxRun gatedRun) {
	t.Helper()
	for range 2 {
		r := g.next(t)
		if r.Pipeline == PipelineLint {
			lintRun = r
		} else {
			syntaxRun = r
		}
	}
	return lintRun, syntaxRun
}

func (r gatedRun) finish(list ...diag.Diagnostic) {
	r.release <- result{list: list}
}

func (r gatedRun) fail(err error) {
	r.release <- result{err: err}
}

func lintDiag(line int, msg string) diag.Diagnostic {
	return diag.Diagnostic{Range: diag.LineRange(line, 0), Severity: diag.SevWarning, Source: "perlcritic", Message: msg}
}

func syntaxDiag(line int, msg string) diag.Diagnostic {
	return diag.Diagnostic{Range: diag.LineRange(line, 0), Severity: diag.SevError, Source: "perl", Message: msg}
}

// lineCritic reports one violation per line of the checked file, after a
// pause that lets overlapping runs collide on the temp path.
const lineCritic = `for a; do last=$a; done
sleep 0.3
if [ ! -f "$last" ]; then echo "no file $last" >&2; exit 0; fi
n=0
while IFS= read -r _; do
	n=$((n+1))
	printf '5~|~%d~|~1~|~line %d~|~e~|~P~||~\n' "$n" "$n"
done < "$last"
`

const (
	testWait = 5 * time.Second
	testTick = 10 * time.Millisecond
)
