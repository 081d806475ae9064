package check

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"perltoolbox/internal/config"
	"perltoolbox/internal/diag"
	"perltoolbox/internal/source"
)

// Publisher delivers the diagnostics of one document to the editor. Publish
// replaces the previous set; Clear removes it.
type Publisher interface {
	Publish(doc *source.Document, list []diag.Diagnostic) error
	Clear(uri string) error
}

// Session serializes check runs per document and pipeline.
//
// Thread Safety: Safe for concurrent use.
type Session struct {
	runner    Runner
	provider  config.Provider
	publisher Publisher
	logger    *slog.Logger
	base      context.Context
	max       int

	seq atomic.Uint64
	wg  sync.WaitGroup

	mu   sync.Mutex
	docs map[string]*docState

	// pubMu keeps publishes in snapshot order. It is always taken while mu
	// is held and released after mu.
	pubMu sync.Mutex
}

type docState struct {
	doc       *source.Document
	runs      [pipelineCount]run
	sets      [pipelineCount][]diag.Diagnostic
	published bool
}

type run struct {
	seq    uint64
	cancel context.CancelFunc
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger for run outcomes.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithContext sets the parent context of every run. Canceling it cancels
// all in-flight runs.
func WithContext(ctx context.Context) SessionOption {
	return func(s *Session) {
		s.base = ctx
	}
}

// WithMaxDiagnostics caps the diagnostics published per document.
// Zero means no limit.
func WithMaxDiagnostics(n int) SessionOption {
	return func(s *Session) {
		s.max = n
	}
}

func NewSession(runner Runner, provider config.Provider, publisher Publisher, opts ...SessionOption) *Session {
	s := &Session{
		runner:    runner,
		provider:  provider,
		publisher: publisher,
		logger:    slog.Default(),
		base:      context.Background(),
		docs:      make(map[string]*docState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open checks a document that was just opened.
func (s *Session) Open(doc *source.Document) {
	s.trigger(doc, "open")
}

// Save checks a document that was just saved.
func (s *Session) Save(doc *source.Document) {
	s.trigger(doc, "save")
}

// Close clears the document's diagnostics. Runs still in flight for it are
// canceled and their results discarded.
func (s *Session) Close(uri string) {
	s.mu.Lock()
	st, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return
	}
	st.cancelRuns()
	delete(s.docs, uri)
	published := st.published
	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	if published {
		if err := s.publisher.Clear(uri); err != nil {
			s.logger.Warn("clear diagnostics failed", slog.String("uri", uri), slog.String("error", err.Error()))
		}
	}
}

// Recheck runs both pipelines again for every tracked document, e.g. after
// configuration changed.
func (s *Session) Recheck() {
	s.mu.Lock()
	docs := make([]*source.Document, 0, len(s.docs))
	for _, st := range s.docs {
		if st.doc != nil {
			docs = append(docs, st.doc)
		}
	}
	s.mu.Unlock()
	for _, doc := range docs {
		s.trigger(doc, "config")
	}
}

// ClearAll cancels every run and clears every published set.
func (s *Session) ClearAll() {
	s.mu.Lock()
	var uris []string
	for uri, st := range s.docs {
		st.cancelRuns()
		if st.published {
			uris = append(uris, uri)
		}
	}
	s.docs = make(map[string]*docState)
	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	for _, uri := range uris {
		if err := s.publisher.Clear(uri); err != nil {
			s.logger.Warn("clear diagnostics failed", slog.String("uri", uri), slog.String("error", err.Error()))
		}
	}
}

// Wait blocks until every started run has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) trigger(doc *source.Document, reason string) {
	if !doc.Checkable() {
		if doc != nil {
			s.logger.Debug("document skipped",
				slog.String("uri", doc.URI),
				slog.String("language", doc.LanguageID),
				slog.String("reason", reason),
			)
		}
		return
	}
	settings := s.provider.Settings(doc.Path)

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.docs[doc.URI]
	if !ok {
		st = &docState{}
		s.docs[doc.URI] = st
	}
	st.doc = doc
	for _, p := range Pipelines {
		if prev := st.runs[p]; prev.cancel != nil {
			prev.cancel()
		}
		seq := s.seq.Add(1)
		ctx, cancel := context.WithCancel(s.base)
		st.runs[p] = run{seq: seq, cancel: cancel}

		s.wg.Add(1)
		go s.execute(ctx, p, doc, settings.Clone(), seq)
	}
	s.logger.Debug("check scheduled",
		slog.String("uri", doc.URI),
		slog.Int("version", doc.Version),
		slog.String("reason", reason),
	)
}

func (s *Session) execute(ctx context.Context, p Pipeline, doc *source.Document, settings config.Settings, seq uint64) {
	defer s.wg.Done()

	list, err := s.runner.Run(ctx, p, doc, settings)
	logger := s.logger.With(slog.String("uri", doc.URI), slog.String("pipeline", p.String()))

	var procErr *ProcessError
	switch {
	case err == nil:
	case errors.Is(err, ErrDisabled):
		// A disabled pipeline contributes nothing, replacing any older set.
		list = nil
	case errors.Is(err, ErrSkipped):
		return
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		logger.Debug("check canceled")
		return
	case errors.As(err, &procErr):
		logger.Warn("checker failed", slog.String("error", procErr.Error()))
		list = nil
	default:
		logger.Error("check abandoned", slog.String("error", err.Error()))
		return
	}

	s.mu.Lock()
	st, ok := s.docs[doc.URI]
	if !ok || st.runs[p].seq != seq {
		s.mu.Unlock()
		logger.Debug("stale result discarded", slog.Uint64("seq", seq))
		return
	}
	st.runs[p].cancel()
	st.runs[p].cancel = nil
	st.sets[p] = list
	merged := st.merged(s.max)
	st.published = true
	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	if err := s.publisher.Publish(doc, merged); err != nil {
		logger.Warn("publish diagnostics failed", slog.String("error", err.Error()))
	}
}

func (st *docState) cancelRuns() {
	for i := range st.runs {
		if st.runs[i].cancel != nil {
			st.runs[i].cancel()
			st.runs[i].cancel = nil
		}
	}
}

// merged is the union of every pipeline's latest set.
func (st *docState) merged(max int) []diag.Diagnostic {
	bag := diag.NewBag(max)
	for _, p := range Pipelines {
		bag.AddAll(st.sets[p])
	}
	out := make([]diag.Diagnostic, bag.Len())
	copy(out, bag.Items())
	diag.Sort(out)
	return out
}
