package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"perltoolbox/internal/check"
	"perltoolbox/internal/config"
	"perltoolbox/internal/source"
	"perltoolbox/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	// Runner executes the checkers. Defaults to a check.ProcessRunner.
	Runner check.Runner
	// Store resolves per-document settings. Defaults to an empty config.Store.
	Store          *config.Store
	Logger         *slog.Logger
	MaxDiagnostics int
	// WatchConfig reloads perltoolbox.toml files when they change on disk.
	WatchConfig bool
}

// Server handles stdio JSON-RPC for the Perl toolbox.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	logger *slog.Logger

	store       *config.Store
	session     *check.Session
	runner      check.Runner
	watchConfig bool
	watcher     *config.Watcher
	maxDiags    int

	mu                sync.Mutex
	texts             map[string]string
	languages         map[string]string
	versions          map[string]int
	shutdownRequested bool
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := opts.Store
	if store == nil {
		store = config.NewStore(config.WithLogger(logger))
	}
	runner := opts.Runner
	if runner == nil {
		runner = check.NewProcessRunner(check.WithRunnerLogger(logger))
	}
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics < 0 {
		maxDiagnostics = 0
	}
	return &Server{
		in:          bufio.NewReader(in),
		out:         bufio.NewWriter(out),
		logger:      logger.With(slog.String("component", "lsp")),
		store:       store,
		runner:      runner,
		watchConfig: opts.WatchConfig,
		maxDiags:    maxDiagnostics,
		texts:       make(map[string]string),
		languages:   make(map[string]string),
		versions:    make(map[string]int),
	}
}

// Run serves LSP requests until exit or until the input stream ends.
// In-flight checks are canceled when Run returns.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	s.session = check.NewSession(s.runner, s.store, s,
		check.WithSessionLogger(s.logger),
		check.WithContext(ctx),
		check.WithMaxDiagnostics(s.maxDiags),
	)
	s.store.OnChange(s.session.Recheck)
	if s.watchConfig {
		w, err := config.NewWatcher(s.store, s.logger)
		if err != nil {
			s.logger.Warn("config watcher unavailable", slog.String("error", err.Error()))
		} else {
			s.watcher = w
			go w.Run(ctx)
		}
	}
	defer s.session.Wait()
	defer cancel()

	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Warn("failed to parse message", slog.String("error", err.Error()))
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		s.mu.Lock()
		requested := s.shutdownRequested
		s.mu.Unlock()
		if requested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = source.URIToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = source.URIToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.store.SetRoot(root)
	s.logger.Info("initialize", slog.String("root", root))
	if err := s.applySettings(params.InitializationOptions); err != nil {
		s.logger.Warn("ignoring initializationOptions", slog.String("error", err.Error()))
	}
	s.syncWatcher()

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
		},
		ServerInfo: &serverInfo{Name: "perltoolbox", Version: version.Version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.texts = make(map[string]string)
	s.languages = make(map[string]string)
	s.versions = make(map[string]int)
	s.mu.Unlock()
	s.session.ClearAll()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logInvalidParams(msg, err)
		return nil
	}
	item := params.TextDocument
	if item.URI == "" {
		return nil
	}
	s.mu.Lock()
	s.texts[item.URI] = item.Text
	s.languages[item.URI] = item.LanguageID
	s.versions[item.URI] = item.Version
	s.mu.Unlock()

	s.session.Open(source.NewDocument(item.URI, item.LanguageID, item.Text, item.Version))
	s.syncWatcher()
	return nil
}

// handleDidChange only tracks the buffer; checks run on open and save.
func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logInvalidParams(msg, err)
		return nil
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.texts[uri]; !ok {
		return nil
	}
	s.texts[uri] = applyChanges(s.texts[uri], params.ContentChanges)
	s.versions[uri] = params.TextDocument.Version
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logInvalidParams(msg, err)
		return nil
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	text, open := s.texts[uri]
	if params.Text != nil {
		text = *params.Text
		s.texts[uri] = text
	}
	language, known := s.languages[uri]
	ver := s.versions[uri]
	s.mu.Unlock()
	if !open && params.Text == nil {
		s.logger.Debug("didSave for unknown document", slog.String("uri", uri))
		return nil
	}
	if !known {
		language = source.LanguageFromPath(source.URIToPath(uri))
	}
	s.session.Save(source.NewDocument(uri, language, text, ver))
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logInvalidParams(msg, err)
		return nil
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.texts, uri)
	delete(s.languages, uri)
	delete(s.versions, uri)
	s.mu.Unlock()
	s.session.Close(uri)
	return nil
}

func (s *Server) logInvalidParams(msg *rpcMessage, err error) {
	s.logger.Warn("invalid params", slog.String("method", msg.Method), slog.String("error", err.Error()))
}

func (s *Server) syncWatcher() {
	if s.watcher != nil {
		s.watcher.Sync()
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}
