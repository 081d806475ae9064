package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"perltoolbox/internal/check"
	"perltoolbox/internal/config"
	"perltoolbox/internal/diag"
	"perltoolbox/internal/source"
)

// testClient drives a Server over in-memory pipes with framed messages.
type testClient struct {
	t      *testing.T
	in     *io.PipeWriter
	msgs   chan rpcMessage
	done   chan error
	nextID int
	exited bool
}

func startServer(t *testing.T, opts ServerOptions) *testClient {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Store == nil {
		opts.Store = config.NewStore(
			config.WithLogger(opts.Logger),
			config.WithGetenv(func(string) string { return "" }),
		)
	}
	server := NewServer(inR, outW, opts)

	c := &testClient{
		t:    t,
		in:   inW,
		msgs: make(chan rpcMessage, 256),
		done: make(chan error, 1),
	}
	go func() {
		err := server.Run(context.Background())
		outW.Close()
		c.done <- err
	}()
	go func() {
		r := bufio.NewReader(outR)
		for {
			payload, err := readMessage(r)
			if err != nil {
				close(c.msgs)
				return
			}
			var msg rpcMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				continue
			}
			c.msgs <- msg
		}
	}()
	t.Cleanup(func() {
		inW.Close()
		if c.exited {
			return
		}
		select {
		case <-c.done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return c
}

// wait returns the error Run stopped with.
func (c *testClient) wait() error {
	c.t.Helper()
	select {
	case err := <-c.done:
		c.exited = true
		return err
	case <-time.After(5 * time.Second):
		c.t.Fatal("server did not stop")
	}
	return nil
}

func (c *testClient) write(method string, id *int, params any) {
	c.t.Helper()
	msg := map[string]any{"jsonrpc": "2.0", "method": method}
	if id != nil {
		msg["id"] = *id
	}
	if params != nil {
		msg["params"] = params
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("marshal %s: %v", method, err)
	}
	if err := writeMessage(c.in, payload); err != nil {
		c.t.Fatalf("write %s: %v", method, err)
	}
}

func (c *testClient) notify(method string, params any) {
	c.t.Helper()
	c.write(method, nil, params)
}

// request sends a request and returns its response, skipping notifications.
func (c *testClient) request(method string, params any) rpcMessage {
	c.t.Helper()
	c.nextID++
	id := c.nextID
	c.write(method, &id, params)
	want, _ := json.Marshal(id)
	for {
		msg := c.receive()
		if msg.Method == "" && string(msg.ID) == string(want) {
			return msg
		}
	}
}

func (c *testClient) receive() rpcMessage {
	c.t.Helper()
	select {
	case msg, ok := <-c.msgs:
		if !ok {
			c.t.Fatal("server output closed")
		}
		return msg
	case <-time.After(5 * time.Second):
		c.t.Fatal("timed out waiting for a message")
	}
	return rpcMessage{}
}

// waitPublish returns the first publishDiagnostics for uri accepted by match.
func (c *testClient) waitPublish(uri string, match func([]lspDiagnostic) bool) []lspDiagnostic {
	c.t.Helper()
	for {
		msg := c.receive()
		if msg.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var params publishDiagnosticsParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			c.t.Fatalf("decode publish: %v", err)
		}
		if params.URI == uri && match(params.Diagnostics) {
			return params.Diagnostics
		}
	}
}

func (c *testClient) initialize(options any) rpcMessage {
	c.t.Helper()
	params := map[string]any{"rootUri": ""}
	if options != nil {
		params["initializationOptions"] = options
	}
	resp := c.request("initialize", params)
	c.notify("initialized", map[string]any{})
	return resp
}

func (c *testClient) open(uri, languageID, text string) {
	c.t.Helper()
	c.notify("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	})
}

func hasCount(n int) func([]lspDiagnostic) bool {
	return func(list []lspDiagnostic) bool { return len(list) == n }
}

// fakeRunner reports one lint diagnostic per line of text containing "bad",
// and records the text each pipeline saw.
type fakeRunner struct {
	mu    sync.Mutex
	texts map[check.Pipeline][]string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		texts: make(map[check.Pipeline][]string),
	}
}

func (f *fakeRunner) Run(ctx context.Context, p check.Pipeline, doc *source.Document, s config.Settings) ([]diag.Diagnostic, error) {
	if !doc.Checkable() {
		return nil, check.ErrSkipped
	}
	if !p.Enabled(s) {
		return nil, check.ErrDisabled
	}
	f.mu.Lock()
	f.texts[p] = append(f.texts[p], doc.Text)
	f.mu.Unlock()

	if p != check.PipelineLint {
		return nil, nil
	}
	var out []diag.Diagnostic
	for i, line := range strings.Split(doc.Text, "\n") {
		if strings.Contains(line, "bad") {
			out = append(out, diag.Diagnostic{
				Range:    diag.LineRange(i, 0),
				Severity: diag.SevWarning,
				Source:   "perlcritic",
				Code:     "BadPolicy",
				Message:  "Lint: HARSH: bad line",
				Detail:   "long explanation",
			})
		}
	}
	return out, nil
}

func (f *fakeRunner) lastText(p check.Pipeline) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	texts := f.texts[p]
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, texts := range f.texts {
		n += len(texts)
	}
	return n
}
