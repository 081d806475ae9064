package lsp

import (
	"perltoolbox/internal/diag"
	"perltoolbox/internal/source"
)

// Publish implements check.Publisher. Columns are converted to UTF-16
// against the text that was checked.
func (s *Server) Publish(doc *source.Document, list []diag.Diagnostic) error {
	return s.sendPublish(doc.URI, toLSPDiagnostics(doc.Text, list))
}

// Clear implements check.Publisher.
func (s *Server) Clear(uri string) error {
	return s.sendPublish(uri, nil)
}

func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func toLSPDiagnostics(text string, list []diag.Diagnostic) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(list))
	for _, d := range list {
		out = append(out, lspDiagnostic{
			Range:    toLSPRange(text, d.Range),
			Severity: int(d.Severity),
			Code:     d.Code,
			Source:   d.Source,
			Message:  d.Message,
		})
	}
	return out
}

func toLSPRange(text string, r diag.Range) lspRange {
	return lspRange{
		Start: toLSPPosition(text, r.Start),
		End:   toLSPPosition(text, r.End),
	}
}

func toLSPPosition(text string, p diag.Position) position {
	line := maxZero(p.Line)
	return position{Line: line, Character: utf16Column(text, line, maxZero(p.Character))}
}

func maxZero(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
