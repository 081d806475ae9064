// Package diag defines the diagnostic model shared by the lint and syntax
// pipelines, the language server and the CLI renderers.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Range – zero-based start/end positions. A range that ends at EndOfLine
//     covers the rest of the line; the editor clamps it.
//   - Severity – the four editor levels (Error, Warning, Information, Hint)
//     numbered exactly like LSP DiagnosticSeverity so values can be sent as-is.
//   - Source – the tool that produced the finding ("perlcritic", "perl").
//   - Code – optional tool identifier, e.g. the perlcritic policy name.
//   - Message – the text shown inline.
//
// Package diag performs no IO. Rendering lives in internal/diagfmt, transport
// in internal/lsp.
package diag
