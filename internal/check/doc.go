// Package check runs the lint and syntax pipelines against documents.
//
// A Runner executes one pipeline for one document and returns its
// diagnostics. ProcessRunner is the real implementation: it writes the
// document text to <tmp>/<basename>.<pipeline>, runs the configured tool
// through the platform shell, parses the relevant output stream and removes
// the temp file.
//
// Session drives runs for an editor. Every open or save starts a run per
// pipeline; a newer trigger for the same document and pipeline cancels the
// older run, and only the latest run's result is ever published. Closing a
// document clears its diagnostics and invalidates in-flight runs.
//
// CheckFiles runs both pipelines over files on disk with a bounded worker
// pool for the command-line checker.
package check
