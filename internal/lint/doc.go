// Package lint turns perlcritic output into diagnostics.
//
// perlcritic is invoked with a custom --verbose template so that every
// violation is one line of six fields:
//
//	severity~|~line~|~column~|~message~|~explanation~|~policy~||~
//
// Lines that do not split into exactly six fields, or whose line and column
// are not positive integers, are skipped without error. perlcritic prints
// its own summaries ("source OK", profile warnings) in other shapes, so
// skipping is the normal case, not a failure.
//
// The numeric severity becomes a tier (5 gentle ... 1 brutal) and each tier
// maps to an editor severity through configuration.
package lint
