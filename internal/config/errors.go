package config

import "errors"

var (
	ErrInvalidSeverity      = errors.New("invalid severity threshold (expected gentle|stern|harsh|cruel|brutal|1-5)")
	ErrInvalidHighlightMode = errors.New("invalid highlight mode (expected word|line)")
	ErrMissingExecutable    = errors.New("missing executable")
	ErrInvalidTimeout       = errors.New("invalid timeout")
	// ErrUnknownKey is returned for keys perltoolbox.toml does not define.
	ErrUnknownKey = errors.New("unknown configuration key")
)
