package diag

import "strings"

// Severity defines the importance of a diagnostic.
// Values match the LSP DiagnosticSeverity enumeration.
type Severity uint8

const (
	// SevError is for errors.
	SevError Severity = iota + 1
	// SevWarning is for warnings.
	SevWarning
	// SevInfo is for informational diagnostics.
	SevInfo
	SevHint
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "ERROR"
	case SevWarning:
		return "WARNING"
	case SevInfo:
		return "INFO"
	case SevHint:
		return "HINT"
	}
	return "UNKNOWN"
}

// Name returns the lower-case configuration spelling of the severity.
func (s Severity) Name() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevInfo:
		return "information"
	case SevHint:
		return "hint"
	default:
		return "error"
	}
}

// MoreSevere reports whether s ranks above other (Error is the most severe).
func (s Severity) MoreSevere(other Severity) bool {
	return s != 0 && (other == 0 || s < other)
}

// ParseSeverity maps an editor severity name to a Severity.
// Anything unrecognised, including the empty string, is an error.
func ParseSeverity(name string) Severity {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hint":
		return SevHint
	case "info", "information":
		return SevInfo
	case "warning":
		return SevWarning
	default:
		return SevError
	}
}
