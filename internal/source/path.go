package source

import "path/filepath"

// FormatPath renders path for display.
// mode: "absolute", "relative", "basename", "auto".
// baseDir is only used by "relative".
func FormatPath(path, mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	case "relative":
		if baseDir == "" {
			return path
		}
		if rel, err := filepath.Rel(baseDir, path); err == nil {
			return rel
		}
		return path
	case "basename":
		return filepath.Base(path)
	case "auto":
		if len(path) < 40 || !filepath.IsAbs(path) {
			return path
		}
		return filepath.Base(path)
	default:
		return path
	}
}
