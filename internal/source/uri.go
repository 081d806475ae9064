package source

import (
	"net/url"
	"path/filepath"
	"strings"
)

// URIToPath converts a file URI to a local path. Non-file URIs yield "".
func URIToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && parsed.Scheme != "file" && !isDriveLetter(parsed.Scheme) {
		return ""
	}
	path := parsed.Path
	if parsed.Scheme == "" || isDriveLetter(parsed.Scheme) {
		path = uri
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	// file:///C:/x parses to /C:/x
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

// PathToURI converts a local path to a file URI.
func PathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return u.String()
}

// Scheme returns the scheme of uri, "file" for bare paths.
func Scheme(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme == "" || isDriveLetter(parsed.Scheme) {
		return "file"
	}
	return strings.ToLower(parsed.Scheme)
}

func isDriveLetter(scheme string) bool {
	return len(scheme) == 1
}
