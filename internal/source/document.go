package source

import (
	"os"
	"path/filepath"
	"strings"
)

// LanguagePerl is the language identifier editors use for Perl buffers.
const LanguagePerl = "perl"

// Document is one editor buffer (or file on disk) at a given version.
type Document struct {
	URI        string
	Path       string
	LanguageID string
	Version    int
	Text       string
}

// NewDocument builds a document for uri. Path is derived from the URI when it
// uses the file scheme.
func NewDocument(uri, languageID, text string, version int) *Document {
	return &Document{
		URI:        uri,
		Path:       URIToPath(uri),
		LanguageID: languageID,
		Version:    version,
		Text:       text,
	}
}

// Load reads a file from disk into a Document. The language is detected from
// the extension, then from a perl shebang line.
func Load(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return &Document{
		URI:        PathToURI(abs),
		Path:       abs,
		LanguageID: DetectLanguage(abs, string(content)),
		Text:       string(content),
	}, nil
}

// Scheme returns the URI scheme, "file" when the URI has none.
func (d *Document) Scheme() string {
	return Scheme(d.URI)
}

// Basename is the file name used to derive temp file names.
func (d *Document) Basename() string {
	if d.Path != "" {
		return filepath.Base(d.Path)
	}
	name := d.URI
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "untitled"
	}
	return name
}

// Dir is the directory holding the document, empty for non-file documents.
func (d *Document) Dir() string {
	if d.Path == "" {
		return ""
	}
	return filepath.Dir(d.Path)
}

// Checkable reports whether the document should be handed to the checkers:
// only Perl buffers, never git revisions shown by the editor.
func (d *Document) Checkable() bool {
	if d == nil {
		return false
	}
	if d.Scheme() == "git" {
		return false
	}
	return d.LanguageID == LanguagePerl
}

// LanguageFromPath maps a file extension to a language identifier.
func LanguageFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pl", ".pm", ".t", ".psgi", ".cgi":
		return LanguagePerl
	default:
		return ""
	}
}

// DetectLanguage is LanguageFromPath, falling back to a "#!...perl" first
// line for extensionless scripts.
func DetectLanguage(path, text string) string {
	if lang := LanguageFromPath(path); lang != "" {
		return lang
	}
	first, _, _ := strings.Cut(text, "\n")
	if !strings.HasPrefix(first, "#!") {
		return ""
	}
	for _, field := range strings.Fields(first[2:]) {
		if name := filepath.Base(field); name == "perl" || strings.HasPrefix(name, "perl5") {
			return LanguagePerl
		}
	}
	return ""
}
