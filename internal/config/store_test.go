package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(root string) *Store {
	return NewStore(
		WithRoot(root),
		WithGetenv(func(string) string { return "" }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestStorePrecedence(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[lint]\nseverity = \"stern\"\nhighlightMode = \"word\"\n")
	doc := filepath.Join(root, "bin", "tool.pl")

	store := newTestStore(root)
	s := store.Settings(doc)
	assert.Equal(t, "stern", s.Lint.Severity)
	assert.Equal(t, HighlightWord, s.Lint.HighlightMode)

	severity := "brutal"
	store.SetEditorOverlay(&Overlay{Lint: &LintOverlay{Severity: &severity}})
	s = store.Settings(doc)
	assert.Equal(t, "brutal", s.Lint.Severity)
	assert.Equal(t, HighlightWord, s.Lint.HighlightMode)
}

func TestStoreSanitizesInvalidEditorSettings(t *testing.T) {
	store := newTestStore(t.TempDir())
	mode := "sentence"
	store.SetEditorOverlay(&Overlay{Lint: &LintOverlay{HighlightMode: &mode}})
	s := store.Settings("")
	assert.Equal(t, HighlightLine, s.Lint.HighlightMode)
}

func TestStoreInvalidate(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "[syntax]\nexec = \"perl5.36\"\n")
	doc := filepath.Join(root, "x.pl")
	store := newTestStore(root)

	changes := 0
	store.OnChange(func() { changes++ })

	assert.Equal(t, "perl5.36", store.Settings(doc).Syntax.Exec)
	assert.Equal(t, []string{path}, store.Files())

	require.NoError(t, os.WriteFile(path, []byte("[syntax]\nexec = \"perl5.40\"\n"), 0o644))
	assert.Equal(t, "perl5.36", store.Settings(doc).Syntax.Exec, "cached until invalidated")

	store.Invalidate(path)
	assert.Equal(t, "perl5.40", store.Settings(doc).Syntax.Exec)
	assert.Equal(t, 1, changes)
}

func TestStoreIgnoresBrokenFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[lint\n")
	s := newTestStore(root).Settings(filepath.Join(root, "a.pl"))
	assert.Equal(t, Defaults(), s)
}

func TestWatcherInvalidatesOnConfigEvents(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "[lint]\nseverity = \"cruel\"\n")
	store := newTestStore(root)
	_ = store.Settings(filepath.Join(root, "a.pl"))

	w, err := NewWatcher(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer w.watcher.Close()

	changes := 0
	store.OnChange(func() { changes++ })

	w.handleEvent(fsnotify.Event{Name: filepath.Join(root, "other.txt"), Op: fsnotify.Write})
	assert.Equal(t, 0, changes)

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Chmod})
	assert.Equal(t, 0, changes)

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	assert.Equal(t, 1, changes)
	assert.Empty(t, store.Files())
}

func TestStoreCheckReportsInvalidSettings(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[lint]\nseverity = \"furious\"\n")
	store := newTestStore(root)
	doc := filepath.Join(root, "a.pl")

	_, err := store.Check(doc)
	require.ErrorIs(t, err, ErrInvalidSeverity)

	s := store.Settings(doc)
	assert.Equal(t, Defaults().Lint.Severity, s.Lint.Severity)
}
