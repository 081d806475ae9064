package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Provider returns the settings that apply to the document at path.
// Implementations must be safe for concurrent use.
type Provider interface {
	Settings(path string) Settings
}

// Static is a Provider that always returns the same settings.
type Static Settings

func (s Static) Settings(string) Settings {
	return Settings(s).Clone()
}

// Store resolves settings per document: defaults, nearest perltoolbox.toml,
// environment, then editor settings. Parsed files are cached until
// invalidated.
type Store struct {
	mu       sync.RWMutex
	root     string
	editor   *Overlay
	dirs     map[string]string   // document dir -> config file ("" when none)
	files    map[string]*Overlay // config file -> parsed overlay (nil when broken)
	getenv   func(string) string
	logger   *slog.Logger
	onChange []func()
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRoot sets the workspace root used for documents outside any project.
func WithRoot(root string) StoreOption {
	return func(s *Store) {
		s.root = root
	}
}

// WithGetenv replaces os.Getenv, mostly for tests.
func WithGetenv(getenv func(string) string) StoreOption {
	return func(s *Store) {
		s.getenv = getenv
	}
}

// WithLogger sets the logger used for configuration warnings.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		dirs:   make(map[string]string),
		files:  make(map[string]*Overlay),
		getenv: os.Getenv,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRoot replaces the workspace root and drops cached lookups.
func (s *Store) SetRoot(root string) {
	s.mu.Lock()
	s.root = root
	s.dirs = make(map[string]string)
	s.mu.Unlock()
}

// Root returns the workspace root.
func (s *Store) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// SetEditorOverlay replaces the settings pushed by the editor.
func (s *Store) SetEditorOverlay(o *Overlay) {
	s.mu.Lock()
	s.editor = o
	s.mu.Unlock()
	s.notify()
}

// OnChange registers fn to run after settings change.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// Invalidate forgets everything cached about the config file at path.
func (s *Store) Invalidate(path string) {
	s.mu.Lock()
	delete(s.files, path)
	for dir, file := range s.dirs {
		if file == path || file == "" {
			delete(s.dirs, dir)
		}
	}
	s.mu.Unlock()
	s.notify()
}

// Files returns the config files loaded so far, sorted.
func (s *Store) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.files))
	for path := range s.files {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Settings implements Provider. Invalid values are logged and replaced by
// their defaults so a bad editor setting never stops checking.
func (s *Store) Settings(path string) Settings {
	settings := s.resolve(path)
	if err := settings.Validate(); err != nil {
		s.logger.Warn("invalid settings, using defaults for the offending keys",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		settings = settings.Sanitize()
	}
	return settings
}

// Check resolves the settings for path like Settings but returns validation
// errors instead of falling back to defaults.
func (s *Store) Check(path string) (Settings, error) {
	settings := s.resolve(path)
	return settings, settings.Validate()
}

func (s *Store) resolve(path string) Settings {
	settings := Defaults()
	if overlay := s.fileOverlay(path); overlay != nil {
		settings = overlay.Apply(settings)
	}
	settings = ApplyEnv(settings, s.getenv)

	s.mu.RLock()
	editor := s.editor
	s.mu.RUnlock()
	return editor.Apply(settings)
}

func (s *Store) fileOverlay(path string) *Overlay {
	dir := ""
	if path != "" {
		dir = filepath.Dir(path)
	}
	s.mu.RLock()
	root := s.root
	if dir == "" {
		dir = root
	}
	file, known := s.dirs[dir]
	var overlay *Overlay
	var loaded bool
	if known && file != "" {
		overlay, loaded = s.files[file]
	}
	s.mu.RUnlock()

	if known && (file == "" || loaded) {
		return overlay
	}
	if !known {
		file = s.lookup(dir, root)
	}
	if file != "" {
		var err error
		overlay, err = LoadFile(file)
		if err != nil {
			s.logger.Warn("ignoring config file",
				slog.String("file", file),
				slog.String("error", err.Error()),
			)
			overlay = nil
		}
	}

	s.mu.Lock()
	s.dirs[dir] = file
	if file != "" {
		s.files[file] = overlay
	}
	s.mu.Unlock()
	return overlay
}

func (s *Store) lookup(dir, root string) string {
	for _, start := range []string{dir, root} {
		if start == "" {
			continue
		}
		found, ok, err := FindFile(start)
		if err != nil {
			s.logger.Debug("config lookup failed", slog.String("dir", start), slog.String("error", err.Error()))
			continue
		}
		if ok {
			return found
		}
	}
	return ""
}

func (s *Store) notify() {
	s.mu.RLock()
	callbacks := append([]func(){}, s.onChange...)
	s.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
}
