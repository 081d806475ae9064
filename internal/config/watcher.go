package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates a Store when a loaded perltoolbox.toml changes on disk.
// Directories are watched rather than files so editors that save by rename
// are still noticed.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu      sync.Mutex
	watched map[string]bool
}

func NewWatcher(store *Store, logger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		store:   store,
		watcher: w,
		logger:  logger,
		watched: make(map[string]bool),
	}, nil
}

// Sync starts watching the workspace root and the directories of every config
// file the store has loaded so far.
func (w *Watcher) Sync() {
	w.mu.Lock()
	defer w.mu.Unlock()
	dirs := make([]string, 0, 4)
	if root := w.store.Root(); root != "" {
		dirs = append(dirs, root)
	}
	for _, file := range w.store.Files() {
		dirs = append(dirs, filepath.Dir(file))
	}
	for _, dir := range dirs {
		if w.watched[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Debug("failed to watch config dir", slog.String("dir", dir), slog.String("error", err.Error()))
			continue
		}
		w.watched[dir] = true
	}
}

// Run processes events until ctx is done. Run it in its own goroutine.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", slog.String("error", err.Error()))
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != FileName {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	w.logger.Info("config file changed", slog.String("file", event.Name), slog.String("op", event.Op.String()))
	w.store.Invalidate(event.Name)
}
