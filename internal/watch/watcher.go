// Package watch reports debounced changes to dataset files.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

// Config configures the watcher.
type Config struct {
	// Patterns are the doublestar patterns of the files to report.
	Patterns []string

	// Debounce is how long to wait for more changes before reporting.
	Debounce time.Duration

	// Logger for logging events.
	Logger *slog.Logger
}

// Batch is one debounced set of changed files.
type Batch struct {
	// Paths are the changed files, sorted.
	Paths []string
	// Removed is true if any of them was removed or renamed away.
	Removed bool
}

// Watcher watches the directories under the pattern bases.
type Watcher struct {
	config  Config
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op
}

// New creates a watcher and registers every directory under the pattern
// bases. Changes made after New returns are reported by Run.
func New(config Config) (*Watcher, error) {
	if len(config.Patterns) == 0 {
		return nil, fmt.Errorf("watch: no patterns")
	}

	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		config:  config,
		watcher: fsw,
		logger:  logger,
		pending: make(map[string]fsnotify.Op),
	}

	for _, base := range bases(config.Patterns) {
		if err := w.addWatchesRecursive(base); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", base, err)
		}
	}

	return w, nil
}

// Matches reports whether path is selected by one of the patterns.
func (w *Watcher) Matches(path string) bool {
	for _, p := range w.config.Patterns {
		if ok, _ := doublestar.PathMatch(filepath.Clean(p), filepath.Clean(path)); ok {
			return true
		}
	}

	return false
}

// Run delivers batches to onChange until ctx is done or the watcher is
// closed. A failing onChange is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context, Batch) error) error {
	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()

	defer timer.Stop()

	w.logger.Info("File watcher started",
		"patterns", w.config.Patterns,
		"debounce", w.config.Debounce)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if w.handleFSEvent(event) {
				timer.Reset(w.config.Debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}

			w.logger.Error("Watcher error", "error", err)

		case <-timer.C:
			batch, ok := w.flushPending()
			if !ok {
				continue
			}

			w.logger.Debug("Dataset files changed", "paths", batch.Paths)

			if err := onChange(ctx, batch); err != nil {
				w.logger.Error("Change handler failed", "error", err)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// handleFSEvent records a matching change and reports whether it did.
func (w *Watcher) handleFSEvent(event fsnotify.Event) bool {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addWatchesRecursive(path); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
			}

			return false
		}
	}

	if !w.Matches(path) {
		return false
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("File change detected", "path", path, "op", event.Op.String())

	return true
}

func (w *Watcher) flushPending() (Batch, bool) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if len(w.pending) == 0 {
		return Batch{}, false
	}

	var batch Batch

	for path, op := range w.pending {
		batch.Paths = append(batch.Paths, path)
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			batch.Removed = true
		}
	}

	slices.Sort(batch.Paths)
	w.pending = make(map[string]fsnotify.Op)

	return batch, true
}

// addWatchesRecursive adds watches to root and every non-hidden directory below it.
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			return err
		}

		w.logger.Debug("Watching directory", "path", path)

		return nil
	})
}

// bases returns the static directory prefix of each pattern, deduplicated.
func bases(patterns []string) []string {
	var out []string

	for _, p := range patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(filepath.Clean(p)))
		base = filepath.FromSlash(base)

		if !slices.Contains(out, base) {
			out = append(out, base)
		}
	}

	return out
}
