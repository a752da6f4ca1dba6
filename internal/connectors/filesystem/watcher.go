package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phonetonote/paperweight/internal/core/ports/driven"
	"github.com/phonetonote/paperweight/internal/logger"
)

// Verify interface compliance.
var _ driven.SourceWatcher = (*Watcher)(nil)

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// DefaultDebounce is how long changes to a file are collected before it is read.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports text documents under a root as they are created or written.
type Watcher struct {
	scanner  *Scanner
	root     string
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool

	pendingMu sync.Mutex
	pending   map[string]struct{}
}

// NewWatcher creates a watcher for root. The scanner decides which files
// are recognised and how they are read.
func NewWatcher(scanner *Scanner, root string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		scanner:  scanner,
		root:     root,
		debounce: debounce,
		pending:  make(map[string]struct{}),
	}
}

// Watch starts watching and returns the channel of changed documents.
func (w *Watcher) Watch(ctx context.Context) (<-chan driven.ScannedFile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWatcherClosed
	}
	if w.watcher != nil {
		return nil, errors.New("watcher already started")
	}

	root, err := ResolveRoot(w.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a readable directory", root)
	}
	w.root = root

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.addRecursive(fsw, root); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	w.watcher = fsw

	out := make(chan driven.ScannedFile, scanBuffer)
	go w.processEvents(ctx, fsw, out)

	logger.Info("watching %s", root)
	return out, nil
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// addRecursive adds watches to every visible, non-excluded directory.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("watch %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (isHidden(d.Name()) || w.scanner.excluded(w.root, path)) {
			return fs.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			logger.Warn("watch %s: %v", path, err)
		} else {
			logger.Debug("watching directory %s", path)
		}
		return nil
	})
}

// processEvents collects events and flushes them on every debounce tick.
func (w *Watcher) processEvents(ctx context.Context, fsw *fsnotify.Watcher, out chan<- driven.ScannedFile) {
	defer close(out)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleFsEvent(fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Error("watcher: %v", err)

		case <-ticker.C:
			if !w.flushPending(ctx, out) {
				return
			}
		}
	}
}

// handleFsEvent records a create or write of a recognised document.
func (w *Watcher) handleFsEvent(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	path := event.Name
	if isHidden(filepath.Base(path)) || w.scanner.excluded(w.root, path) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addRecursive(fsw, path); err != nil {
				logger.Warn("watch %s: %v", path, err)
			}
			return
		}
	}

	if !w.scanner.Recognises(path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = struct{}{}
	w.pendingMu.Unlock()
	logger.Debug("change detected: %s (%s)", path, event.Op)
}

// flushPending reads every pending document and sends it.
// Returns false when ctx is cancelled.
func (w *Watcher) flushPending(ctx context.Context, out chan<- driven.ScannedFile) bool {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return true
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		select {
		case out <- w.scanner.Read(path):
		case <-ctx.Done():
			return false
		}
	}
	return true
}
