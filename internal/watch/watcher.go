package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file was deleted.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is a single filesystem change below a watched project root.
type FileEvent struct {
	// Path is relative to the project root passed to Watch.
	Path      string
	Operation Operation
}

// Sink receives file events from a Watcher. Implementations live outside
// this package (the codebase-indexing tool); this package only produces
// events, it never writes FileIndex rows itself.
type Sink interface {
	OnFileEvent(ctx context.Context, projectRoot string, event FileEvent)
}

// Watcher watches a project tree with fsnotify and forwards events to a
// Sink. There is no polling fallback: if fsnotify is unavailable on the
// host, the external indexer falls back to its own periodic full scan.
type Watcher struct {
	logger         *slog.Logger
	ignorePatterns []string

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	stopped bool
}

// NewWatcher creates a Watcher. ignorePatterns are exact base names
// (".git", "node_modules", ".devmind"): directories with such a name are
// skipped during the recursive walk, and events whose path has such a
// base name are filtered out.
func NewWatcher(logger *slog.Logger, ignorePatterns []string) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{logger: logger, ignorePatterns: ignorePatterns}
}

// Watch begins watching root recursively and forwards every accepted
// event to sink until ctx is canceled or Stop is called.
func (w *Watcher) Watch(ctx context.Context, root string, sink Sink) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()
	defer fsw.Close()

	if err := w.addRecursive(absRoot); err != nil {
		return fmt.Errorf("add directories to watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, absRoot, event, sink)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

// Stop closes the underlying fsnotify watcher, ending any in-flight Watch call.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.fsw == nil {
		return nil
	}
	w.stopped = true
	return w.fsw.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.isIgnored(path) {
			return filepath.SkipDir
		}
		w.mu.Lock()
		fsw := w.fsw
		w.mu.Unlock()
		if fsw == nil {
			return nil
		}
		return fsw.Add(path)
	})
}

func (w *Watcher) isIgnored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.ignorePatterns {
		if base == pattern {
			return true
		}
	}
	return false
}

func (w *Watcher) handleEvent(ctx context.Context, root string, event fsnotify.Event, sink Sink) {
	if w.isIgnored(event.Name) {
		return
	}
	rel, err := filepath.Rel(root, event.Name)
	if err != nil {
		rel = event.Name
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		op = OpDelete
	default:
		return
	}

	sink.OnFileEvent(ctx, root, FileEvent{Path: rel, Operation: op})
}
