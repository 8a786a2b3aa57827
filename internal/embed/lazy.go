package embed

import (
	"context"
	"fmt"
	"sync"
)

// LazyEmbedder defers constructing the real embedder until the first call
// that needs it, and makes that construction idempotent: concurrent callers
// all block on the same attempt instead of racing to build (and possibly
// download) their own. A construction failure is cached and returned to
// every caller, including ones that arrive after the failure, rather than
// silently retried on each request.
//
// Serialization is two layers: sync.Once within the process, and a
// cross-process file lock for the rare case where the embedder's
// construction touches shared on-disk state (a downloaded model, a lock
// file Ollama itself respects).
type LazyEmbedder struct {
	build   func(ctx context.Context) (Embedder, error)
	lockDir string
	dims    int // reported before initialization completes

	once    sync.Once
	onceErr error

	mu    sync.RWMutex
	inner Embedder
}

// NewLazyEmbedder wraps build so it runs at most once. lockDir is where the
// cross-process initialization lock file lives; pass "" to skip the
// cross-process lock and rely on sync.Once alone. dimsHint is returned by
// Dimensions() before initialization completes.
func NewLazyEmbedder(lockDir string, dimsHint int, build func(ctx context.Context) (Embedder, error)) *LazyEmbedder {
	if dimsHint <= 0 {
		dimsHint = DefaultDimensions
	}
	return &LazyEmbedder{build: build, lockDir: lockDir, dims: dimsHint}
}

// Initialize triggers construction if it hasn't run yet, and blocks until
// whichever caller triggered it (possibly a concurrent one) finishes.
// Safe to call repeatedly; after the first call it's a cheap no-op returning
// the cached result.
func (l *LazyEmbedder) Initialize(ctx context.Context) error {
	l.once.Do(func() {
		if l.lockDir != "" {
			lock := NewFileLock(l.lockDir)
			if err := lock.Lock(); err != nil {
				l.onceErr = fmt.Errorf("failed to serialize embedder init: %w", err)
				return
			}
			defer func() { _ = lock.Unlock() }()
		}

		inner, err := l.build(ctx)
		if err != nil {
			l.onceErr = err
			return
		}

		l.mu.Lock()
		l.inner = inner
		l.dims = inner.Dimensions()
		l.mu.Unlock()
	})
	return l.onceErr
}

func (l *LazyEmbedder) ready() Embedder {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.inner
}

// Embed initializes on first use, then delegates.
func (l *LazyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := l.Initialize(ctx); err != nil {
		return nil, err
	}
	return l.ready().Embed(ctx, text)
}

// EmbedBatch initializes on first use, then delegates.
func (l *LazyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := l.Initialize(ctx); err != nil {
		return nil, err
	}
	return l.ready().EmbedBatch(ctx, texts)
}

// Dimensions returns the hinted width before initialization, and the real
// embedder's width afterward.
func (l *LazyEmbedder) Dimensions() int {
	if inner := l.ready(); inner != nil {
		return inner.Dimensions()
	}
	return l.dims
}

// ModelName returns "uninitialized" before the first successful Initialize.
func (l *LazyEmbedder) ModelName() string {
	if inner := l.ready(); inner != nil {
		return inner.ModelName()
	}
	return "uninitialized"
}

// Available reports false until initialization has succeeded.
func (l *LazyEmbedder) Available(ctx context.Context) bool {
	inner := l.ready()
	return inner != nil && inner.Available(ctx)
}

// Close releases the underlying embedder, if one was built.
func (l *LazyEmbedder) Close() error {
	if inner := l.ready(); inner != nil {
		return inner.Close()
	}
	return nil
}

var _ Embedder = (*LazyEmbedder)(nil)
