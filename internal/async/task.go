// Package async provides fire-and-forget background task infrastructure
// for work that must not block a JSON-RPC response: generating an
// embedding after record_context returns, and periodically refreshing
// quality scores for contexts that were stored before embeddings existed.
package async

import (
	"context"
	"log/slog"
	"sync"
)

// TaskFunc is a unit of background work. It receives a context derived
// from the tracker's shutdown signal, not the originating request's
// context, so it keeps running after the request that spawned it returns.
type TaskFunc func(ctx context.Context) error

// Tracker runs named background tasks and lets a caller wait for all
// in-flight work to finish before the process exits, so a shutdown never
// drops a queued embedding silently.
type Tracker struct {
	logger *slog.Logger

	mu       sync.Mutex
	wg       sync.WaitGroup
	shutdown bool
	cancel   context.CancelFunc
	ctx      context.Context
}

// NewTracker creates a Tracker whose background context is derived from
// parent; canceling parent or calling Shutdown cancels every running task.
func NewTracker(parent context.Context, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Tracker{logger: logger, ctx: ctx, cancel: cancel}
}

// Go launches fn in a new goroutine tracked by the Tracker. It is a
// no-op once Shutdown has been called, so late-arriving ingest calls
// don't spawn work that will never be waited on.
func (t *Tracker) Go(name string, fn TaskFunc) {
	t.mu.Lock()
	if t.shutdown {
		t.mu.Unlock()
		t.logger.Warn("background task dropped during shutdown", slog.String("task", name))
		return
	}
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		if err := fn(t.ctx); err != nil && t.ctx.Err() == nil {
			t.logger.Warn("background task failed", slog.String("task", name), slog.String("error", err.Error()))
		}
	}()
}

// Shutdown cancels every running task's context and blocks until they
// all return, up to ctx's deadline.
func (t *Tracker) Shutdown(ctx context.Context) {
	t.mu.Lock()
	t.shutdown = true
	t.mu.Unlock()

	t.cancel()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		t.logger.Warn("shutdown deadline exceeded waiting for background tasks")
	}
}
