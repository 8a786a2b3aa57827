package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []FileEvent
}

func (s *recordingSink) OnFileEvent(_ context.Context, _ string, event FileEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) snapshot() []FileEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FileEvent, len(s.events))
	copy(out, s.events)
	return out
}

func TestWatcher_EmitsCreateEvent(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(nil, []string{".git", ".devmind"})
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = w.Watch(ctx, dir, sink)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.go"), []byte("package main"), 0o644))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sink.snapshot()) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	<-done

	events := sink.snapshot()
	require.NotEmpty(t, events)
	assert.Equal(t, "new.go", events[0].Path)
}

func TestWatcher_IgnoresConfiguredDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".devmind"), 0o755))

	w := NewWatcher(nil, []string{".devmind"})
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = w.Watch(ctx, dir, sink)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".devmind", "memory.db"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)

	cancel()
	<-done

	assert.Empty(t, sink.snapshot())
}
