package mcp

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmind-dev/memcore/internal/async"
	"github.com/devmind-dev/memcore/internal/embed"
	"github.com/devmind-dev/memcore/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.NewSQLiteStore(filepath.Join(dir, "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	embedder := embed.NewStaticEmbedder(32)
	tasks := async.NewTracker(context.Background(), slog.Default())
	t.Cleanup(func() { tasks.Shutdown(context.Background()) })

	s, err := New(st, embedder, tasks, slog.Default())
	require.NoError(t, err)
	return s, st
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestNew_NilEmbedderDegradesGracefully(t *testing.T) {
	dir := t.TempDir()
	st, err := store.NewSQLiteStore(filepath.Join(dir, "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s, err := New(st, nil, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, s)

	ctx := context.Background()
	_, out, err := s.handleGetMemoryStatus(ctx, nil, GetMemoryStatusInput{})
	require.NoError(t, err)
	assert.False(t, out.EmbedderAvailable)
	assert.Empty(t, out.EmbedderModel)
}
