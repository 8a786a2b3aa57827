package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stretchr/testify/assert"

	"github.com/devmind-dev/memcore/internal/store"
)

func newFileInferTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	st, err := store.NewSQLiteStore(filepath.Join(dir, "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestInferFilesChanged_PromotesOnMultipleConfidentMatches(t *testing.T) {
	st := newFileInferTestStore(t)
	ctx := context.Background()

	project, err := st.GetOrCreateProject(ctx, "demo", "/tmp/demo", "go", "")
	require.NoError(t, err)
	session, err := st.CreateSession(ctx, project.ID, "main", "", nil)
	require.NoError(t, err)

	first := &store.Context{SessionID: session.ID, Type: store.ContextTypeCodeModify, Content: "touched handler.go", FilePath: "internal/api/handler.go"}
	require.NoError(t, st.CreateContext(ctx, first))
	second := &store.Context{SessionID: session.ID, Type: store.ContextTypeCodeModify, Content: "touched router.go", FilePath: "internal/api/router.go"}
	require.NoError(t, st.CreateContext(ctx, second))

	files := inferFilesChanged(ctx, st, session.ID, "updated internal/api/handler.go and internal/api/router.go to add logging")
	require.Len(t, files, 2)
	paths := []string{files[0].FilePath, files[1].FilePath}
	assert.Contains(t, paths, "internal/api/handler.go")
	assert.Contains(t, paths, "internal/api/router.go")
}

func TestInferFilesChanged_NoPromotionOnSingleMatch(t *testing.T) {
	st := newFileInferTestStore(t)
	ctx := context.Background()

	project, err := st.GetOrCreateProject(ctx, "demo", "/tmp/demo2", "go", "")
	require.NoError(t, err)
	session, err := st.CreateSession(ctx, project.ID, "main", "", nil)
	require.NoError(t, err)

	first := &store.Context{SessionID: session.ID, Type: store.ContextTypeCodeModify, Content: "touched handler.go", FilePath: "internal/api/handler.go"}
	require.NoError(t, st.CreateContext(ctx, first))

	files := inferFilesChanged(ctx, st, session.ID, "updated internal/api/handler.go again")
	assert.Nil(t, files)
}

func TestInferFilesChanged_NoTokensInContent(t *testing.T) {
	st := newFileInferTestStore(t)
	files := inferFilesChanged(context.Background(), st, "missing-session", "just some plain text with no paths")
	assert.Nil(t, files)
}
