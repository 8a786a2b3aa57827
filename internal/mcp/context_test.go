package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleRecordContext_StoresAndReturnsID(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleRecordContext(ctx, nil, RecordContextInput{
		Content:     "fixed a bug where the retry loop never backed off after a timeout",
		ProjectPath: t.TempDir(),
	})
	require.NoError(t, err)
	assert.True(t, out.Stored)
	assert.NotEmpty(t, out.ContextID)
}

func TestHandleRecordContext_RequiresContent(t *testing.T) {
	s, _ := newTestServer(t)
	_, _, err := s.handleRecordContext(context.Background(), nil, RecordContextInput{ProjectPath: t.TempDir()})
	require.Error(t, err)
}

func TestHandleGetContext_RoundTrips(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, recorded, err := s.handleRecordContext(ctx, nil, RecordContextInput{
		Content:     "the retry loop's exponential backoff behavior",
		ProjectPath: t.TempDir(),
		Type:        "documentation",
	})
	require.NoError(t, err)

	_, out, err := s.handleGetContext(ctx, nil, GetContextInput{ContextIDs: []string{recorded.ContextID}})
	require.NoError(t, err)
	require.Len(t, out.Contexts, 1)
	assert.Equal(t, recorded.ContextID, out.Contexts[0].ContextID)
}

func TestHandleGetContext_RequiresIDs(t *testing.T) {
	s, _ := newTestServer(t)
	_, _, err := s.handleGetContext(context.Background(), nil, GetContextInput{})
	require.Error(t, err)
}

func TestHandleListContexts_RequiresAScope(t *testing.T) {
	s, _ := newTestServer(t)
	_, _, err := s.handleListContexts(context.Background(), nil, ListContextsInput{})
	require.Error(t, err)
}

func TestHandleListContexts_ScopedByProjectPath(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	dir := t.TempDir()

	_, recorded, err := s.handleRecordContext(ctx, nil, RecordContextInput{
		Content:     "the connection pool now reuses idle sockets",
		ProjectPath: dir,
		Type:        "code_refactor",
	})
	require.NoError(t, err)

	_, out, err := s.handleListContexts(ctx, nil, ListContextsInput{ProjectPath: dir})
	require.NoError(t, err)
	require.Len(t, out.Contexts, 1)
	assert.Equal(t, recorded.ContextID, out.Contexts[0].ContextID)
}

func TestHandleListContexts_UnknownProjectReturnsEmpty(t *testing.T) {
	s, _ := newTestServer(t)
	_, out, err := s.handleListContexts(context.Background(), nil, ListContextsInput{ProjectPath: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, out.Contexts)
}

func TestHandleDeleteContext_RemovesRow(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, recorded, err := s.handleRecordContext(ctx, nil, RecordContextInput{
		Content:     "the legacy cache warmup job is gone from the boot sequence",
		ProjectPath: t.TempDir(),
		Type:        "code_delete",
	})
	require.NoError(t, err)

	_, out, err := s.handleDeleteContext(ctx, nil, DeleteContextInput{ContextID: recorded.ContextID})
	require.NoError(t, err)
	assert.True(t, out.Deleted)

	_, _, err = s.handleGetContext(ctx, nil, GetContextInput{ContextIDs: []string{recorded.ContextID}})
	require.Error(t, err)
}

func TestHandleUpdateContext_ChangesContentWithoutTouchingEmbedding(t *testing.T) {
	s, st := newTestServer(t)
	ctx := context.Background()

	_, recorded, err := s.handleRecordContext(ctx, nil, RecordContextInput{
		Content:     "the retry budget resets every five minutes",
		ProjectPath: t.TempDir(),
		Type:        "learning",
	})
	require.NoError(t, err)

	before, err := st.GetContextByID(ctx, recorded.ContextID)
	require.NoError(t, err)

	_, out, err := s.handleUpdateContext(ctx, nil, UpdateContextInput{
		ContextID: recorded.ContextID,
		Content:   "noted that the retry budget resets every ten minutes",
		Tags:      []string{"retry", "budget"},
	})
	require.NoError(t, err)
	assert.True(t, out.Updated)

	after, err := st.GetContextByID(ctx, recorded.ContextID)
	require.NoError(t, err)
	assert.Equal(t, "noted that the retry budget resets every ten minutes", after.Content)
	assert.Equal(t, []string{"retry", "budget"}, after.Tags)
	assert.Equal(t, before.EmbeddingModel, after.EmbeddingModel)
}
