package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_GetOrCreateProject_ReusesByPath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p1, err := s.GetOrCreateProject(ctx, "demo", "/tmp/demoproj", "go", "")
	require.NoError(t, err)

	p2, err := s.GetOrCreateProject(ctx, "demo", "/tmp/demoproj", "go", "")
	require.NoError(t, err)

	assert.Equal(t, p1.ID, p2.ID)
}

func TestSQLiteStore_ProjectNotFound_ReturnsNilNotError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.GetProjectByID(ctx, "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSQLiteStore_SessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	proj, err := s.GetOrCreateProject(ctx, "demo", "/p", "", "")
	require.NoError(t, err)

	sess, err := s.CreateSession(ctx, proj.ID, "demo - Main Session", "test-tool", nil)
	require.NoError(t, err)
	assert.Equal(t, SessionStatusActive, sess.Status)

	require.NoError(t, s.EndSession(ctx, sess.ID))
	ended, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, SessionStatusEnded, ended.Status)
	assert.NotNil(t, ended.EndedAt)

	reactivated, err := s.ReactivateSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, reactivated.ID, "reactivation must keep the original id")
	assert.Equal(t, SessionStatusActive, reactivated.Status)
}

func TestSQLiteStore_MainSession_IsEarliestAndReactivates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	proj, err := s.GetOrCreateProject(ctx, "demo", "/p", "", "")
	require.NoError(t, err)

	first, err := s.CreateSession(ctx, proj.ID, "first", "tool", nil)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = s.CreateSession(ctx, proj.ID, "second", "tool", nil)
	require.NoError(t, err)

	require.NoError(t, s.EndSession(ctx, first.ID))

	main, err := s.GetMainSession(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, main.ID)
	assert.Equal(t, SessionStatusActive, main.Status, "main session reactivates on reuse")
}

func TestSQLiteStore_ContextCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	proj, err := s.GetOrCreateProject(ctx, "demo", "/p", "", "")
	require.NoError(t, err)
	sess, err := s.CreateSession(ctx, proj.ID, "main", "tool", nil)
	require.NoError(t, err)

	c := &Context{
		SessionID:    sess.ID,
		Type:         ContextTypeCode,
		Content:      "fixed the auth bug",
		Tags:         []string{"auth"},
		QualityScore: 1.5, // out of range on purpose
	}
	require.NoError(t, s.CreateContext(ctx, c))
	assert.LessOrEqual(t, c.QualityScore, 1.0, "quality_score must be clamped to [0,1]")

	got, err := s.GetContextByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.SessionID)
	assert.Equal(t, []string{"auth"}, got.Tags)

	require.NoError(t, s.DeleteContext(ctx, c.ID))
	_, err = s.GetContextByID(ctx, c.ID)
	assert.Error(t, err, "get after delete must return NotFound")
}

func TestSQLiteStore_DeleteSession_CascadesToContextsAndFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	proj, err := s.GetOrCreateProject(ctx, "demo", "/p", "", "")
	require.NoError(t, err)
	sess, err := s.CreateSession(ctx, proj.ID, "main", "tool", nil)
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 3; i++ {
		c := &Context{SessionID: sess.ID, Type: ContextTypeCode, Content: "x"}
		require.NoError(t, s.CreateContext(ctx, c))
		require.NoError(t, s.AddContextFiles(ctx, c.ID, []ContextFile{
			{FilePath: "a.go", ChangeType: ChangeTypeModify},
			{FilePath: "b.go", ChangeType: ChangeTypeModify},
		}))
		ids = append(ids, c.ID)
	}

	require.NoError(t, s.DeleteSession(ctx, sess.ID))

	for _, id := range ids {
		_, err := s.GetContextByID(ctx, id)
		assert.Error(t, err)

		files, err := s.ContextFilesByContext(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, files)
	}
}

func TestSQLiteStore_UpdateContext_NeverTouchesEmbedding(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	proj, err := s.GetOrCreateProject(ctx, "demo", "/p", "", "")
	require.NoError(t, err)
	sess, err := s.CreateSession(ctx, proj.ID, "main", "tool", nil)
	require.NoError(t, err)

	c := &Context{SessionID: sess.ID, Type: ContextTypeCode, Content: "v1"}
	require.NoError(t, s.CreateContext(ctx, c))
	require.NoError(t, s.UpdateContextEmbedding(ctx, c.ID, []float32{1, 0, 0}, "[1,0,0]", "v1", "static"))

	newContent := "v2"
	require.NoError(t, s.UpdateContext(ctx, c.ID, ContextUpdate{Content: &newContent}))

	got, err := s.GetContextByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)
	assert.Equal(t, []float32{1, 0, 0}, got.Embedding, "content update must not disturb the embedding")
}

func TestSQLiteStore_ContextsForVectorSearch_OnlyReturnsEmbedded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	proj, err := s.GetOrCreateProject(ctx, "demo", "/p", "", "")
	require.NoError(t, err)
	sess, err := s.CreateSession(ctx, proj.ID, "main", "tool", nil)
	require.NoError(t, err)

	withVec := &Context{SessionID: sess.ID, Type: ContextTypeCode, Content: "has embedding"}
	require.NoError(t, s.CreateContext(ctx, withVec))
	require.NoError(t, s.UpdateContextEmbedding(ctx, withVec.ID, []float32{0.5, 0.5}, "[]", "v1", "static"))

	without := &Context{SessionID: sess.ID, Type: ContextTypeCode, Content: "no embedding yet"}
	require.NoError(t, s.CreateContext(ctx, without))

	rows, err := s.ContextsForVectorSearch(ctx, proj.ID, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, withVec.ID, rows[0].ID)
}

func TestSQLiteStore_EmptyProjects(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.GetOrCreateProject(ctx, "empty", "/empty", "", "")
	require.NoError(t, err)

	nonEmpty, err := s.GetOrCreateProject(ctx, "full", "/full", "", "")
	require.NoError(t, err)
	sess, err := s.CreateSession(ctx, nonEmpty.ID, "main", "tool", nil)
	require.NoError(t, err)
	require.NoError(t, s.CreateContext(ctx, &Context{SessionID: sess.ID, Type: ContextTypeCode, Content: "x"}))

	candidates, err := s.EmptyProjects(ctx)
	require.NoError(t, err)

	var ids []string
	for _, p := range candidates {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, empty.ID)
	assert.NotContains(t, ids, nonEmpty.ID)
}

func TestSQLiteStore_RecordSearchHit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	proj, err := s.GetOrCreateProject(ctx, "demo", "/p", "", "")
	require.NoError(t, err)
	sess, err := s.CreateSession(ctx, proj.ID, "main", "tool", nil)
	require.NoError(t, err)

	c := &Context{SessionID: sess.ID, Type: ContextTypeCode, Content: "x", Metadata: map[string]any{}}
	require.NoError(t, s.CreateContext(ctx, c))

	require.NoError(t, s.RecordSearchHit(ctx, c.ID))
	require.NoError(t, s.RecordSearchHit(ctx, c.ID))

	got, err := s.GetContextByID(ctx, c.ID)
	require.NoError(t, err)
	metrics, ok := got.Metadata["quality_metrics"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, metrics["last_accessed"])
}

func TestSQLiteStore_State(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetState(ctx, StateKeyEmbeddingModel)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetState(ctx, StateKeyEmbeddingModel, "static"))
	value, ok, err := s.GetState(ctx, StateKeyEmbeddingModel)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "static", value)
}

func TestSQLiteStore_IsConnected_FalseAfterClose(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "memory.db"))
	require.NoError(t, err)

	assert.True(t, s.IsConnected())
	require.NoError(t, s.Close())
	assert.False(t, s.IsConnected())

	_, err = s.GetProjectByID(context.Background(), "x")
	assert.Error(t, err, "writes/reads after close must fail fast")
}
