package retrieve

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmind-dev/memcore/internal/embed"
	"github.com/devmind-dev/memcore/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.SQLiteStore, *embed.StaticEmbedder) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.NewSQLiteStore(filepath.Join(dir, "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	embedder := embed.NewStaticEmbedder(32)
	return New(st, embedder, nil, nil), st, embedder
}

func seedEmbeddedContext(t *testing.T, ctx context.Context, st *store.SQLiteStore, embedder *embed.StaticEmbedder, sessionID, content string) *store.Context {
	t.Helper()
	c := &store.Context{SessionID: sessionID, Type: store.ContextTypeCode, Content: content, QualityScore: 0.8}
	require.NoError(t, st.CreateContext(ctx, c))
	vec, err := embedder.Embed(ctx, content)
	require.NoError(t, err)
	require.NoError(t, st.UpdateContextEmbedding(ctx, c.ID, vec, content, "v1", embedder.ModelName()))
	return c
}

func TestSearch_EmptyCandidateSet_ReturnsExplanatoryMessage(t *testing.T) {
	e, _, _ := newTestEngine(t)
	resp, err := e.Search(context.Background(), Request{Query: "retry backoff loop"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.NotEmpty(t, resp.Message)
}

func TestSearch_FindsSimilarContext(t *testing.T) {
	e, st, embedder := newTestEngine(t)
	ctx := context.Background()

	project, err := st.GetOrCreateProject(ctx, "demo", "/tmp/retrieve-demo", "go", "")
	require.NoError(t, err)
	session, err := st.CreateSession(ctx, project.ID, "main", "", nil)
	require.NoError(t, err)

	seedEmbeddedContext(t, ctx, st, embedder, session.ID, "the retry loop now applies exponential backoff between attempts")
	seedEmbeddedContext(t, ctx, st, embedder, session.ID, "updated the README with install instructions")

	resp, err := e.Search(ctx, Request{Query: "retry loop exponential backoff", ProjectPath: "/tmp/retrieve-demo"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Contains(t, resp.Results[0].Content, "backoff")
}

func TestSearch_RespectsTypeFilter(t *testing.T) {
	e, st, embedder := newTestEngine(t)
	ctx := context.Background()

	project, err := st.GetOrCreateProject(ctx, "demo", "/tmp/retrieve-typed", "go", "")
	require.NoError(t, err)
	session, err := st.CreateSession(ctx, project.ID, "main", "", nil)
	require.NoError(t, err)

	content := "documented the retry loop's backoff behavior"
	codeCtx := &store.Context{SessionID: session.ID, Type: store.ContextTypeCode, Content: content}
	require.NoError(t, st.CreateContext(ctx, codeCtx))
	vec, err := embedder.Embed(ctx, content)
	require.NoError(t, err)
	require.NoError(t, st.UpdateContextEmbedding(ctx, codeCtx.ID, vec, content, "v1", embedder.ModelName()))

	resp, err := e.Search(ctx, Request{Query: "retry backoff", ProjectPath: "/tmp/retrieve-typed", Type: "documentation"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestSearch_FileIndexRowsProjectedAsCode(t *testing.T) {
	e, st, embedder := newTestEngine(t)
	ctx := context.Background()

	project, err := st.GetOrCreateProject(ctx, "demo", "/tmp/retrieve-index", "go", "")
	require.NoError(t, err)
	session, err := st.CreateSession(ctx, project.ID, "main", "", nil)
	require.NoError(t, err)

	content := "func ComputeBackoff(attempt int) time.Duration { return base * attempt }"
	vec, err := embedder.Embed(ctx, content)
	require.NoError(t, err)
	require.NoError(t, st.SaveFileIndexRow(ctx, &store.FileIndexRow{
		SessionID: session.ID, ProjectID: project.ID, FilePath: "backoff.go", Content: content, Embedding: vec,
	}))

	resp, err := e.Search(ctx, Request{Query: "compute backoff duration", ProjectPath: "/tmp/retrieve-index"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, store.ContextTypeCode, resp.Results[0].Type)
	assert.Equal(t, store.FileIndexQualityScore, resp.Results[0].QualityScore)
	assert.True(t, resp.Results[0].FromIndex)
}

func TestSearch_EmptyQuery_ReturnsError(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.Search(context.Background(), Request{Query: "  "})
	assert.Error(t, err)
}

func TestSearch_KeywordOnlyHitSurfacesWithoutEmbedding(t *testing.T) {
	e, st, _ := newTestEngine(t)
	ctx := context.Background()

	project, err := st.GetOrCreateProject(ctx, "demo", "/tmp/retrieve-keyword", "go", "")
	require.NoError(t, err)
	session, err := st.CreateSession(ctx, project.ID, "main", "", nil)
	require.NoError(t, err)

	c := &store.Context{SessionID: session.ID, Type: store.ContextTypeCode, Content: "unique_sentinel_token appears only here", QualityScore: 0.5}
	require.NoError(t, st.CreateContext(ctx, c))

	resp, err := e.Search(ctx, Request{Query: "unique_sentinel_token", ProjectPath: "/tmp/retrieve-keyword"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, c.ID, resp.Results[0].ContextID)
	assert.Equal(t, 1.0, resp.Results[0].KeywordScore)
}
