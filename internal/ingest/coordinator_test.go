package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmind-dev/memcore/internal/async"
	"github.com/devmind-dev/memcore/internal/dedup"
	"github.com/devmind-dev/memcore/internal/detect"
	"github.com/devmind-dev/memcore/internal/embed"
	"github.com/devmind-dev/memcore/internal/store"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *store.SQLiteStore) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.NewSQLiteStore(filepath.Join(dir, "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	embedder := embed.NewStaticEmbedder(32)
	dup := dedup.New(st, embedder, slog.Default())
	detector := detect.New(slog.Default())
	tasks := async.NewTracker(context.Background(), slog.Default())
	t.Cleanup(func() { tasks.Shutdown(context.Background()) })

	return New(st, detector, dup, embedder, tasks, slog.Default()), st
}

func TestCoordinator_SilentCodeContextIsStored(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	resp, err := c.Record(ctx, Request{
		Content:     "fixed a bug where the retry loop never backed off after a timeout",
		ProjectPath: t.TempDir(),
	})
	require.NoError(t, err)
	assert.True(t, resp.Stored)
	assert.Equal(t, TierSilent, resp.Tier)
	assert.NotEmpty(t, resp.ContextID)

	stored, err := st.GetContextByID(ctx, resp.ContextID)
	require.NoError(t, err)
	assert.Equal(t, store.ContextTypeBugFix, stored.Type)
}

func TestCoordinator_ConversationIsSkippedByDefault(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	resp, err := c.Record(ctx, Request{
		Content:     "just chatting about the weekend plans",
		ProjectPath: t.TempDir(),
		Type:        "conversation",
	})
	require.NoError(t, err)
	assert.False(t, resp.Stored)
	assert.Equal(t, TierSkip, resp.Tier)
	assert.Empty(t, resp.ContextID)
}

func TestCoordinator_ForceRememberOverridesSkip(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	resp, err := c.Record(ctx, Request{
		Content:       "just chatting about the weekend plans",
		ProjectPath:   t.TempDir(),
		Type:          "conversation",
		ForceRemember: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.Stored)
	assert.NotEmpty(t, resp.ContextID)
}

func TestCoordinator_MultiFileIngestWritesContextFiles(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	resp, err := c.Record(ctx, Request{
		Content:     "refactor",
		ProjectPath: t.TempDir(),
		FilesChanged: []FileChange{
			{FilePath: "a.ts", ChangeType: store.ChangeTypeModify, DiffStats: &store.DiffStats{Additions: 3, Deletions: 1, Changes: 4}},
			{FilePath: "b.ts", ChangeType: store.ChangeTypeModify},
		},
	})
	require.NoError(t, err)
	require.True(t, resp.Stored)
	assert.Len(t, resp.Files, 2)

	stored, err := st.GetContextByID(ctx, resp.ContextID)
	require.NoError(t, err)
	assert.Empty(t, stored.FilePath)
	aggregated, ok := stored.Metadata["diff_stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), aggregated["additions"])

	files, err := st.ContextFilesByContext(ctx, resp.ContextID)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestCoordinator_SessionReusedAcrossCalls(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()
	projectPath := t.TempDir()

	first, err := c.Record(ctx, Request{Content: "something new here", ProjectPath: projectPath, Type: "code_modify"})
	require.NoError(t, err)
	second, err := c.Record(ctx, Request{Content: "more of the same thing", ProjectPath: projectPath, Type: "code_modify"})
	require.NoError(t, err)

	firstCtx, err := c.store.GetContextByID(ctx, first.ContextID)
	require.NoError(t, err)
	secondCtx, err := c.store.GetContextByID(ctx, second.ContextID)
	require.NoError(t, err)
	assert.Equal(t, firstCtx.SessionID, secondCtx.SessionID)
}

func TestCoordinator_EmptyContent_ReturnsError(t *testing.T) {
	c, _ := newTestCoordinator(t)
	_, err := c.Record(context.Background(), Request{Content: "   ", ProjectPath: t.TempDir()})
	assert.Error(t, err)
}

func TestCoordinator_LineRangeCoalescesToOutermostSpan(t *testing.T) {
	c, st := newTestCoordinator(t)
	ctx := context.Background()

	resp, err := c.Record(ctx, Request{
		Content:     "fixed bug in the parser's offset calculation",
		ProjectPath: t.TempDir(),
		LineRanges:  []store.LineRange{{Start: 40, End: 45}, {Start: 10, End: 20}},
	})
	require.NoError(t, err)
	require.True(t, resp.Stored)

	stored, err := st.GetContextByID(ctx, resp.ContextID)
	require.NoError(t, err)
	require.NotNil(t, stored.LineStart)
	require.NotNil(t, stored.LineEnd)
	assert.Equal(t, 10, *stored.LineStart)
	assert.Equal(t, 45, *stored.LineEnd)
}
