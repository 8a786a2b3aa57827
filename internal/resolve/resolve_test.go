package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmind-dev/memcore/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := store.NewSQLiteStore(filepath.Join(dir, "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCanonicalize_MakesAbsolute(t *testing.T) {
	canonical, err := Canonicalize(".")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(canonical))
}

func TestFindProjectRoot_WalksUpToGoMod(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module acme\n"), 0o644))
	nested := filepath.Join(root, "internal", "pkg")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found := FindProjectRoot(nested)

	resolvedRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	resolvedFound, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, resolvedRoot, resolvedFound)
}

func TestFindProjectRoot_NoMarker_FallsBackToInput(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found := FindProjectRoot(nested)

	resolvedNested, err := filepath.EvalSymlinks(nested)
	require.NoError(t, err)
	resolvedFound, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, resolvedNested, resolvedFound)
}

func TestResolver_GetOrCreateProject_InfersLanguageAndName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helper.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# hi\n"), 0o644))

	st := newTestStore(t)
	r := New(st)

	project, err := r.GetOrCreateProject(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(dir), project.Name)
	assert.Equal(t, "go", project.Language)
}

func TestResolver_GetOrCreateProject_Idempotent(t *testing.T) {
	dir := t.TempDir()
	st := newTestStore(t)
	r := New(st)

	first, err := r.GetOrCreateProject(context.Background(), dir)
	require.NoError(t, err)
	second, err := r.GetOrCreateProject(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestResolver_EnsureSession_CreatesMainSessionWhenNoneExists(t *testing.T) {
	st := newTestStore(t)
	r := New(st)
	ctx := context.Background()

	project, err := r.GetOrCreateProject(ctx, t.TempDir())
	require.NoError(t, err)

	session, err := r.EnsureSession(ctx, project, "")
	require.NoError(t, err)
	assert.Contains(t, session.Name, "Main Session")
}

func TestResolver_EnsureSession_ReusesActiveSession(t *testing.T) {
	st := newTestStore(t)
	r := New(st)
	ctx := context.Background()

	project, err := r.GetOrCreateProject(ctx, t.TempDir())
	require.NoError(t, err)

	first, err := r.EnsureSession(ctx, project, "")
	require.NoError(t, err)

	second, err := r.EnsureSession(ctx, project, "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestResolver_EnsureSession_ReactivatesMainSessionInsteadOfCreatingAnother(t *testing.T) {
	st := newTestStore(t)
	r := New(st)
	ctx := context.Background()

	project, err := r.GetOrCreateProject(ctx, t.TempDir())
	require.NoError(t, err)

	original, err := r.EnsureSession(ctx, project, "")
	require.NoError(t, err)
	require.NoError(t, st.EndSession(ctx, original.ID))

	resolved, err := r.EnsureSession(ctx, project, "")
	require.NoError(t, err)

	assert.Equal(t, original.ID, resolved.ID, "must reactivate the existing main session, not mint a new one")
	assert.Equal(t, store.SessionStatusActive, resolved.Status)

	sessions, err := st.SessionsByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1, "project must never accumulate a second main session")
}

func TestResolver_MainSession_AvailableWhenNoActiveSession(t *testing.T) {
	st := newTestStore(t)
	r := New(st)
	ctx := context.Background()

	project, err := r.GetOrCreateProject(ctx, t.TempDir())
	require.NoError(t, err)

	original, err := r.EnsureSession(ctx, project, "")
	require.NoError(t, err)
	require.NoError(t, st.EndSession(ctx, original.ID))

	active, err := r.GetCurrentSession(ctx, project.ID)
	require.NoError(t, err)
	require.Nil(t, active)

	main, err := r.MainSession(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, main)
	assert.Equal(t, original.ID, main.ID)
}

func TestResolver_MainSession_ReactivatesEndedEarliestSession(t *testing.T) {
	st := newTestStore(t)
	r := New(st)
	ctx := context.Background()

	project, err := r.GetOrCreateProject(ctx, t.TempDir())
	require.NoError(t, err)

	first, err := st.CreateSession(ctx, project.ID, "first", "", nil)
	require.NoError(t, err)
	require.NoError(t, st.EndSession(ctx, first.ID))

	main, err := r.MainSession(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, main)
	assert.Equal(t, first.ID, main.ID)
	assert.Equal(t, store.SessionStatusActive, main.Status)
}
