package detect

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runGitSetup(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test Author", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test Author", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoErrorf(t, err, "git %v: %s", args, out)
}

func newTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGitSetup(t, dir, "init", "-q")
	runGitSetup(t, dir, "config", "user.name", "Test Author")
	runGitSetup(t, dir, "config", "user.email", "test@example.com")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644))
	runGitSetup(t, dir, "add", ".")
	runGitSetup(t, dir, "commit", "-q", "-m", "initial commit")
	return dir
}

func TestGitInfo_NonRepo_ReturnsNil(t *testing.T) {
	dir := t.TempDir()
	d := New(nil)

	info := d.GitInfo(context.Background(), dir)

	assert.Nil(t, info)
}

func TestGitInfo_CleanRepo_ReportsBranchAndAuthor(t *testing.T) {
	dir := newTestRepo(t)
	d := New(nil)

	info := d.GitInfo(context.Background(), dir)

	require.NotNil(t, info)
	assert.Equal(t, "Test Author", info.Author)
	assert.False(t, info.HasUncommitted)
	assert.Empty(t, info.ChangedFiles)
	assert.NotEqual(t, "unknown", info.Branch)
}

func TestGitInfo_UncommittedChanges_ReportsChangedFiles(t *testing.T) {
	dir := newTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello again\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("new\n"), 0o644))
	runGitSetup(t, dir, "add", "new.txt")

	d := New(nil)
	info := d.GitInfo(context.Background(), dir)

	require.NotNil(t, info)
	assert.True(t, info.HasUncommitted)
	assert.Contains(t, info.ChangedFiles, "README.md")
	assert.Contains(t, info.ChangedFiles, "new.txt")
}

func TestGitInfo_DetachedHead_UsesShortSHAMarker(t *testing.T) {
	dir := newTestRepo(t)
	runGitSetup(t, dir, "checkout", "-q", "--detach", "HEAD")

	d := New(nil)
	info := d.GitInfo(context.Background(), dir)

	require.NotNil(t, info)
	assert.Contains(t, info.Branch, "detached@")
}

func TestGitInfo_CachedWithinWindow(t *testing.T) {
	dir := newTestRepo(t)
	d := New(nil)

	first := d.GitInfo(context.Background(), dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("new\n"), 0o644))
	second := d.GitInfo(context.Background(), dir)

	assert.Equal(t, first, second, "same 30s window should serve the cached entry, not re-run git")
}

func TestGitInfo_GitBinaryMissing_DegradesToNil(t *testing.T) {
	dir := t.TempDir()
	d := New(nil)
	d.execCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "definitely-not-a-real-binary-xyz")
	}

	info := d.GitInfo(context.Background(), dir)

	assert.Nil(t, info)
}
