package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmind-dev/memcore/internal/store"
)

func TestStatusCmd_ErrorsWhenNoDatabaseExists(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DEVMIND_DATABASE_PATH", filepath.Join(dir, "memory.db"))

	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	cmd := newStatusCmd()
	cmd.SetOut(&bytes.Buffer{})
	err = cmd.Execute()
	assert.Error(t, err)
}

func TestStatusCmd_JSONReportsCounts(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "memory.db")
	t.Setenv("DEVMIND_DATABASE_PATH", dbPath)
	t.Setenv("DEVMIND_EMBEDDER", "static")

	st, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	_, err = st.GetOrCreateProject(context.Background(), "demo", dir, "go", "")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	cmd := newStatusCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--json", "--offline"})

	err = cmd.Execute()
	require.NoError(t, err)

	var report statusReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, 1, report.ProjectCount)
}

func TestFormatBool_PlainWhenNotATerminal(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.Equal(t, "true", formatBool(buf, true))
	assert.Equal(t, "false", formatBool(buf, false))
}
