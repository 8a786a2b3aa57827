package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorCmd_JSONReportsWritableDatabaseDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DEVMIND_DATABASE_PATH", filepath.Join(dir, "memory.db"))
	t.Setenv("DEVMIND_EMBEDDER", "static")

	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	cmd := newDoctorCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--json"})

	err = cmd.Execute()
	require.NoError(t, err)

	var results []checkResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &results))
	require.NotEmpty(t, results)

	var sawDBDir bool
	for _, r := range results {
		if r.Name == "database directory" {
			sawDBDir = true
			assert.True(t, r.OK)
		}
	}
	assert.True(t, sawDBDir)
}
