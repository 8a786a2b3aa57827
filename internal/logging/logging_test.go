package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesJSONToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "server.log")

	logger, cleanup, err := Setup(Config{
		Level:         "info",
		FilePath:      logPath,
		MaxSizeMB:     1,
		MaxFiles:      2,
		WriteToStderr: false,
	})
	require.NoError(t, err)
	defer cleanup()

	logger.Info("hello", "key", "value")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"key":"value"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, 0, int(parseLevel("info")))
	assert.Equal(t, -4, int(parseLevel("debug")))
	assert.Equal(t, 4, int(parseLevel("warn")))
	assert.Equal(t, 8, int(parseLevel("error")))
	assert.Equal(t, 0, int(parseLevel("unknown")))
}

func TestRotatingWriter_RotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")

	w, err := NewRotatingWriter(path, 0, 2)
	require.NoError(t, err)
	w.maxSize = 10
	defer w.Close()

	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)
	_, err = w.Write([]byte("more-data-triggers-rotation"))
	require.NoError(t, err)

	_, err = os.Stat(path + ".1")
	assert.NoError(t, err)
}
