package embed

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedder_ExplicitStatic_AlwaysSucceeds(t *testing.T) {
	orig := os.Getenv("DEVMIND_EMBEDDER")
	defer os.Setenv("DEVMIND_EMBEDDER", orig)
	os.Setenv("DEVMIND_EMBEDDER", "static")

	ctx := context.Background()
	embedder, err := NewEmbedder(ctx, ProviderOllama, "", t.TempDir())
	require.NoError(t, err)
	defer func() { _ = embedder.Close() }()

	_, err = embedder.Embed(ctx, "trigger lazy init")
	require.NoError(t, err)
	assert.Equal(t, "static", embedder.ModelName())
	assert.Equal(t, DefaultDimensions, embedder.Dimensions())
}

func TestNewEmbedder_AutoDetect_OllamaUnreachable_FailsOnFirstUse(t *testing.T) {
	orig := os.Getenv("DEVMIND_EMBEDDER")
	origHost := os.Getenv("DEVMIND_OLLAMA_HOST")
	defer func() {
		os.Setenv("DEVMIND_EMBEDDER", orig)
		os.Setenv("DEVMIND_OLLAMA_HOST", origHost)
	}()
	os.Unsetenv("DEVMIND_EMBEDDER")
	os.Setenv("DEVMIND_OLLAMA_HOST", "http://localhost:59999")

	ctx := context.Background()
	embedder, err := NewEmbedder(ctx, ProviderOllama, "", t.TempDir())
	require.NoError(t, err, "construction itself is lazy and must not fail")

	_, err = embedder.Embed(ctx, "hello")
	require.Error(t, err, "first real use should surface the unreachable provider")
	assert.Contains(t, err.Error(), "ollama unavailable")
}

func TestParseProvider(t *testing.T) {
	assert.Equal(t, ProviderStatic, ParseProvider("static"))
	assert.Equal(t, ProviderOllama, ParseProvider("ollama"))
	assert.Equal(t, ProviderOllama, ParseProvider("unknown"))
}

func TestIsValidProvider(t *testing.T) {
	assert.True(t, IsValidProvider("static"))
	assert.True(t, IsValidProvider("OLLAMA"))
	assert.False(t, IsValidProvider("mlx"))
}

func TestGetInfo_UnwrapsCacheAndLazyWrapper(t *testing.T) {
	ctx := context.Background()
	embedder, err := NewEmbedder(ctx, ProviderStatic, "", t.TempDir())
	require.NoError(t, err)
	defer func() { _ = embedder.Close() }()

	_, err = embedder.Embed(ctx, "warm it up")
	require.NoError(t, err)

	info := GetInfo(ctx, embedder)
	assert.Equal(t, ProviderStatic, info.Provider)
	assert.True(t, info.Available)
}
