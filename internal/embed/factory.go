package embed

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ProviderType names a configured embedding backend.
type ProviderType string

const (
	// ProviderOllama uses Ollama's HTTP API for embeddings. It is the
	// default for unrecognized provider names; an unreachable Ollama host is
	// reported as an error on first use, not replaced by another provider.
	ProviderOllama ProviderType = "ollama"

	// ProviderStatic uses deterministic hash-based embeddings. It is used
	// only when selected explicitly.
	ProviderStatic ProviderType = "static"
)

// NewEmbedder builds the embedder for provider/model, wrapped for lazy
// idempotent initialization and (unless disabled) query-result caching.
// Construction of the real backend is deferred to the first call that
// needs it rather than happening here: a misconfigured or unreachable
// Ollama host must not block startup, only the calls that actually need
// embeddings (see the query-time failure semantics around semantic_search).
//
// The DEVMIND_EMBEDDER environment variable overrides provider selection;
// DEVMIND_EMBED_CACHE=false disables the query cache.
func NewEmbedder(ctx context.Context, provider ProviderType, model string, lockDir string) (Embedder, error) {
	if envProvider := os.Getenv("DEVMIND_EMBEDDER"); envProvider != "" {
		provider = ParseProvider(envProvider)
	}

	var lazy *LazyEmbedder
	switch provider {
	case ProviderStatic:
		lazy = NewLazyEmbedder(lockDir, DefaultDimensions, func(context.Context) (Embedder, error) {
			return NewStaticEmbedder(DefaultDimensions), nil
		})
	case ProviderOllama:
		fallthrough
	default:
		cfg := DefaultOllamaConfig()
		if model != "" {
			cfg.Model = model
		}
		if host := os.Getenv("DEVMIND_OLLAMA_HOST"); host != "" {
			cfg.Host = host
		}
		lazy = NewLazyEmbedder(lockDir, DefaultDimensions, func(ctx context.Context) (Embedder, error) {
			embedder, err := NewOllamaEmbedder(ctx, cfg)
			if err != nil {
				return nil, fmt.Errorf("ollama unavailable, falling back requires an explicit static provider: %w", err)
			}
			return embedder, nil
		})
	}

	var embedder Embedder = lazy
	if !isCacheDisabled() {
		embedder = NewCachedEmbedder(embedder, DefaultEmbeddingCacheSize)
	}
	return embedder, nil
}

func isCacheDisabled() bool {
	v := strings.ToLower(os.Getenv("DEVMIND_EMBED_CACHE"))
	return v == "false" || v == "0" || v == "off" || v == "disabled"
}

// ParseProvider converts a string to a ProviderType, defaulting to Ollama
// for anything unrecognized.
func ParseProvider(s string) ProviderType {
	switch strings.ToLower(s) {
	case "static":
		return ProviderStatic
	case "ollama":
		return ProviderOllama
	default:
		return ProviderOllama
	}
}

// ValidProviders returns all valid provider names.
func ValidProviders() []string {
	return []string{string(ProviderOllama), string(ProviderStatic)}
}

// IsValidProvider checks if a provider name is valid.
func IsValidProvider(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range ValidProviders() {
		if lower == p {
			return true
		}
	}
	return false
}

// EmbedderInfo summarizes an embedder's identity for status reporting.
type EmbedderInfo struct {
	Provider   ProviderType
	Model      string
	Dimensions int
	Available  bool
}

// GetInfo returns a status-reporting summary of embedder, unwrapping
// caching/laziness to inspect the underlying implementation's type.
func GetInfo(ctx context.Context, embedder Embedder) EmbedderInfo {
	info := EmbedderInfo{
		Model:      embedder.ModelName(),
		Dimensions: embedder.Dimensions(),
		Available:  embedder.Available(ctx),
	}

	inner := embedder
	if cached, ok := inner.(*CachedEmbedder); ok {
		inner = cached.inner
	}
	if lazy, ok := inner.(*LazyEmbedder); ok {
		if ready := lazy.ready(); ready != nil {
			inner = ready
		}
	}

	switch inner.(type) {
	case *OllamaEmbedder:
		info.Provider = ProviderOllama
	default:
		info.Provider = ProviderStatic
	}

	return info
}
