package embed

import (
	"context"
	"math"
	"time"
)

// Common embedding constants.
const (
	// MinBatchSize is the minimum allowed batch size.
	MinBatchSize = 1

	// MaxBatchSize is the maximum allowed batch size (prevents memory exhaustion).
	MaxBatchSize = 256

	// DefaultBatchSize is the default batch size for embedding requests.
	DefaultBatchSize = 32

	// DefaultWarmTimeout is the timeout for a request once a connection has
	// already been established.
	DefaultWarmTimeout = 15 * time.Second

	// DefaultColdTimeout is the timeout for the first request, when a model
	// may still need to be loaded by the provider.
	DefaultColdTimeout = 30 * time.Second

	// ModelUnloadThreshold is the idle duration after which a provider is
	// treated as cold again (Ollama unloads models after inactivity).
	ModelUnloadThreshold = 5 * time.Minute

	// DefaultMaxRetries is the default number of retry attempts for a
	// single embedding call.
	DefaultMaxRetries = 3
)

// DefaultDimensions is the default embedding width. The store does not
// record a per-database dimension: its embedding_dimensions state key is
// never written, and vectors are stored at whatever width they arrive.
const DefaultDimensions = 384

// Embedder generates vector embeddings for text. Implementations may be
// backed by a remote model server, a local process, or a deterministic
// hash. All methods must be safe for concurrent use.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one round trip
	// where the backend supports it.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding width this embedder produces.
	Dimensions() int

	// ModelName returns the model identifier, recorded alongside vectors so
	// a later switch of provider can be detected.
	ModelName() string

	// Available reports whether the embedder is currently reachable.
	Available(ctx context.Context) bool

	// Close releases resources held by the embedder.
	Close() error
}

// normalizeVector scales v to unit length. A zero vector is returned as-is.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
