package store

import "context"

// Document is a unit of keyword-indexable text: a context's content (or
// a file_index row's content), keyed by its row ID.
type Document struct {
	ID      string
	Content string
}

// KeywordResult is one keyword match, scored so that higher is better
// regardless of backend.
type KeywordResult struct {
	DocID        string
	Score        float64
	MatchedTerms []string
}

// IndexStats summarizes a keyword index's contents.
type IndexStats struct {
	DocumentCount int
}

// KeywordConfig tunes keyword-index tokenization. The SQLite backend
// filters StopWords; the Bleve analyzer always filters
// DefaultCodeStopWords.
type KeywordConfig struct {
	StopWords []string
}

// DefaultKeywordConfig returns a config using DefaultCodeStopWords.
func DefaultKeywordConfig() KeywordConfig {
	return KeywordConfig{StopWords: DefaultCodeStopWords}
}

// DefaultCodeStopWords are filtered out of both indexed content and
// queries; short and high-frequency enough in code and prose alike that
// keeping them only dilutes keyword-match signal.
var DefaultCodeStopWords = []string{
	"a", "an", "the", "is", "are", "was", "were", "be", "been", "being",
	"to", "of", "in", "on", "at", "for", "with", "by", "from", "as",
	"and", "or", "but", "if", "then", "else", "this", "that", "it",
	"do", "does", "did", "have", "has", "had", "can", "will", "would",
}

// KeywordIndex is the full-text search side of hybrid retrieval: it
// answers which document IDs match a query string, scored for ranking
// but not otherwise interpreted (the DAO resolves IDs back to rows).
type KeywordIndex interface {
	Index(ctx context.Context, docs []*Document) error
	Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error)
	Delete(ctx context.Context, docIDs []string) error
	AllIDs() ([]string, error)
	Stats() *IndexStats
	Close() error
}
