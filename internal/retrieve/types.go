// Package retrieve implements the semantic_search pipeline: scope
// resolution, query enhancement, hybrid vector/keyword scoring,
// metadata-relevance scoring, and final ranking.
package retrieve

import (
	"time"

	"github.com/devmind-dev/memcore/internal/store"
)

// Defaults mirrored from the semantic_search input contract.
const (
	DefaultLimit               = 10
	DefaultSimilarityThreshold = 0.5
	DefaultHybridWeight        = 0.7
)

// Request is the semantic_search input.
type Request struct {
	Query       string
	ProjectPath string
	SessionID   string
	FilePath    string
	Type        string

	Limit               int
	SimilarityThreshold float64
	HybridWeight        float64
}

// normalize fills in zero-valued fields with their documented defaults.
func (r Request) normalize() Request {
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.SimilarityThreshold <= 0 {
		r.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if r.HybridWeight <= 0 {
		r.HybridWeight = DefaultHybridWeight
	}
	return r
}

// MetadataScore is the out-of-20 metadata relevance breakdown.
type MetadataScore struct {
	FileMatch    float64
	ProjectMatch float64
	TagMatch     float64
	TimeWeight   float64
	Total        float64
}

// Result is one ranked candidate with every scoring component retained
// for transparency.
type Result struct {
	ContextID    string
	Type         store.ContextType
	Content      string
	FilePath     string
	Files        []string
	Language     string
	Tags         []string
	QualityScore float64
	CreatedAt    time.Time
	FromIndex    bool // true when sourced from file_index rather than contexts

	VectorScore   float64
	KeywordScore  float64
	HybridScore   float64
	MetadataScore MetadataScore
	FinalScore    float64
}

// Response is the semantic_search output.
type Response struct {
	Results       []Result
	OriginalQuery string
	EnhancedQuery string
	Message       string
}
