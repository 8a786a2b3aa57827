package mcp

import (
	"fmt"
	"time"

	"github.com/devmind-dev/memcore/internal/retrieve"
	"github.com/devmind-dev/memcore/internal/store"
)

// toContextOutput converts a stored Context plus its file associations
// into the tool-surface shape.
func toContextOutput(c *store.Context, files []store.ContextFile) ContextOutput {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.FilePath)
	}
	return ContextOutput{
		ContextID:    c.ID,
		Type:         string(c.Type),
		Content:      c.Content,
		FilePath:     c.FilePath,
		Files:        paths,
		Language:     c.Language,
		Tags:         c.Tags,
		QualityScore: c.QualityScore,
		Metadata:     c.Metadata,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}

// toSearchResultOutput converts one retrieve.Result into the tool-surface
// shape, flattening the metadata sub-score breakdown to its total.
func toSearchResultOutput(r retrieve.Result) SearchResultOutput {
	return SearchResultOutput{
		ContextID:     r.ContextID,
		Type:          string(r.Type),
		Content:       r.Content,
		FilePath:      r.FilePath,
		Files:         r.Files,
		Language:      r.Language,
		Tags:          r.Tags,
		QualityScore:  r.QualityScore,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		FromIndex:     r.FromIndex,
		VectorScore:   r.VectorScore,
		KeywordScore:  r.KeywordScore,
		HybridScore:   r.HybridScore,
		MetadataScore: r.MetadataScore.Total,
		FinalScore:    r.FinalScore,
	}
}

// summarizeResults builds a short human-readable line for a search
// response, the kind of text[] block a caller reads without touching
// structuredContent.
func summarizeResults(query string, n int) string {
	if n == 0 {
		return fmt.Sprintf("No matches found for %q.", query)
	}
	plural := "es"
	if n == 1 {
		plural = ""
	}
	return fmt.Sprintf("Found %d match%s for %q.", n, plural, query)
}

// clampLimit returns def when limit is non-positive, otherwise limit
// bounded to [min, max].
func clampLimit(limit, def, min, max int) int {
	if limit <= 0 {
		return def
	}
	if limit < min {
		return min
	}
	if limit > max {
		return max
	}
	return limit
}
