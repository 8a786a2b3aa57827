package retrieve

import (
	"time"

	"github.com/devmind-dev/memcore/internal/store"
)

// candidate unifies a Context row and a FileIndex row into one shape
// scoring operates over, so the hybrid/metadata formulas don't need to
// know which table a row came from.
type candidate struct {
	id           string
	ctxType      store.ContextType
	content      string
	filePath     string
	files        []string
	language     string
	tags         []string
	qualityScore float64
	metadata     map[string]any
	createdAt    time.Time
	embedding    []float32
	fromIndex    bool
}

func candidateFromContext(c *store.Context, files []store.ContextFile) candidate {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.FilePath)
	}
	return candidate{
		id:           c.ID,
		ctxType:      c.Type,
		content:      c.Content,
		filePath:     c.FilePath,
		files:        paths,
		language:     c.Language,
		tags:         c.Tags,
		qualityScore: c.QualityScore,
		metadata:     c.Metadata,
		createdAt:    c.CreatedAt,
		embedding:    c.Embedding,
	}
}

func candidateFromFileIndex(row *store.FileIndexRow) candidate {
	return candidate{
		id:           row.ID,
		ctxType:      store.ContextTypeCode,
		content:      row.Content,
		filePath:     row.FilePath,
		files:        []string{row.FilePath},
		tags:         row.Tags,
		qualityScore: store.FileIndexQualityScore,
		metadata:     row.Metadata,
		createdAt:    row.IndexedAt,
		embedding:    row.Embedding,
		fromIndex:    true,
	}
}
