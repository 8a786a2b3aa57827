// Package dedup runs a constrained semantic search against a project's
// recent contexts before ingestion commits a new one, and turns a strong
// match into an advisory string. It never blocks or rejects an ingest: a
// duplicate is a hint to the caller, not a merge decision the core makes
// on its own.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/devmind-dev/memcore/internal/embed"
	"github.com/devmind-dev/memcore/internal/store"
)

// SearchLimit is the top-K bound on the constrained search.
const SearchLimit = 5

// SearchThreshold is the minimum similarity a context needs to appear in
// the candidate set at all.
const SearchThreshold = 0.75

// AdvisoryThreshold is the similarity the best candidate must clear,
// combined with AdvisoryMaxAge, before an advisory is attached.
const AdvisoryThreshold = 0.7

// AdvisoryMaxAge bounds how old the best match may be for the advisory to
// still be relevant.
const AdvisoryMaxAge = 24 * time.Hour

// Advisory describes a likely-duplicate prior context. It is informational
// only: the caller decides what, if anything, to do about it.
type Advisory struct {
	Message          string
	SimilarContextID string
	SimilarityScore  float64
}

// Checker runs the constrained search. Construct one per process, sharing
// the same Store and Embedder the rest of the pipeline uses.
type Checker struct {
	store    store.Store
	embedder embed.Embedder
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Checker. A nil logger falls back to slog.Default().
func New(st store.Store, embedder embed.Embedder, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{store: st, embedder: embedder, logger: logger, now: time.Now}
}

// Check embeds content and compares it against projectID's existing
// embedded contexts. Returns nil when nothing warrants an advisory,
// including every failure mode: this check is best-effort and must never
// abort the ingest pipeline it guards.
func (c *Checker) Check(ctx context.Context, projectID, content string) *Advisory {
	if c.embedder == nil || projectID == "" {
		return nil
	}

	queryVec, err := c.embedder.Embed(ctx, content)
	if err != nil {
		c.logger.Warn("dedup check: embedding failed, skipping advisory", "error", err)
		return nil
	}
	queryVec = store.Normalize(queryVec)

	candidates, err := c.store.ContextsForVectorSearch(ctx, projectID, "")
	if err != nil {
		c.logger.Warn("dedup check: candidate fetch failed, skipping advisory", "error", err)
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	type scored struct {
		ctx        *store.Context
		similarity float64
	}

	var matches []scored
	for _, candidate := range candidates {
		if !candidate.HasEmbedding() {
			continue
		}
		sim := float64(store.DotProduct(queryVec, store.Normalize(candidate.Embedding)))
		if sim >= SearchThreshold {
			matches = append(matches, scored{candidate, sim})
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].similarity > matches[j].similarity })
	if len(matches) > SearchLimit {
		matches = matches[:SearchLimit]
	}

	best := matches[0]
	if best.similarity <= AdvisoryThreshold {
		return nil
	}
	if c.now().Sub(best.ctx.CreatedAt) >= AdvisoryMaxAge {
		return nil
	}

	return &Advisory{
		Message: fmt.Sprintf(
			"a similar context (%s) from %s already exists (similarity %.2f); this was not merged automatically",
			best.ctx.ID, best.ctx.CreatedAt.Format(time.RFC3339), best.similarity,
		),
		SimilarContextID: best.ctx.ID,
		SimilarityScore:  best.similarity,
	}
}
