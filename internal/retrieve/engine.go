package retrieve

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/devmind-dev/memcore/internal/async"
	"github.com/devmind-dev/memcore/internal/embed"
	"github.com/devmind-dev/memcore/internal/errors"
	"github.com/devmind-dev/memcore/internal/resolve"
	"github.com/devmind-dev/memcore/internal/store"
)

// Engine runs the semantic_search pipeline.
type Engine struct {
	store    store.Store
	embedder embed.Embedder
	expander *QueryExpander
	tasks    *async.Tracker
	logger   *slog.Logger
}

// New wires an Engine. tasks may be nil, which disables the background
// quality-score refresh step entirely.
func New(st store.Store, embedder embed.Embedder, tasks *async.Tracker, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: st, embedder: embedder, expander: NewQueryExpander(), tasks: tasks, logger: logger}
}

// Search runs the full semantic_search pipeline against req.
func (e *Engine) Search(ctx context.Context, req Request) (*Response, error) {
	req = req.normalize()
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.InvalidArgument("query must not be empty", nil)
	}

	// 1. Lazy background quality-score refresh.
	e.maybeRefreshQuality(ctx)

	// 2. Scope resolution.
	var projectID, projectPath string
	if req.ProjectPath != "" {
		root := resolve.FindProjectRoot(req.ProjectPath)
		canonical, err := resolve.Canonicalize(root)
		if err != nil {
			return nil, errors.InvalidArgument("invalid project_path", err)
		}
		projectPath = canonical
		if project, err := e.store.GetProjectByPath(ctx, canonical); err == nil && project != nil {
			projectID = project.ID
		}
	}

	// 3. Query enhancement.
	enhanced := e.expander.Expand(req.Query)
	if enhanced == "" {
		enhanced = req.Query
	}

	// 4. Candidate set.
	candidates, err := e.candidateSet(ctx, projectID, req.SessionID, enhanced, req.Limit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &Response{
			OriginalQuery: req.Query,
			EnhancedQuery: enhanced,
			Message:       "no contexts found for this project",
		}, nil
	}

	// 5. Query embedding.
	var queryVec []float32
	if e.embedder != nil {
		queryVec, err = e.embedder.Embed(ctx, enhanced)
		if err != nil {
			return nil, errors.EmbeddingGenerationFailed("failed to embed search query", err)
		}
	}

	// 6. Keyword baseline (also feeds candidate merging above).
	keywordHits, err := e.store.SearchKeyword(ctx, enhanced, projectID, req.Limit)
	if err != nil {
		e.logger.Warn("keyword search failed", slog.String("error", err.Error()))
		keywordHits = nil
	}
	keywordIDs := make(map[string]bool, len(keywordHits))
	for _, hit := range keywordHits {
		keywordIDs[hit.ID] = true
	}

	queryPaths := lexQueryPaths(req.Query)
	queryTags := tokenize(req.Query)
	now := time.Now()

	results := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		similarity := candidateSimilarity(queryVec, cand)
		keywordScore := 0.0
		if keywordIDs[cand.id] {
			keywordScore = 1.0
		}

		if similarity < req.SimilarityThreshold && keywordScore == 0 {
			continue
		}

		hybrid := hybridScore(similarity, keywordScore, req.HybridWeight)
		metadata := scoreMetadata(cand, queryPaths, queryTags, projectPath, now)
		final := finalScore(hybrid, metadata)

		if req.Type != "" && string(cand.ctxType) != req.Type {
			continue
		}

		results = append(results, Result{
			ContextID:     cand.id,
			Type:          cand.ctxType,
			Content:       cand.content,
			FilePath:      cand.filePath,
			Files:         cand.files,
			Language:      cand.language,
			Tags:          cand.tags,
			QualityScore:  cand.qualityScore,
			CreatedAt:     cand.createdAt,
			FromIndex:     cand.fromIndex,
			VectorScore:   similarity,
			KeywordScore:  keywordScore,
			HybridScore:   hybrid,
			MetadataScore: metadata,
			FinalScore:    final,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if len(results) > req.Limit {
		results = results[:req.Limit]
	}

	for _, r := range results {
		if r.FromIndex {
			continue
		}
		if err := e.store.RecordSearchHit(ctx, r.ContextID); err != nil {
			e.logger.Warn("failed to record search hit", slog.String("context_id", r.ContextID), slog.String("error", err.Error()))
		}
	}

	return &Response{
		Results:       results,
		OriginalQuery: req.Query,
		EnhancedQuery: enhanced,
	}, nil
}

// candidateSet builds the combined contexts ∪ file_index candidate
// pool. Embedded contexts come from ContextsForVectorSearch; contexts
// that matched the keyword baseline but carry no embedding yet are
// folded in too, with similarity defaulting to 0, so a keyword-only hit
// can still surface.
//
// The three source queries (embedded contexts, keyword hits, file index
// rows) only read and share no mutable state, so they
// run concurrently via errgroup rather than back to back.
func (e *Engine) candidateSet(ctx context.Context, projectID, sessionID, enhancedQuery string, limit int) ([]candidate, error) {
	var (
		embedded    []*store.Context
		keywordHits []*store.Context
		fileRows    []*store.FileIndexRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		embedded, err = e.store.ContextsForVectorSearch(gctx, projectID, sessionID)
		return err
	})
	g.Go(func() error {
		hits, err := e.store.SearchKeyword(gctx, enhancedQuery, projectID, limit)
		if err != nil {
			// keyword search is a best-effort supplement to the vector
			// pool, not a required source: swallow the error here.
			return nil
		}
		keywordHits = hits
		return nil
	})
	g.Go(func() error {
		var err error
		fileRows, err = e.store.FileIndexForVectorSearch(gctx, projectID, sessionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(embedded))
	var candidates []candidate
	for _, c := range embedded {
		files, ferr := e.store.ContextFilesByContext(ctx, c.ID)
		if ferr != nil {
			files = nil
		}
		candidates = append(candidates, candidateFromContext(c, files))
		seen[c.ID] = true
	}

	for _, c := range keywordHits {
		if seen[c.ID] {
			continue
		}
		files, ferr := e.store.ContextFilesByContext(ctx, c.ID)
		if ferr != nil {
			files = nil
		}
		candidates = append(candidates, candidateFromContext(c, files))
		seen[c.ID] = true
	}

	for _, row := range fileRows {
		candidates = append(candidates, candidateFromFileIndex(row))
	}

	return candidates, nil
}
