package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/devmind-dev/memcore/internal/async"
	"github.com/devmind-dev/memcore/internal/dedup"
	"github.com/devmind-dev/memcore/internal/detect"
	"github.com/devmind-dev/memcore/internal/embed"
	"github.com/devmind-dev/memcore/internal/errors"
	"github.com/devmind-dev/memcore/internal/extract"
	"github.com/devmind-dev/memcore/internal/resolve"
	"github.com/devmind-dev/memcore/internal/store"
)

// EmbeddingVersion tags every vector this build generates, so a later
// switch of embedding provider or model is detectable on read.
const EmbeddingVersion = "v1"

// Coordinator runs the record_context pipeline: validation, duplicate
// advisory, session resolution, enrichment, classification, tiering,
// the context write, and the fire-and-forget embedding task.
type Coordinator struct {
	store      store.Store
	resolver   *resolve.Resolver
	detector   *detect.Detector
	dup        *dedup.Checker
	classifier *Classifier
	embedder   embed.Embedder
	tasks      *async.Tracker
	logger     *slog.Logger
}

// New wires a Coordinator. embedder and tasks may be nil, in which case
// embedding generation is skipped entirely (degraded-mode operation).
func New(st store.Store, detector *detect.Detector, dup *dedup.Checker, embedder embed.Embedder, tasks *async.Tracker, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:      st,
		resolver:   resolve.New(st),
		detector:   detector,
		dup:        dup,
		classifier: NewClassifier(),
		embedder:   embedder,
		tasks:      tasks,
		logger:     logger,
	}
}

// Record runs the full record_context pipeline against req.
func (c *Coordinator) Record(ctx context.Context, req Request) (*Response, error) {
	// 1. Validate.
	if strings.TrimSpace(req.Content) == "" {
		return nil, errors.InvalidArgument("content must not be empty", nil)
	}
	if strings.TrimSpace(req.ProjectPath) == "" {
		return nil, errors.InvalidArgument("project_path is required", nil)
	}
	root := resolve.FindProjectRoot(req.ProjectPath)

	project, err := c.resolver.GetOrCreateProject(ctx, root)
	if err != nil {
		return nil, errors.StorageError("failed to resolve project", err)
	}

	// 2. Advisory duplicate check: best-effort, never aborts.
	var duplicateWarning string
	if c.dup != nil {
		if advisory := c.dup.Check(ctx, project.ID, req.Content); advisory != nil {
			duplicateWarning = advisory.Message
		}
	}

	// 3. Session resolution.
	session, err := c.resolver.EnsureSession(ctx, project, req.SessionID)
	if err != nil {
		return nil, errors.StorageError("failed to resolve session", err)
	}

	// 4. Auto-enrichment.
	filesChanged := req.FilesChanged
	metadata := map[string]any{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	if c.detector != nil {
		if len(filesChanged) == 0 {
			if git := c.detector.GitInfo(ctx, root); git != nil {
				metadata["git_branch"] = git.Branch
				metadata["git_author"] = git.Author
				if git.HasUncommitted {
					for _, path := range git.ChangedFiles {
						filesChanged = append(filesChanged, FileChange{FilePath: path, ChangeType: store.ChangeTypeModify})
					}
				}
			}
		}
		if info := c.detector.ProjectInfo(root); info != nil {
			setIfAbsent(metadata, "project_name", info.Name)
			setIfAbsent(metadata, "project_version", info.Version)
			setIfAbsent(metadata, "project_type", info.Type)
		}
	}

	// 5. File-path inference fallback.
	if req.FilePath == "" && len(filesChanged) == 0 {
		if inferred := inferFilesChanged(ctx, c.store, session.ID, req.Content); len(inferred) > 0 {
			filesChanged = inferred
			metadata["ai_enrichment"] = "inferred_files_changed"
		}
	}

	// 6. Line-range coalescing.
	var lineStart, lineEnd *int
	if len(req.LineRanges) > 0 {
		metadata["line_ranges"] = req.LineRanges
		start, end := outermostSpan(req.LineRanges)
		lineStart, lineEnd = &start, &end
	}

	// 7. Auto-classification.
	ctxType := store.ContextType(req.Type)
	if ctxType == "" || ctxType == store.ContextTypeCode || ctxType == store.ContextTypeConversation {
		classification := c.classifier.Classify(req.Content, len(filesChanged) > 0 || req.FilePath != "")
		metadata["auto_classification"] = map[string]any{
			"type":         string(classification.Type),
			"change_type":  string(classification.ChangeType),
			"impact_level": classification.ImpactLevel,
			"confidence":   classification.Confidence,
		}
		if classification.Confidence > 0.5 {
			ctxType = classification.Type
			if req.ChangeType == "" && classification.ChangeType != "" {
				req.ChangeType = string(classification.ChangeType)
			}
			if req.ImpactLevel == "" {
				req.ImpactLevel = classification.ImpactLevel
			}
		} else if ctxType == "" {
			ctxType = classification.Type
		}
	}
	if req.ChangeType != "" {
		metadata["change_type"] = req.ChangeType
	}
	if req.ImpactLevel != "" {
		metadata["impact_level"] = req.ImpactLevel
	}
	if req.DiffStats != nil {
		metadata["diff_stats"] = map[string]any{
			"additions": req.DiffStats.Additions,
			"deletions": req.DiffStats.Deletions,
			"changes":   req.DiffStats.Changes,
		}
	} else if agg := aggregateDiffStats(filesChanged); agg != nil {
		metadata["diff_stats"] = map[string]any{
			"additions": agg.Additions,
			"deletions": agg.Deletions,
			"changes":   agg.Changes,
		}
	}

	// 8. Tiering decision.
	tier := classifyTier(ctxType, req.ForceRemember)
	if tier == TierSkip {
		return &Response{
			Tier:             TierSkip,
			Stored:           false,
			DuplicateWarning: duplicateWarning,
			Message:          composeMessage(req.Content, TierSkip, ""),
		}, nil
	}

	// 9. Write context, then context_files. Compute quality_score.
	singlePath := req.FilePath
	if singlePath == "" && len(filesChanged) == 1 {
		singlePath = filesChanged[0].FilePath
	}
	result := extract.Extract(req.Content, singlePath, lineStart, lineEnd)

	tags := mergeTags(req.Tags, result.Tags)
	if len(filesChanged) > 1 {
		singlePath = ""
	}

	newContext := &store.Context{
		SessionID:    session.ID,
		Type:         ctxType,
		Content:      req.Content,
		FilePath:     singlePath,
		LineStart:    lineStart,
		LineEnd:      lineEnd,
		Language:     result.Language,
		Tags:         tags,
		QualityScore: result.QualityScore,
		Metadata:     metadata,
	}
	if err := c.store.CreateContext(ctx, newContext); err != nil {
		return nil, err
	}

	var fileSummaries []string
	if len(filesChanged) > 0 {
		entries := make([]store.ContextFile, 0, len(filesChanged))
		for _, f := range filesChanged {
			entries = append(entries, store.ContextFile{
				ContextID:  newContext.ID,
				FilePath:   f.FilePath,
				ChangeType: f.ChangeType,
				LineRanges: f.LineRanges,
				DiffStats:  f.DiffStats,
			})
			fileSummaries = append(fileSummaries, summarizeFile(f))
		}
		if err := c.store.AddContextFiles(ctx, newContext.ID, entries); err != nil {
			return nil, err
		}
	}

	// 10. Spawn the embedding task, fire-and-forget.
	c.spawnEmbedding(newContext.ID, req.Content)

	// 11. Compose response.
	return &Response{
		ContextID:        newContext.ID,
		Tier:             tier,
		Stored:           true,
		DuplicateWarning: duplicateWarning,
		Message:          composeMessage(req.Content, tier, newContext.ID),
		Files:            fileSummaries,
	}, nil
}

func (c *Coordinator) spawnEmbedding(contextID, content string) {
	if c.embedder == nil || c.tasks == nil {
		return
	}
	c.tasks.Go("embed-context", func(ctx context.Context) error {
		if !c.store.IsConnected() {
			return nil
		}
		vec, err := c.embedder.Embed(ctx, content)
		if err != nil {
			return fmt.Errorf("embed context %s: %w", contextID, err)
		}
		if !c.store.IsConnected() {
			return nil
		}
		return c.store.UpdateContextEmbedding(ctx, contextID, vec, content, EmbeddingVersion, c.embedder.ModelName())
	})
}

func setIfAbsent(m map[string]any, key, value string) {
	if value == "" {
		return
	}
	if _, ok := m[key]; ok {
		return
	}
	m[key] = value
}

func mergeTags(caller, derived []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range caller {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range derived {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func outermostSpan(ranges []store.LineRange) (int, int) {
	start, end := ranges[0].Start, ranges[0].End
	for _, r := range ranges[1:] {
		if r.Start < start {
			start = r.Start
		}
		if r.End > end {
			end = r.End
		}
	}
	return start, end
}

func aggregateDiffStats(files []FileChange) *store.DiffStats {
	var agg store.DiffStats
	found := false
	for _, f := range files {
		if f.DiffStats == nil {
			continue
		}
		found = true
		agg.Additions += f.DiffStats.Additions
		agg.Deletions += f.DiffStats.Deletions
		agg.Changes += f.DiffStats.Changes
	}
	if !found {
		return nil
	}
	return &agg
}

func summarizeFile(f FileChange) string {
	if f.ChangeType == "" {
		return f.FilePath
	}
	return fmt.Sprintf("%s (%s)", f.FilePath, f.ChangeType)
}

func composeMessage(content string, tier Tier, contextID string) string {
	chinese := extract.IsPredominantlyChinese(content)
	switch tier {
	case TierSkip:
		if chinese {
			return "未存储：此类内容默认不保留"
		}
		return "Not stored: this kind of content isn't retained by default"
	case TierNotify:
		if chinese {
			return fmt.Sprintf("已记录 (%s)", contextID)
		}
		return fmt.Sprintf("Recorded (%s)", contextID)
	default: // TierSilent
		if chinese {
			return "已静默记录"
		}
		return "Recorded silently"
	}
}
