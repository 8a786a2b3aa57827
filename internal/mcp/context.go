package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/devmind-dev/memcore/internal/ingest"
	"github.com/devmind-dev/memcore/internal/store"
)

func (s *Server) handleRecordContext(ctx context.Context, _ *mcp.CallToolRequest, in RecordContextInput) (
	*mcp.CallToolResult, RecordContextOutput, error,
) {
	if err := requireField("content", in.Content); err != nil {
		return nil, RecordContextOutput{}, NewInvalidParamsError(err.Error())
	}
	if err := requireField("project_path", in.ProjectPath); err != nil {
		return nil, RecordContextOutput{}, NewInvalidParamsError(err.Error())
	}

	req := ingest.Request{
		Content:       in.Content,
		ProjectPath:   in.ProjectPath,
		SessionID:     in.SessionID,
		Type:          in.Type,
		FilePath:      in.FilePath,
		Tags:          in.Tags,
		Metadata:      in.Metadata,
		ChangeType:    in.ChangeType,
		ImpactLevel:   in.ImpactLevel,
		ForceRemember: in.ForceRemember,
	}
	if in.LineStart != 0 || in.LineEnd != 0 {
		req.LineRanges = []store.LineRange{{Start: in.LineStart, End: in.LineEnd}}
	}
	for _, fc := range in.FilesChanged {
		change := ingest.FileChange{
			FilePath:   fc.FilePath,
			ChangeType: store.ChangeType(fc.ChangeType),
		}
		for _, lr := range fc.LineRanges {
			change.LineRanges = append(change.LineRanges, store.LineRange{Start: lr.Start, End: lr.End})
		}
		if fc.DiffStats != nil {
			change.DiffStats = &store.DiffStats{
				Additions: fc.DiffStats.Additions,
				Deletions: fc.DiffStats.Deletions,
				Changes:   fc.DiffStats.Changes,
			}
		}
		req.FilesChanged = append(req.FilesChanged, change)
	}

	resp, err := s.ingest.Record(ctx, req)
	if err != nil {
		return nil, RecordContextOutput{}, MapError(err)
	}

	return nil, RecordContextOutput{
		ContextID:        resp.ContextID,
		Stored:           resp.Stored,
		Tier:             string(resp.Tier),
		DuplicateWarning: resp.DuplicateWarning,
		Message:          resp.Message,
		Files:            resp.Files,
	}, nil
}

func (s *Server) handleGetContext(ctx context.Context, _ *mcp.CallToolRequest, in GetContextInput) (
	*mcp.CallToolResult, GetContextOutput, error,
) {
	if len(in.ContextIDs) == 0 {
		return nil, GetContextOutput{}, NewInvalidParamsError("context_ids is required")
	}

	out := GetContextOutput{}
	for _, id := range in.ContextIDs {
		c, err := s.store.GetContextByID(ctx, id)
		if err != nil {
			return nil, GetContextOutput{}, MapError(err)
		}
		files, err := s.store.ContextFilesByContext(ctx, id)
		if err != nil {
			return nil, GetContextOutput{}, MapError(err)
		}
		out.Contexts = append(out.Contexts, toContextOutput(c, files))

		if in.RelationType == "" {
			continue
		}
		rels, err := s.store.RelationshipsFrom(ctx, id, store.RelationshipType(in.RelationType))
		if err != nil {
			return nil, GetContextOutput{}, MapError(err)
		}
		for _, rel := range rels {
			related, err := s.store.GetContextByID(ctx, rel.ToContextID)
			if err != nil {
				continue
			}
			relatedFiles, err := s.store.ContextFilesByContext(ctx, rel.ToContextID)
			if err != nil {
				relatedFiles = nil
			}
			out.Related = append(out.Related, toContextOutput(related, relatedFiles))
		}
	}

	return nil, out, nil
}

func (s *Server) handleListContexts(ctx context.Context, _ *mcp.CallToolRequest, in ListContextsInput) (
	*mcp.CallToolResult, ListContextsOutput, error,
) {
	if in.SessionID == "" && in.ProjectPath == "" && in.Since == "" && in.Type == "" {
		return nil, ListContextsOutput{}, NewInvalidParamsError(
			"at least one of session_id, project_path, since, or type is required")
	}

	limit := clampLimit(in.Limit, 50, 1, 500)

	var (
		contexts []*store.Context
		err      error
	)
	switch {
	case in.SessionID != "":
		contexts, err = s.store.ContextsBySession(ctx, in.SessionID, limit)
	case in.ProjectPath != "":
		project, perr := s.store.GetProjectByPath(ctx, in.ProjectPath)
		if perr != nil {
			return nil, ListContextsOutput{}, MapError(perr)
		}
		if project == nil {
			return nil, ListContextsOutput{}, nil
		}
		contexts, err = s.store.ContextsByProject(ctx, project.ID, limit)
	default:
		contexts, err = s.store.AllContexts(ctx, limit)
	}
	if err != nil {
		return nil, ListContextsOutput{}, MapError(err)
	}

	var since time.Time
	if in.Since != "" {
		since, err = time.Parse(time.RFC3339, in.Since)
		if err != nil {
			return nil, ListContextsOutput{}, NewInvalidParamsError("since must be an RFC3339 timestamp")
		}
	}

	out := ListContextsOutput{Contexts: make([]ContextOutput, 0, len(contexts))}
	for _, c := range contexts {
		if !since.IsZero() && c.CreatedAt.Before(since) {
			continue
		}
		if in.Type != "" && string(c.Type) != in.Type {
			continue
		}
		files, ferr := s.store.ContextFilesByContext(ctx, c.ID)
		if ferr != nil {
			files = nil
		}
		out.Contexts = append(out.Contexts, toContextOutput(c, files))
	}

	return nil, out, nil
}

func (s *Server) handleDeleteContext(ctx context.Context, _ *mcp.CallToolRequest, in DeleteContextInput) (
	*mcp.CallToolResult, DeleteContextOutput, error,
) {
	if err := requireField("context_id", in.ContextID); err != nil {
		return nil, DeleteContextOutput{}, NewInvalidParamsError(err.Error())
	}

	if err := s.store.DeleteContext(ctx, in.ContextID); err != nil {
		return nil, DeleteContextOutput{}, MapError(err)
	}

	return nil, DeleteContextOutput{
		Deleted: true,
		Message: fmt.Sprintf("deleted context %s", in.ContextID),
	}, nil
}

func (s *Server) handleUpdateContext(ctx context.Context, _ *mcp.CallToolRequest, in UpdateContextInput) (
	*mcp.CallToolResult, UpdateContextOutput, error,
) {
	if err := requireField("context_id", in.ContextID); err != nil {
		return nil, UpdateContextOutput{}, NewInvalidParamsError(err.Error())
	}

	update := store.ContextUpdate{
		Tags:     in.Tags,
		Metadata: in.Metadata,
	}
	if in.Content != "" {
		update.Content = &in.Content
	}
	update.QualityScore = in.QualityScore

	if err := s.store.UpdateContext(ctx, in.ContextID, update); err != nil {
		return nil, UpdateContextOutput{}, MapError(err)
	}

	return nil, UpdateContextOutput{
		Updated: true,
		Message: fmt.Sprintf("updated context %s", in.ContextID),
	}, nil
}
