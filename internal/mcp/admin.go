package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/devmind-dev/memcore/internal/resolve"
)

func (s *Server) handleExportMemoryGraph(ctx context.Context, _ *mcp.CallToolRequest, in ExportMemoryGraphInput) (
	*mcp.CallToolResult, ExportMemoryGraphOutput, error,
) {
	if err := requireField("project_path", in.ProjectPath); err != nil {
		return nil, ExportMemoryGraphOutput{}, NewInvalidParamsError(err.Error())
	}

	root := resolve.FindProjectRoot(in.ProjectPath)
	canonical, err := resolve.Canonicalize(root)
	if err != nil {
		return nil, ExportMemoryGraphOutput{}, MapError(err)
	}
	project, err := s.store.GetProjectByPath(ctx, canonical)
	if err != nil {
		return nil, ExportMemoryGraphOutput{}, MapError(err)
	}
	if project == nil {
		return nil, ExportMemoryGraphOutput{}, nil
	}

	limit := clampLimit(in.Limit, 200, 1, 2000)
	contexts, err := s.store.ContextsByProject(ctx, project.ID, limit)
	if err != nil {
		return nil, ExportMemoryGraphOutput{}, MapError(err)
	}

	out := ExportMemoryGraphOutput{}
	for _, c := range contexts {
		out.Nodes = append(out.Nodes, GraphNode{
			ContextID: c.ID,
			Type:      string(c.Type),
			FilePath:  c.FilePath,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})

		rels, err := s.store.RelationshipsFrom(ctx, c.ID, "")
		if err != nil {
			return nil, ExportMemoryGraphOutput{}, MapError(err)
		}
		for _, rel := range rels {
			out.Edges = append(out.Edges, GraphEdge{
				From:     rel.FromContextID,
				To:       rel.ToContextID,
				Type:     string(rel.Type),
				Strength: rel.Strength,
			})
		}
	}

	return nil, out, nil
}

func (s *Server) handleGetMemoryStatus(ctx context.Context, _ *mcp.CallToolRequest, _ GetMemoryStatusInput) (
	*mcp.CallToolResult, GetMemoryStatusOutput, error,
) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return nil, GetMemoryStatusOutput{}, MapError(err)
	}

	out := GetMemoryStatusOutput{
		ProjectCount:         stats.ProjectCount,
		SessionCount:         stats.SessionCount,
		ContextCount:         stats.ContextCount,
		FileIndexCount:       stats.FileIndexCount,
		EmbeddedContextCount: stats.EmbeddedContextCount,
	}
	if s.embedder != nil {
		out.EmbedderModel = s.embedder.ModelName()
		out.EmbedderDimensions = s.embedder.Dimensions()
		out.EmbedderAvailable = s.embedder.Available(ctx)
	}

	return nil, out, nil
}

func (s *Server) handleCleanupEmptyProjects(ctx context.Context, _ *mcp.CallToolRequest, in CleanupEmptyProjectsInput) (
	*mcp.CallToolResult, CleanupEmptyProjectsOutput, error,
) {
	empty, err := s.store.EmptyProjects(ctx)
	if err != nil {
		return nil, CleanupEmptyProjectsOutput{}, MapError(err)
	}
	if len(empty) == 0 {
		return nil, CleanupEmptyProjectsOutput{Message: "no empty projects found"}, nil
	}

	ids := make([]string, 0, len(empty))
	for _, p := range empty {
		ids = append(ids, p.ID)
	}

	if in.DryRun {
		return nil, CleanupEmptyProjectsOutput{
			RemovedProjectIDs: ids,
			DryRun:            true,
			Message:           fmt.Sprintf("would remove %d empty project(s)", len(ids)),
		}, nil
	}

	if err := s.store.DeleteProjects(ctx, ids); err != nil {
		return nil, CleanupEmptyProjectsOutput{}, MapError(err)
	}

	return nil, CleanupEmptyProjectsOutput{
		RemovedProjectIDs: ids,
		Message:           fmt.Sprintf("removed %d empty project(s)", len(ids)),
	}, nil
}
