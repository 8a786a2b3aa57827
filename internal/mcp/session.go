package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/devmind-dev/memcore/internal/resolve"
)

func (s *Server) handleCreateSession(ctx context.Context, _ *mcp.CallToolRequest, in CreateSessionInput) (
	*mcp.CallToolResult, CreateSessionOutput, error,
) {
	if err := requireField("project_path", in.ProjectPath); err != nil {
		return nil, CreateSessionOutput{}, NewInvalidParamsError(err.Error())
	}
	if err := requireField("tool_used", in.ToolUsed); err != nil {
		return nil, CreateSessionOutput{}, NewInvalidParamsError(err.Error())
	}

	root := resolve.FindProjectRoot(in.ProjectPath)
	project, err := s.resolver.GetOrCreateProject(ctx, root)
	if err != nil {
		return nil, CreateSessionOutput{}, MapError(err)
	}

	name := in.SessionName
	if name == "" {
		name = fmt.Sprintf("%s - Session", project.Name)
	}

	session, err := s.store.CreateSession(ctx, project.ID, name, in.ToolUsed, nil)
	if err != nil {
		return nil, CreateSessionOutput{}, MapError(err)
	}

	return nil, CreateSessionOutput{
		SessionID:   session.ID,
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Message:     fmt.Sprintf("started session %q for project %q", session.Name, project.Name),
	}, nil
}

func (s *Server) handleGetCurrentSession(ctx context.Context, _ *mcp.CallToolRequest, in GetCurrentSessionInput) (
	*mcp.CallToolResult, GetCurrentSessionOutput, error,
) {
	if err := requireField("project_path", in.ProjectPath); err != nil {
		return nil, GetCurrentSessionOutput{}, NewInvalidParamsError(err.Error())
	}

	root := resolve.FindProjectRoot(in.ProjectPath)
	project, err := s.resolver.GetOrCreateProject(ctx, root)
	if err != nil {
		return nil, GetCurrentSessionOutput{}, MapError(err)
	}

	session, err := s.resolver.GetCurrentSession(ctx, project.ID)
	if err != nil {
		return nil, GetCurrentSessionOutput{}, MapError(err)
	}
	if session == nil {
		session, err = s.resolver.MainSession(ctx, project.ID)
		if err != nil {
			return nil, GetCurrentSessionOutput{}, MapError(err)
		}
	}
	if session == nil {
		return nil, GetCurrentSessionOutput{
			ProjectID: project.ID,
			Message:   "no active session for this project",
		}, nil
	}

	return nil, GetCurrentSessionOutput{
		SessionID: session.ID,
		ProjectID: project.ID,
		Status:    string(session.Status),
		Message:   fmt.Sprintf("active session %q", session.Name),
	}, nil
}

func (s *Server) handleManageSession(ctx context.Context, _ *mcp.CallToolRequest, in ManageSessionInput) (
	*mcp.CallToolResult, ManageSessionOutput, error,
) {
	switch in.Action {
	case "end", "delete", "end_and_delete":
	default:
		return nil, ManageSessionOutput{}, NewInvalidParamsError("action must be one of end, delete, end_and_delete")
	}
	if in.SessionID == "" && in.ProjectID == "" {
		return nil, ManageSessionOutput{}, NewInvalidParamsError("session_id or project_id is required")
	}

	var targets []string
	if in.SessionID != "" {
		targets = []string{in.SessionID}
	} else {
		sessions, err := s.store.SessionsByProject(ctx, in.ProjectID)
		if err != nil {
			return nil, ManageSessionOutput{}, MapError(err)
		}
		for _, sess := range sessions {
			targets = append(targets, sess.ID)
		}
	}

	affected := make([]string, 0, len(targets))
	for _, id := range targets {
		if in.Action == "end" || in.Action == "end_and_delete" {
			if err := s.store.EndSession(ctx, id); err != nil {
				return nil, ManageSessionOutput{}, MapError(err)
			}
		}
		if in.Action == "delete" || in.Action == "end_and_delete" {
			if err := s.store.DeleteSession(ctx, id); err != nil {
				return nil, ManageSessionOutput{}, MapError(err)
			}
		}
		affected = append(affected, id)
	}

	return nil, ManageSessionOutput{
		Affected: affected,
		Message:  fmt.Sprintf("%s applied to %d session(s)", in.Action, len(affected)),
	}, nil
}

func (s *Server) handleListProjects(ctx context.Context, _ *mcp.CallToolRequest, in ListProjectsInput) (
	*mcp.CallToolResult, ListProjectsOutput, error,
) {
	limit := clampLimit(in.Limit, 50, 1, 500)
	projects, err := s.store.ListProjects(ctx, limit)
	if err != nil {
		return nil, ListProjectsOutput{}, MapError(err)
	}

	out := ListProjectsOutput{Projects: make([]ProjectSummary, 0, len(projects))}
	for _, p := range projects {
		out.Projects = append(out.Projects, ProjectSummary{
			ProjectID: p.ID,
			Name:      p.Name,
			Path:      p.Path,
			Language:  p.Language,
			Framework: p.Framework,
		})
	}
	return nil, out, nil
}
