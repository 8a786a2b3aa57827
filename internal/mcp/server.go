package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/devmind-dev/memcore/internal/async"
	"github.com/devmind-dev/memcore/internal/dedup"
	"github.com/devmind-dev/memcore/internal/detect"
	"github.com/devmind-dev/memcore/internal/embed"
	"github.com/devmind-dev/memcore/internal/ingest"
	"github.com/devmind-dev/memcore/internal/resolve"
	"github.com/devmind-dev/memcore/internal/retrieve"
	"github.com/devmind-dev/memcore/internal/store"
	"github.com/devmind-dev/memcore/pkg/version"
)

// Server is the MCP server exposing the memory store and retrieval
// engine as a set of JSON-RPC tools over stdio.
type Server struct {
	mcp *mcp.Server

	store    store.Store
	resolver *resolve.Resolver
	detector *detect.Detector
	dup      *dedup.Checker
	ingest   *ingest.Coordinator
	retrieve *retrieve.Engine
	embedder embed.Embedder
	tasks    *async.Tracker
	logger   *slog.Logger
}

// New wires a Server over an already-open store. embedder and tasks may
// be nil, in which case semantic search and duplicate detection run
// degraded (keyword-only) and background embedding never fires.
func New(st store.Store, embedder embed.Embedder, tasks *async.Tracker, logger *slog.Logger) (*Server, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	detector := detect.New(logger)
	resolver := resolve.New(st)
	dupChecker := dedup.New(st, embedder, logger)
	coordinator := ingest.New(st, detector, dupChecker, embedder, tasks, logger)
	engine := retrieve.New(st, embedder, tasks, logger)

	s := &Server{
		store:    st,
		resolver: resolver,
		detector: detector,
		dup:      dupChecker,
		ingest:   coordinator,
		retrieve: engine,
		embedder: embedder,
		tasks:    tasks,
		logger:   logger,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{Name: "devmind", Version: version.Version},
		nil,
	)
	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// registerTools registers every tool named in the external interface.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_session",
		Description: "Create a new development session for a project, detecting or creating the project as needed.",
	}, s.handleCreateSession)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "record_context",
		Description: "Record a piece of code, conversation, or decision as a durable memory, auto-classified and auto-tiered.",
	}, s.handleRecordContext)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "manage_session",
		Description: "End or delete one session, or every session of a project.",
	}, s.handleManageSession)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_current_session",
		Description: "Return the active session for a project, if any.",
	}, s.handleGetCurrentSession)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_projects",
		Description: "List every known project.",
	}, s.handleListProjects)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_context",
		Description: "Retrieve one or more contexts by id, optionally pivoting to related contexts.",
	}, s.handleGetContext)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "semantic_search",
		Description: "Hybrid vector + keyword search over recorded memories and indexed source files.",
	}, s.handleSemanticSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_contexts",
		Description: "List contexts chronologically, scoped by session, project, creation time, or type.",
	}, s.handleListContexts)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_context",
		Description: "Permanently delete one context.",
	}, s.handleDeleteContext)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update_context",
		Description: "Partially update a context's content, tags, quality score, or metadata. Never touches its embedding.",
	}, s.handleUpdateContext)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "export_memory_graph",
		Description: "Export a project's contexts and their relationships as a node/edge graph.",
	}, s.handleExportMemoryGraph)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_memory_status",
		Description: "Report row counts and embedder health across the whole store.",
	}, s.handleGetMemoryStatus)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "cleanup_empty_projects",
		Description: "Delete every project with no recorded contexts. Pass dry_run:true to preview without deleting.",
	}, s.handleCleanupEmptyProjects)

	s.logger.Info("registered mcp tools", slog.Int("count", 13))
}

// Serve starts the server on the given transport. Only "stdio" is
// implemented; the JSON-RPC stdio transport requires stdout to carry
// nothing but protocol frames, so callers must route logging elsewhere
// before calling Serve (see internal/logging.SetupMCPMode).
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting mcp server", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("mcp server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("mcp server stopped gracefully")
	return nil
}

// Close releases server resources, waiting for in-flight background
// tasks (embedding generation, quality refresh) to finish.
func (s *Server) Close(ctx context.Context) error {
	if s.tasks != nil {
		s.tasks.Shutdown(ctx)
	}
	return s.store.Close()
}

// requireField returns an invalid-params error if value is empty.
func requireField(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}
