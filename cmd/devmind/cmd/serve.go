package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devmind-dev/memcore/internal/async"
	"github.com/devmind-dev/memcore/internal/config"
	"github.com/devmind-dev/memcore/internal/embed"
	"github.com/devmind-dev/memcore/internal/logging"
	"github.com/devmind-dev/memcore/internal/mcp"
	"github.com/devmind-dev/memcore/internal/store"
)

// shutdownTimeout bounds how long serve waits for in-flight background
// embedding/quality-refresh tasks to finish before returning.
const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Start devmind as a long-lived JSON-RPC subprocess over stdio,
exposing create_session, record_context, semantic_search, and the
rest of the memory tool surface to the calling AI tool.

The stdio transport requires stdout to carry nothing but protocol
frames, so serve never writes status output to stdout or stderr;
diagnostics go to ~/.devmind/logs/ instead. Use 'devmind doctor' or
'devmind status' for interactive diagnostics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), offline)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Use static embeddings, skipping any model server")

	return cmd
}

func runServe(ctx context.Context, offline bool) error {
	cleanup, err := logging.SetupMCPMode()
	if err != nil {
		return fmt.Errorf("failed to setup mcp logging: %w", err)
	}
	defer cleanup()
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	provider := embed.ProviderOllama
	if offline || !cfg.VectorSearch.Enabled {
		provider = embed.ProviderStatic
	}
	embedder, err := embed.NewEmbedder(ctx, provider, cfg.VectorSearch.ModelName, filepath.Dir(cfg.Database.Path))
	if err != nil {
		logger.Warn("embedder unavailable, continuing in keyword-only mode", slog.String("error", err.Error()))
		embedder = nil
	}

	tasks := async.NewTracker(context.Background(), logger)

	server, err := mcp.New(st, embedder, tasks, logger)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("failed to build mcp server: %w", err)
	}

	logger.Info("devmind serve starting", slog.String("database", cfg.Database.Path))

	serveErr := server.Serve(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Close(shutdownCtx); err != nil {
		logger.Error("error during shutdown", slog.String("error", err.Error()))
	}

	return serveErr
}
