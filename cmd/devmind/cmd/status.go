package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/devmind-dev/memcore/internal/config"
	"github.com/devmind-dev/memcore/internal/embed"
	"github.com/devmind-dev/memcore/internal/store"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show memory store health and counts",
		Long: `Display information about the memory store including:
  - Number of projects, sessions, and recorded contexts
  - How many contexts carry an embedding
  - Embedder model and availability`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context(), cmd, jsonOutput, offline)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&offline, "offline", false, "Probe the embedder in static mode only")

	return cmd
}

type statusReport struct {
	Database             string `json:"database"`
	ProjectCount         int    `json:"project_count"`
	SessionCount         int    `json:"session_count"`
	ContextCount         int    `json:"context_count"`
	FileIndexCount       int    `json:"file_index_count"`
	EmbeddedContextCount int    `json:"embedded_context_count"`
	EmbedderModel        string `json:"embedder_model"`
	EmbedderAvailable    bool   `json:"embedder_available"`
}

func runStatus(ctx context.Context, cmd *cobra.Command, jsonOutput, offline bool) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !fileExists(cfg.Database.Path) {
		return fmt.Errorf("no memory database found at %s\nRun 'devmind serve' once to create one", cfg.Database.Path)
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	stats, err := st.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	provider := embed.ProviderOllama
	if offline || !cfg.VectorSearch.Enabled {
		provider = embed.ProviderStatic
	}
	embedder, err := embed.NewEmbedder(ctx, provider, cfg.VectorSearch.ModelName, filepath.Dir(cfg.Database.Path))
	if err != nil {
		embedder = nil
	}

	report := statusReport{
		Database:             cfg.Database.Path,
		ProjectCount:         stats.ProjectCount,
		SessionCount:         stats.SessionCount,
		ContextCount:         stats.ContextCount,
		FileIndexCount:       stats.FileIndexCount,
		EmbeddedContextCount: stats.EmbeddedContextCount,
	}
	if embedder != nil {
		// The embedder is lazily built; a first call initializes it so the
		// model name and availability describe the real backend.
		_, embedErr := embedder.Embed(ctx, "devmind status probe")
		report.EmbedderModel = embedder.ModelName()
		report.EmbedderAvailable = embedErr == nil && embedder.Available(ctx)
		_ = embedder.Close()
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "database:          %s\n", report.Database)
	fmt.Fprintf(out, "projects:          %d\n", report.ProjectCount)
	fmt.Fprintf(out, "sessions:          %d\n", report.SessionCount)
	fmt.Fprintf(out, "contexts:          %d\n", report.ContextCount)
	fmt.Fprintf(out, "file index rows:   %d\n", report.FileIndexCount)
	fmt.Fprintf(out, "embedded contexts: %d\n", report.EmbeddedContextCount)
	fmt.Fprintf(out, "embedder model:    %s\n", report.EmbedderModel)
	fmt.Fprintf(out, "embedder ready:    %s\n", formatBool(out, report.EmbedderAvailable))
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// formatBool renders a status boolean, adding ANSI color only when out is
// an attached terminal; piped or redirected output (the common case when
// another tool parses `devmind status`) stays plain.
func formatBool(out io.Writer, ok bool) string {
	text := "false"
	if ok {
		text = "true"
	}
	f, isFile := out.(*os.File)
	if !isFile || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return text
	}
	color := "\x1b[31m"
	if ok {
		color = "\x1b[32m"
	}
	return color + text + "\x1b[0m"
}
