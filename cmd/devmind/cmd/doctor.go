package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/devmind-dev/memcore/internal/config"
	"github.com/devmind-dev/memcore/internal/embed"
)

// checkResult is one diagnostic's outcome: Critical failures block serve
// from operating correctly, non-critical ones degrade gracefully.
type checkResult struct {
	Name     string `json:"name"`
	OK       bool   `json:"ok"`
	Critical bool   `json:"critical"`
	Detail   string `json:"detail"`
}

func newDoctorCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that devmind can operate correctly",
		Long: `Run diagnostics against the configured database path and embedder.

Checks:
  - Configuration loads and validates
  - Database directory exists and is writable
  - Embedder is reachable (non-critical; falls back to keyword search)

Use --json for machine-readable output.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.Context(), cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runDoctor(ctx context.Context, cmd *cobra.Command, jsonOutput bool) error {
	var results []checkResult

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	cfg, cfgErr := config.Load(cwd)
	if cfgErr != nil {
		results = append(results, checkResult{Name: "config", Critical: true, Detail: cfgErr.Error()})
		return reportDoctor(cmd, jsonOutput, results)
	}
	results = append(results, checkResult{Name: "config", OK: true, Critical: true, Detail: "loaded and validated"})

	dbDir := filepath.Dir(cfg.Database.Path)
	results = append(results, checkWritableDir(dbDir))

	results = append(results, checkEmbedder(ctx, cfg, dbDir))

	return reportDoctor(cmd, jsonOutput, results)
}

func checkWritableDir(dir string) checkResult {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return checkResult{Name: "database directory", Critical: true, Detail: err.Error()}
	}
	probe := filepath.Join(dir, ".devmind-doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return checkResult{Name: "database directory", Critical: true, Detail: fmt.Sprintf("not writable: %v", err)}
	}
	_ = os.Remove(probe)
	return checkResult{Name: "database directory", OK: true, Critical: true, Detail: dir}
}

func checkEmbedder(ctx context.Context, cfg *config.Config, lockDir string) checkResult {
	if !cfg.VectorSearch.Enabled {
		return checkResult{Name: "embedder", OK: true, Detail: "vector search disabled in config"}
	}

	embedder, err := embed.NewEmbedder(ctx, embed.ProviderOllama, cfg.VectorSearch.ModelName, lockDir)
	if err != nil {
		return checkResult{Name: "embedder", Detail: err.Error()}
	}
	defer func() { _ = embedder.Close() }()

	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	// The embedder is lazily built, so it only reports available after a
	// first real call has initialized it.
	if _, err := embedder.Embed(probeCtx, "devmind doctor probe"); err != nil || !embedder.Available(probeCtx) {
		return checkResult{Name: "embedder", Detail: "unreachable; semantic_search falls back to keyword matching"}
	}
	return checkResult{Name: "embedder", OK: true, Detail: embedder.ModelName()}
}

func reportDoctor(cmd *cobra.Command, jsonOutput bool, results []checkResult) error {
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		for _, r := range results {
			status := "ok"
			if !r.OK {
				status = "fail"
				if !r.Critical {
					status = "warn"
				}
			}
			fmt.Fprintf(out, "[%s] %-20s %s\n", status, r.Name, r.Detail)
		}
	}

	for _, r := range results {
		if r.Critical && !r.OK {
			return fmt.Errorf("critical check failed: %s", r.Name)
		}
	}
	return nil
}
