// Package cmd provides the CLI commands for devmind.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devmind-dev/memcore/internal/logging"
	"github.com/devmind-dev/memcore/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the devmind CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devmind",
		Short: "Per-developer memory store and retrieval engine for AI coding assistants",
		Long: `devmind records the code, decisions, and conversations an AI coding
assistant produces and makes them searchable again, project by project
and session by session.

Run 'devmind serve' from an AI tool's MCP configuration to expose the
memory store as a set of JSON-RPC tools over stdio.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("devmind version {{.Version}}\n")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.devmind/logs/")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startLogging(*cobra.Command, []string) error {
	if !debugMode {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	return nil
}

func stopLogging(*cobra.Command, []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
