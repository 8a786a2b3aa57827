package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devmind-dev/memcore/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the user config file and its backups",
	}

	cmd.AddCommand(newConfigBackupCmd())
	cmd.AddCommand(newConfigRestoreCmd())
	cmd.AddCommand(newConfigListBackupsCmd())

	return cmd
}

func newConfigBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Back up the user config file",
		Long:  `Writes a timestamped copy of the user config next to the original, keeping the newest config.MaxBackups.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.BackupUserConfig()
			if err != nil {
				return fmt.Errorf("failed to backup config: %w", err)
			}
			if path == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no user config found, nothing to back up")
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "backed up config to %s\n", path)
			return err
		},
	}
}

func newConfigRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-path>",
		Short: "Restore the user config from a backup file",
		Long:  `Restores the user config from a backup produced by 'devmind config backup', backing up the current config first.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.RestoreUserConfig(args[0]); err != nil {
				return fmt.Errorf("failed to restore config: %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "restored config from %s\n", args[0])
			return err
		},
	}
}

func newConfigListBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-backups",
		Short: "List available user config backups, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			backups, err := config.ListUserConfigBackups()
			if err != nil {
				return fmt.Errorf("failed to list backups: %w", err)
			}
			if len(backups) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no config backups found")
				return err
			}
			out := cmd.OutOrStdout()
			for _, b := range backups {
				if _, err := fmt.Fprintln(out, b); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
