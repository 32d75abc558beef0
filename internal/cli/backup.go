package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garagedev/sltcraft/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, list, or restore MAIN database backups",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Copy MAIN to a timestamped backup file",
	Args:  cobra.NoArgs,
	RunE:  runBackupCreate,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups of the configured MAIN database",
	Args:  cobra.NoArgs,
	RunE:  runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <backup-path>",
	Short: "Copy a backup file back over MAIN",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupRestore,
}

var backupDir string

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.PersistentFlags().StringVar(&backupDir, "dir", "", "Backup directory (overrides SLTCRAFT_BACKUP_DIR)")
}

func backupTarget(cmd *cobra.Command) (mainDB, dir string, err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", "", err
	}
	dir = backupDir
	if dir == "" {
		dir = cfg.BackupDir
	}
	return cfg.MainDB, dir, nil
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	mainDB, dir, err := backupTarget(cmd)
	if err != nil {
		return err
	}
	path, err := backup.Create(mainDB, dir)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runBackupList(cmd *cobra.Command, args []string) error {
	mainDB, dir, err := backupTarget(cmd)
	if err != nil {
		return err
	}
	paths, err := backup.List(mainDB, dir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	mainDB, _, err := backupTarget(cmd)
	if err != nil {
		return err
	}
	if err := backup.Restore(args[0], mainDB); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "restored %s from %s\n", mainDB, args[0])
	return nil
}
