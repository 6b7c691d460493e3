// file: cmd/backup.go
// version: 1.0.0
// guid: 9a0b1c2d-3e4f-4a5b-8c6d-7e8f9a0b1c2d

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RafaelNCST/grimorium-sub002/internal/assets"
	"github.com/RafaelNCST/grimorium-sub002/internal/backup"
	"github.com/RafaelNCST/grimorium-sub002/internal/config"
)

// assetDirPaths resolves the image directories under the data dir.
func assetDirPaths() []string {
	dirs := make([]string, 0, len(assets.ImageDirs))
	for _, d := range assets.ImageDirs {
		dirs = append(dirs, filepath.Join(config.AppConfig.DataDir, d))
	}
	return dirs
}

// backupCmd archives the database and asset directories.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a compressed backup of the database and assets",
	Long: `Writes a timestamped tar.gz archive of the database file and the
image directories into <data-dir>/backups, alongside a sha256 checksum
file. Backups beyond the retention limit are pruned, oldest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := backup.DefaultConfig(config.AppConfig.DataDir)
		if keep, _ := cmd.Flags().GetInt("keep"); keep > 0 {
			cfg.MaxBackups = keep
		}

		info, err := backup.Create(config.AppConfig.DatabasePath, assetDirPaths(), cfg)
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Printf("Backup written: %s (%d bytes)\n", info.Path, info.Size)
		fmt.Printf("Checksum: %s\n", info.Checksum)
		return nil
	},
}

// listBackupsCmd prints the available backup archives.
var listBackupsCmd = &cobra.Command{
	Use:   "list-backups",
	Short: "List available backup archives",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := backup.DefaultConfig(config.AppConfig.DataDir)
		backups, err := backup.List(cfg.Dir)
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("No backups found")
			return nil
		}
		for _, b := range backups {
			fmt.Printf("%s  %10d bytes  %s\n", b.CreatedAt.Format("2006-01-02 15:04:05"), b.Size, b.Filename)
		}
		return nil
	},
}

// restoreCmd extracts a backup over the live data directory.
var restoreCmd = &cobra.Command{
	Use:   "restore <backup-file>",
	Short: "Restore the database and assets from a backup archive",
	Long: `Extracts a backup archive into the data directory, overwriting the
database file and any asset files the archive contains. The archive
checksum is verified against its sidecar file unless --no-verify is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		confirmed, _ := cmd.Flags().GetBool("yes")
		if !confirmed {
			return fmt.Errorf("refusing to overwrite live data without --yes")
		}
		skipVerify, _ := cmd.Flags().GetBool("no-verify")

		if err := backup.Restore(args[0], config.AppConfig.DataDir, !skipVerify); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Printf("Restored %s into %s\n", filepath.Base(args[0]), config.AppConfig.DataDir)
		return nil
	},
}

func init() {
	backupCmd.Flags().Int("keep", 0, "override the number of backups to retain")
	restoreCmd.Flags().Bool("yes", false, "confirm the restore")
	restoreCmd.Flags().Bool("no-verify", false, "skip checksum verification")
}
