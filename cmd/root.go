// file: cmd/root.go
// version: 1.5.0
// guid: 1d4c7f2a-8b6e-4930-a5d1-c27e9f04b863

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RafaelNCST/grimorium-sub002/internal/assets"
	"github.com/RafaelNCST/grimorium-sub002/internal/config"
	"github.com/RafaelNCST/grimorium-sub002/internal/database"
)

var cfgFile string
var dataDir string
var databasePath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "grimorium",
	Short: "Maintenance tooling for the Grimorium worldbuilding database",
	Long: `Grimorium keeps a writer's worldbuilding data in a single local
SQLite database plus an asset directory for images and maps.

This tool opens that database directly for maintenance: migrations,
asset reconciliation, diagnostics, and recovery.`,
}

// openStore opens the configured database (running migrations) and the
// asset store next to it.
func openStore() (*database.Store, *assets.FS, error) {
	fs, err := assets.NewFS(config.AppConfig.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open asset store: %w", err)
	}
	mgr := database.NewManager(config.AppConfig.DatabasePath)
	if _, err := mgr.Get(); err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := database.NewStore(mgr).WithAssetRemover(fs)
	return store, fs, nil
}

// dbPathCmd prints the resolved database location.
var dbPathCmd = &cobra.Command{
	Use:   "db-path",
	Short: "Print the database file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(config.AppConfig.DatabasePath)
		return nil
	},
}

// resetCmd wipes the database file and recreates an empty schema.
var resetCmd = &cobra.Command{
	Use:   "reset-db",
	Short: "Delete the database and recreate an empty one",
	Long: `Deletes the database file (including WAL sidecars) and recreates an
empty schema at the latest version. Asset files are left in place; run
cleanup-orphans afterwards to remove them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		confirmed, _ := cmd.Flags().GetBool("yes")
		if !confirmed {
			return fmt.Errorf("refusing to reset without --yes")
		}
		mgr := database.NewManager(config.AppConfig.DatabasePath)
		if err := mgr.Reset(); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
		defer mgr.Close()
		fmt.Printf("Database reset: %s\n", config.AppConfig.DatabasePath)
		return nil
	},
}

// historyCmd prints the applied migration ledger.
var historyCmd = &cobra.Command{
	Use:   "migrations",
	Short: "Show applied migration history",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		defer store.Manager().Close()

		db, err := store.Manager().Get()
		if err != nil {
			return err
		}
		records, err := database.GetMigrationHistory(db)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No migrations recorded")
			return nil
		}
		for _, r := range records {
			fmt.Printf("%3d  %s  %s\n", r.Version, r.AppliedAt.Format("2006-01-02 15:04:05"), r.Description)
		}
		return nil
	},
}

// migrateThumbnailsCmd moves inline base64 thumbnails out to files.
var migrateThumbnailsCmd = &cobra.Command{
	Use:   "migrate-thumbnails",
	Short: "Move inline base64 thumbnails out of the database into files",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, fs, err := openStore()
		if err != nil {
			return err
		}
		defer store.Manager().Close()

		report, err := store.MigrateThumbnails(fs)
		if err != nil {
			return err
		}
		fmt.Printf("Migrated %d thumbnails, skipped %d\n", report.Migrated, report.Skipped)
		for _, e := range report.Errors {
			fmt.Printf("  error: %s\n", e)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "application data directory")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "", "path to the database file (default: <data-dir>/grimorium.db)")

	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.AddCommand(dbPathCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(migrateThumbnailsCmd)
	rootCmd.AddCommand(scanOrphansCmd)
	rootCmd.AddCommand(cleanupOrphansCmd)
	rootCmd.AddCommand(fixMapsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(listBackupsCmd)
	rootCmd.AddCommand(restoreCmd)

	resetCmd.Flags().Bool("yes", false, "confirm the reset")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.AutomaticEnv()
		if err := viper.ReadInConfig(); err == nil {
			fmt.Println("Using config file:", viper.ConfigFileUsed())
		}
	} else {
		viper.AutomaticEnv()
	}

	config.InitConfig()
	if err := config.LoadConfigFromFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}
