// file: cmd/diagnostics.go
// version: 1.1.0
// guid: b2e56d0a-9c14-4f78-8a3e-61d0c7b5f492

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RafaelNCST/grimorium-sub002/internal/assets"
	"github.com/RafaelNCST/grimorium-sub002/internal/config"
)

// statTables is the row-count inventory printed by the stats command.
var statTables = []string{
	"books",
	"characters",
	"factions",
	"races",
	"items",
	"regions",
	"region_maps",
	"map_markers",
	"chapters",
	"notes",
	"plot_arcs",
	"entity_logs",
	"gallery_images",
	"power_systems",
	"entity_versions",
	"entity_relationships",
}

// statsCmd prints database row counts and asset directory health.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database and asset store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, fs, err := openStore()
		if err != nil {
			return err
		}
		defer store.Manager().Close()

		db, err := store.Manager().Get()
		if err != nil {
			return err
		}

		fmt.Printf("Database: %s\n\n", config.AppConfig.DatabasePath)
		for _, table := range statTables {
			var count int
			if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
				return fmt.Errorf("failed to count %s: %w", table, err)
			}
			fmt.Printf("  %-22s %d\n", table, count)
		}

		stats, err := assets.NewReconciler(store, fs).CollectStats()
		if err != nil {
			return err
		}
		fmt.Printf("\nAssets: %s\n", fs.Root())
		fmt.Printf("  %-22s %d\n", "files", stats.Files)
		fmt.Printf("  %-22s %d\n", "referenced", stats.Referenced)
		fmt.Printf("  %-22s %d\n", "orphans", stats.Orphans)
		return nil
	},
}
