// file: cmd/reconcile.go
// version: 1.2.0
// guid: 6f9a3c81-25de-47b4-9e02-d8b1f4a7c539

package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/RafaelNCST/grimorium-sub002/internal/assets"
)

// scanOrphansCmd reports asset files nothing in the database references.
var scanOrphansCmd = &cobra.Command{
	Use:   "scan-orphans",
	Short: "List asset files no database row references",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, fs, err := openStore()
		if err != nil {
			return err
		}
		defer store.Manager().Close()

		report, err := assets.NewReconciler(store, fs).ScanOrphanedFiles()
		if err != nil {
			return err
		}
		fmt.Printf("Scanned %d files, %d orphaned\n", report.ScannedFiles, len(report.Orphans))
		for _, p := range report.Orphans {
			fmt.Printf("  %s\n", p)
		}
		return nil
	},
}

// cleanupOrphansCmd removes orphaned asset files. Duplicate map rows are
// fixed first so their loser images count as orphans in the same pass.
var cleanupOrphansCmd = &cobra.Command{
	Use:   "cleanup-orphans",
	Short: "Remove asset files no database row references",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, fs, err := openStore()
		if err != nil {
			return err
		}
		defer store.Manager().Close()

		rec := assets.NewReconciler(store, fs)
		fixed, err := rec.FixDuplicateMaps()
		if err != nil {
			return err
		}
		if fixed > 0 {
			fmt.Printf("Fixed %d duplicate map entries\n", fixed)
		}

		report, err := rec.ScanOrphanedFiles()
		if err != nil {
			return err
		}
		if len(report.Orphans) == 0 {
			fmt.Println("No orphaned files found")
			return nil
		}

		bar := progressbar.NewOptions(len(report.Orphans),
			progressbar.OptionSetDescription("Removing orphans"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		removed := 0
		var failures []string
		for _, p := range report.Orphans {
			if err := fs.Remove(p); err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", p, err))
			} else {
				removed++
			}
			bar.Add(1)
		}
		fmt.Printf("Removed %d of %d orphaned files\n", removed, len(report.Orphans))
		for _, f := range failures {
			fmt.Printf("  error: %s\n", f)
		}
		return nil
	},
}

// fixMapsCmd collapses duplicate region map rows without touching orphans.
var fixMapsCmd = &cobra.Command{
	Use:   "fix-maps",
	Short: "Collapse duplicate region map entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, fs, err := openStore()
		if err != nil {
			return err
		}
		defer store.Manager().Close()

		fixed, err := assets.NewReconciler(store, fs).FixDuplicateMaps()
		if err != nil {
			return err
		}
		fmt.Printf("Fixed %d duplicate map entries\n", fixed)
		return nil
	},
}
