// file: internal/assets/reconcile.go
// version: 1.4.0
// guid: ab07d3f9-1e58-4c26-9b74-e0c5a82d61f3

package assets

import (
	"fmt"
	"log"
	"path"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/database"
	"github.com/RafaelNCST/grimorium-sub002/internal/metrics"
)

// ImageDirs are the store subdirectories that hold entity images.
// Reconciliation sweeps only these; files outside them (the database
// itself, backups) are never touched.
var ImageDirs = []string{"covers", "portraits", "emblems", "gallery", "maps"}

// Reconciler repairs drift between database rows and asset files.
type Reconciler struct {
	store *database.Store
	fs    *FS
}

// NewReconciler wires a reconciler over a store and its file store.
func NewReconciler(store *database.Store, fs *FS) *Reconciler {
	return &Reconciler{store: store, fs: fs}
}

// OrphanScanReport lists files on disk that no row references.
type OrphanScanReport struct {
	ScannedFiles int      `json:"scanned_files"`
	Orphans      []string `json:"orphans"`
}

// CleanupReport summarizes one cleanup run.
type CleanupReport struct {
	DuplicateMapsFixed int      `json:"duplicate_maps_fixed"`
	Removed            []string `json:"removed"`
	Errors             []string `json:"errors,omitempty"`
}

// referencedPaths collects every asset path the database currently
// references, normalized to slash-separated relative paths.
func (r *Reconciler) referencedPaths() (map[string]bool, error) {
	db, err := r.store.Manager().Get()
	if err != nil {
		return nil, err
	}

	queries := []string{
		"SELECT cover_path FROM books WHERE cover_path IS NOT NULL",
		"SELECT image_path FROM characters WHERE image_path IS NOT NULL",
		"SELECT emblem_path FROM factions WHERE emblem_path IS NOT NULL",
		"SELECT image_path FROM races WHERE image_path IS NOT NULL",
		"SELECT image_path FROM items WHERE image_path IS NOT NULL",
		"SELECT image_path FROM gallery_images",
		"SELECT thumbnail_path FROM gallery_images WHERE thumbnail_path IS NOT NULL AND thumbnail_path NOT LIKE 'data:%'",
		"SELECT image_path FROM region_maps",
		"SELECT image_path FROM chapter_mentions WHERE image_path IS NOT NULL",
	}

	referenced := map[string]bool{}
	for _, q := range queries {
		rows, err := db.Query(q)
		if err != nil {
			return nil, fmt.Errorf("failed to collect referenced paths: %w", err)
		}
		for rows.Next() {
			var p string
			if err := rows.Scan(&p); err != nil {
				rows.Close()
				return nil, err
			}
			if p != "" {
				referenced[path.Clean(p)] = true
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return referenced, nil
}

// ScanOrphanedFiles reports files under the image directories that no
// database row references. Report only; nothing is deleted.
func (r *Reconciler) ScanOrphanedFiles() (*OrphanScanReport, error) {
	referenced, err := r.referencedPaths()
	if err != nil {
		return nil, err
	}

	report := &OrphanScanReport{Orphans: []string{}}
	for _, dir := range ImageDirs {
		files, err := r.fs.ListFiles(dir)
		if err != nil {
			return nil, err
		}
		report.ScannedFiles += len(files)
		for _, f := range files {
			if !referenced[path.Clean(f)] {
				report.Orphans = append(report.Orphans, f)
			}
		}
	}
	return report, nil
}

// CleanupOrphanedFiles repairs duplicate map rows first, then rescans
// and deletes every orphaned file. Per-file failures are accumulated so
// one locked file does not stop the sweep.
func (r *Reconciler) CleanupOrphanedFiles() (*CleanupReport, error) {
	report := &CleanupReport{Removed: []string{}}

	fixed, err := r.FixDuplicateMaps()
	if err != nil {
		return nil, err
	}
	report.DuplicateMapsFixed = fixed

	scan, err := r.ScanOrphanedFiles()
	if err != nil {
		return nil, err
	}

	for _, orphan := range scan.Orphans {
		if err := r.fs.Remove(orphan); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", orphan, err))
			continue
		}
		report.Removed = append(report.Removed, orphan)
	}
	if len(report.Removed) > 0 {
		metrics.AddOrphanFilesRemoved(len(report.Removed))
		log.Printf("Removed %d orphaned asset files", len(report.Removed))
	}
	return report, nil
}

// FixDuplicateMaps collapses duplicate (region, version) map rows left
// behind by databases that predate the uniqueness constraint. The most
// recently updated row wins; the losers' rows and image files go. It
// returns the number of duplicate rows removed.
func (r *Reconciler) FixDuplicateMaps() (int, error) {
	db, err := r.store.Manager().Get()
	if err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin duplicate-map fix: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT id, region_id, version_id, image_path, updated_at FROM region_maps
		WHERE (region_id, version_id) IN (
			SELECT region_id, version_id FROM region_maps
			GROUP BY region_id, version_id HAVING COUNT(*) > 1
		) ORDER BY region_id, version_id, updated_at DESC`)
	if err != nil {
		return 0, fmt.Errorf("failed to find duplicate maps: %w", err)
	}

	type mapRow struct {
		id        string
		imagePath string
	}
	losers := []mapRow{}
	seen := map[string]bool{}
	for rows.Next() {
		var id, regionID, versionID, imagePath string
		var updatedAt time.Time
		if err := rows.Scan(&id, &regionID, &versionID, &imagePath, &updatedAt); err != nil {
			rows.Close()
			return 0, err
		}
		key := regionID + "\x00" + versionID
		if !seen[key] {
			// First row per pair is the newest; it survives.
			seen[key] = true
			continue
		}
		losers = append(losers, mapRow{id: id, imagePath: imagePath})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	for _, loser := range losers {
		if _, err := tx.Exec("DELETE FROM region_maps WHERE id = ?", loser.id); err != nil {
			return 0, fmt.Errorf("failed to delete duplicate map %s: %w", loser.id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit duplicate-map fix: %w", err)
	}

	for _, loser := range losers {
		if loser.imagePath == "" {
			continue
		}
		if err := r.fs.Remove(loser.imagePath); err != nil {
			log.Printf("Warning: failed to remove duplicate map file %s: %v", loser.imagePath, err)
		}
	}
	if len(losers) > 0 {
		for range losers {
			metrics.IncDuplicateMapsFixed()
		}
		log.Printf("Fixed %d duplicate region maps", len(losers))
	}
	return len(losers), nil
}

// Stats summarizes the asset store for diagnostics.
type Stats struct {
	Files      int `json:"files"`
	Referenced int `json:"referenced"`
	Orphans    int `json:"orphans"`
}

// CollectStats walks the image directories and cross-checks them against
// the database.
func (r *Reconciler) CollectStats() (*Stats, error) {
	scan, err := r.ScanOrphanedFiles()
	if err != nil {
		return nil, err
	}
	stats := &Stats{
		Files:      scan.ScannedFiles,
		Referenced: scan.ScannedFiles - len(scan.Orphans),
		Orphans:    len(scan.Orphans),
	}
	return stats, nil
}

var _ database.AssetRemover = (*FS)(nil)
var _ database.AssetWriter = (*FS)(nil)
