// file: internal/assets/reconcile_test.go
// version: 1.1.0
// guid: 2a6f0c8d-5e93-4b17-84af-d1b7e3c9f025

package assets

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RafaelNCST/grimorium-sub002/internal/database"
	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

// setupReconciler opens a fresh database and file store sharing one temp
// directory, the way the application wires them.
func setupReconciler(t *testing.T) (*database.Store, *FS, *Reconciler) {
	t.Helper()
	root := t.TempDir()
	fs, err := NewFS(root)
	require.NoError(t, err)

	mgr := database.NewManager(filepath.Join(root, "grimorium.db"))
	_, err = mgr.Get()
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	store := database.NewStore(mgr).WithAssetRemover(fs)
	return store, fs, NewReconciler(store, fs)
}

func TestScanOrphanedFiles(t *testing.T) {
	store, fs, rec := setupReconciler(t)

	book, err := store.CreateBook("Book", "", nil, nil)
	require.NoError(t, err)
	_, err = store.CreateGalleryImage(book.ID, "gallery/kept.png", nil, nil)
	require.NoError(t, err)

	require.NoError(t, fs.WriteFile("gallery/kept.png", []byte("referenced")))
	require.NoError(t, fs.WriteFile("gallery/orphan.png", []byte("orphan")))
	require.NoError(t, fs.WriteFile("portraits/stray.png", []byte("orphan")))

	report, err := rec.ScanOrphanedFiles()
	require.NoError(t, err)
	assert.Equal(t, 3, report.ScannedFiles)
	assert.ElementsMatch(t, []string{"gallery/orphan.png", "portraits/stray.png"}, report.Orphans)

	// Scan is report-only.
	exists, err := fs.Exists("gallery/orphan.png")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCleanupOrphanedFiles(t *testing.T) {
	store, fs, rec := setupReconciler(t)

	book, err := store.CreateBook("Book", "", nil, nil)
	require.NoError(t, err)
	_, err = store.CreateGalleryImage(book.ID, "gallery/kept.png", nil, nil)
	require.NoError(t, err)

	require.NoError(t, fs.WriteFile("gallery/kept.png", []byte("referenced")))
	require.NoError(t, fs.WriteFile("covers/orphan.png", []byte("orphan")))

	report, err := rec.CleanupOrphanedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"covers/orphan.png"}, report.Removed)
	assert.Empty(t, report.Errors)

	exists, err := fs.Exists("covers/orphan.png")
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = fs.Exists("gallery/kept.png")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFixDuplicateMaps(t *testing.T) {
	store, fs, rec := setupReconciler(t)

	book, err := store.CreateBook("Atlas", "", nil, nil)
	require.NoError(t, err)
	region, err := store.CreateRegion(book.ID, "Continent", nil)
	require.NoError(t, err)
	versions, err := store.GetVersions(models.EntityTypeRegion, region.ID)
	require.NoError(t, err)
	versionID := versions[0].ID

	db, err := store.Manager().Get()
	require.NoError(t, err)

	// Rebuild region_maps the way databases predating the uniqueness
	// constraint stored it, then plant duplicates.
	_, err = db.Exec("DROP TABLE region_maps")
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE region_maps (
		id TEXT PRIMARY KEY,
		region_id TEXT NOT NULL,
		version_id TEXT NOT NULL,
		image_path TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO region_maps (id, region_id, version_id, image_path, updated_at)
		VALUES ('old', ?, ?, 'maps/old.png', '2024-01-01 00:00:00'),
		       ('new', ?, ?, 'maps/new.png', '2025-06-01 00:00:00')`,
		region.ID, versionID, region.ID, versionID)
	require.NoError(t, err)
	require.NoError(t, fs.WriteFile("maps/old.png", []byte("old")))
	require.NoError(t, fs.WriteFile("maps/new.png", []byte("new")))

	fixed, err := rec.FixDuplicateMaps()
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	// The newest row survives with its file; the loser is fully gone.
	maps, err := store.GetRegionMaps(region.ID)
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, "new", maps[0].ID)

	exists, err := fs.Exists("maps/old.png")
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = fs.Exists("maps/new.png")
	require.NoError(t, err)
	assert.True(t, exists)

	// Idempotent once the duplicates are gone.
	fixed, err = rec.FixDuplicateMaps()
	require.NoError(t, err)
	assert.Equal(t, 0, fixed)
}

func TestCollectStats(t *testing.T) {
	store, fs, rec := setupReconciler(t)

	book, err := store.CreateBook("Book", "", nil, nil)
	require.NoError(t, err)
	_, err = store.CreateGalleryImage(book.ID, "gallery/kept.png", nil, nil)
	require.NoError(t, err)
	require.NoError(t, fs.WriteFile("gallery/kept.png", []byte("x")))
	require.NoError(t, fs.WriteFile("maps/orphan.png", []byte("x")))

	stats, err := rec.CollectStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 1, stats.Referenced)
	assert.Equal(t, 1, stats.Orphans)
}
