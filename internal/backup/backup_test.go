// file: internal/backup/backup_test.go
// version: 1.0.0
// guid: 6d2e3f4a-5b6c-4d7e-8f9a-0b1c2d3e4f5a

package backup

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeProject lays out a fake data directory with a database file and a
// couple of asset directories, returning the db path and the asset dirs.
func writeProject(t *testing.T) (string, []string) {
	t.Helper()
	dataDir := t.TempDir()

	dbPath := filepath.Join(dataDir, "grimorium.db")
	if err := os.WriteFile(dbPath, []byte("sqlite database contents"), 0644); err != nil {
		t.Fatalf("failed to write database file: %v", err)
	}

	portraits := filepath.Join(dataDir, "portraits")
	if err := os.MkdirAll(portraits, 0755); err != nil {
		t.Fatalf("failed to create asset directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(portraits, "hero.png"), []byte("png bytes"), 0644); err != nil {
		t.Fatalf("failed to write asset file: %v", err)
	}

	maps := filepath.Join(dataDir, "maps")
	if err := os.MkdirAll(maps, 0755); err != nil {
		t.Fatalf("failed to create asset directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(maps, "westlands.jpg"), []byte("jpg bytes"), 0644); err != nil {
		t.Fatalf("failed to write asset file: %v", err)
	}

	return dbPath, []string{portraits, maps}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("/data")

	if config.Dir != filepath.Join("/data", "backups") {
		t.Errorf("Expected Dir to be under /data, got '%s'", config.Dir)
	}
	if config.MaxBackups != 10 {
		t.Errorf("Expected MaxBackups to be 10, got %d", config.MaxBackups)
	}
	if config.CompressionLevel != gzip.BestCompression {
		t.Errorf("Expected CompressionLevel to be %d, got %d", gzip.BestCompression, config.CompressionLevel)
	}
}

func TestCreateAndRestoreRoundTrip(t *testing.T) {
	dbPath, assetDirs := writeProject(t)
	config := DefaultConfig(t.TempDir())

	info, err := Create(dbPath, assetDirs, config)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if info.Size <= 0 {
		t.Errorf("Expected positive backup size, got %d", info.Size)
	}
	if len(info.Checksum) != 64 {
		t.Errorf("Expected 64-char sha256 hex checksum, got %d chars", len(info.Checksum))
	}
	if _, err := os.Stat(info.Path + ".sha256"); err != nil {
		t.Errorf("Expected checksum sidecar file: %v", err)
	}

	restoreDir := t.TempDir()
	if err := Restore(info.Path, restoreDir, true); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	db, err := os.ReadFile(filepath.Join(restoreDir, "grimorium.db"))
	if err != nil {
		t.Fatalf("restored database missing: %v", err)
	}
	if string(db) != "sqlite database contents" {
		t.Errorf("restored database contents differ: %q", db)
	}

	asset, err := os.ReadFile(filepath.Join(restoreDir, "portraits", "hero.png"))
	if err != nil {
		t.Fatalf("restored asset missing: %v", err)
	}
	if string(asset) != "png bytes" {
		t.Errorf("restored asset contents differ: %q", asset)
	}
	if _, err := os.ReadFile(filepath.Join(restoreDir, "maps", "westlands.jpg")); err != nil {
		t.Errorf("restored map asset missing: %v", err)
	}
}

func TestCreateWithoutAssets(t *testing.T) {
	dbPath, _ := writeProject(t)
	config := DefaultConfig(t.TempDir())

	info, err := Create(dbPath, []string{filepath.Join(t.TempDir(), "missing")}, config)
	if err != nil {
		t.Fatalf("Create failed without asset directories: %v", err)
	}

	restoreDir := t.TempDir()
	if err := Restore(info.Path, restoreDir, false); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(restoreDir, "grimorium.db")); err != nil {
		t.Errorf("restored database missing: %v", err)
	}
}

func TestRestoreDetectsCorruption(t *testing.T) {
	dbPath, assetDirs := writeProject(t)
	config := DefaultConfig(t.TempDir())

	info, err := Create(dbPath, assetDirs, config)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Flip bytes in the archive so the sidecar checksum no longer matches.
	f, err := os.OpenFile(info.Path, os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("failed to open backup for tampering: %v", err)
	}
	if _, err := f.WriteAt([]byte{0x00, 0x00, 0x00, 0x00}, 8); err != nil {
		t.Fatalf("failed to tamper with backup: %v", err)
	}
	f.Close()

	err = Restore(info.Path, t.TempDir(), true)
	if err == nil {
		t.Fatal("Expected checksum mismatch error, got nil")
	}
}

func TestListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	names := []string{"grimorium_20240101_000000.tar.gz", "grimorium_20250601_000000.tar.gz", "grimorium_20230101_000000.tar.gz"}
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{base.AddDate(1, 0, 0), base.AddDate(2, 5, 0), base}

	for i, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("archive"), 0644); err != nil {
			t.Fatalf("failed to write fake backup: %v", err)
		}
		if err := os.Chtimes(path, times[i], times[i]); err != nil {
			t.Fatalf("failed to set mtime: %v", err)
		}
	}
	// Non-archive files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write stray file: %v", err)
	}

	backups, err := List(dir)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("Expected 3 backups, got %d", len(backups))
	}
	if backups[0].Filename != "grimorium_20250601_000000.tar.gz" {
		t.Errorf("Expected newest backup first, got %s", backups[0].Filename)
	}
	if backups[2].Filename != "grimorium_20230101_000000.tar.gz" {
		t.Errorf("Expected oldest backup last, got %s", backups[2].Filename)
	}
}

func TestListMissingDirectory(t *testing.T) {
	backups, err := List(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("List failed on missing directory: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("Expected no backups, got %d", len(backups))
	}
}

func TestPruneOldKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	names := []string{
		"grimorium_20250101_000000.tar.gz",
		"grimorium_20250102_000000.tar.gz",
		"grimorium_20250103_000000.tar.gz",
		"grimorium_20250104_000000.tar.gz",
	}
	for i, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("archive"), 0644); err != nil {
			t.Fatalf("failed to write fake backup: %v", err)
		}
		if err := os.WriteFile(path+".sha256", []byte("abc\n"), 0644); err != nil {
			t.Fatalf("failed to write sidecar: %v", err)
		}
		mtime := base.AddDate(0, 0, i)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("failed to set mtime: %v", err)
		}
	}

	if err := pruneOld(dir, 2); err != nil {
		t.Fatalf("pruneOld failed: %v", err)
	}

	backups, err := List(dir)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("Expected 2 backups after prune, got %d", len(backups))
	}
	if backups[0].Filename != names[3] || backups[1].Filename != names[2] {
		t.Errorf("Wrong backups survived prune: %s, %s", backups[0].Filename, backups[1].Filename)
	}
	// Sidecars of pruned backups go with them.
	if _, err := os.Stat(filepath.Join(dir, names[0]+".sha256")); !os.IsNotExist(err) {
		t.Errorf("Expected pruned sidecar to be removed")
	}
}

func TestDeleteRemovesSidecar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grimorium_20250101_000000.tar.gz")
	if err := os.WriteFile(path, []byte("archive"), 0644); err != nil {
		t.Fatalf("failed to write backup: %v", err)
	}
	if err := os.WriteFile(path+".sha256", []byte("abc\n"), 0644); err != nil {
		t.Fatalf("failed to write sidecar: %v", err)
	}

	if err := Delete(path); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected backup to be removed")
	}
	if _, err := os.Stat(path + ".sha256"); !os.IsNotExist(err) {
		t.Errorf("Expected sidecar to be removed")
	}
}
