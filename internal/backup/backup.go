// file: internal/backup/backup.go
// version: 1.0.0
// guid: 4b8c1d2e-9f3a-4c5b-8d6e-7f0a1b2c3d4e

package backup

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// databaseEntry is the archive name of the database file. Asset
// directories keep their own basenames so a restore into the data
// directory reproduces the live layout.
const databaseEntry = "grimorium.db"

// Info describes a single backup archive on disk.
type Info struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// Config holds backup behavior settings.
type Config struct {
	Dir              string
	MaxBackups       int
	CompressionLevel int
}

// DefaultConfig returns the backup configuration for a data directory.
func DefaultConfig(dataDir string) Config {
	return Config{
		Dir:              filepath.Join(dataDir, "backups"),
		MaxBackups:       10,
		CompressionLevel: gzip.BestCompression,
	}
}

// Create writes a compressed archive containing the project database and the
// given asset directories, records a sidecar checksum, and prunes backups
// beyond the configured maximum. Asset directories that do not exist yet are
// skipped.
func Create(databasePath string, assetDirs []string, config Config) (*Info, error) {
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("grimorium_%s.tar.gz", timestamp)
	backupPath := filepath.Join(config.Dir, filename)

	if err := writeArchive(backupPath, databasePath, assetDirs, config.CompressionLevel); err != nil {
		os.Remove(backupPath)
		return nil, err
	}

	fileInfo, err := os.Stat(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup file: %w", err)
	}

	checksum, err := fileChecksum(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksum: %w", err)
	}
	if err := os.WriteFile(backupPath+".sha256", []byte(checksum+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("failed to write checksum file: %w", err)
	}

	if err := pruneOld(config.Dir, config.MaxBackups); err != nil {
		fmt.Printf("Warning: failed to prune old backups: %v\n", err)
	}

	return &Info{
		Filename:  filename,
		Path:      backupPath,
		Size:      fileInfo.Size(),
		Checksum:  checksum,
		CreatedAt: time.Now(),
	}, nil
}

func writeArchive(backupPath, databasePath string, assetDirs []string, level int) error {
	backupFile, err := os.Create(backupPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer backupFile.Close()

	gzipWriter, err := gzip.NewWriterLevel(backupFile, level)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}
	defer gzipWriter.Close()

	tarWriter := tar.NewWriter(gzipWriter)
	defer tarWriter.Close()

	if err := addFile(tarWriter, databasePath, databaseEntry); err != nil {
		return fmt.Errorf("failed to archive database: %w", err)
	}
	for _, dir := range assetDirs {
		if err := addAssetTree(tarWriter, dir); err != nil {
			return fmt.Errorf("failed to archive %s: %w", filepath.Base(dir), err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	if err := backupFile.Close(); err != nil {
		return fmt.Errorf("failed to close backup file: %w", err)
	}
	return nil
}

// Restore extracts a backup archive into targetDir. The database lands at
// targetDir/grimorium.db and asset directories under their own names, so
// restoring into the data directory puts everything back in place. When
// verify is true the archive checksum is compared against its sidecar
// file first.
func Restore(backupPath, targetDir string, verify bool) error {
	if verify {
		if err := verifyChecksum(backupPath); err != nil {
			return err
		}
	}

	backupFile, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer backupFile.Close()

	gzipReader, err := gzip.NewReader(backupFile)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		// Refuse entries that would escape the target directory.
		cleaned := filepath.Clean(header.Name)
		if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
			return fmt.Errorf("backup contains invalid entry path: %s", header.Name)
		}
		target := filepath.Join(targetDir, cleaned)

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create parent directory for %s: %w", target, err)
			}
			outFile, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("failed to create file %s: %w", target, err)
			}
			if _, err := io.Copy(outFile, tarReader); err != nil {
				outFile.Close()
				return fmt.Errorf("failed to write file %s: %w", target, err)
			}
			outFile.Close()
			if err := os.Chmod(target, os.FileMode(header.Mode)); err != nil {
				return fmt.Errorf("failed to set permissions on %s: %w", target, err)
			}
		default:
			fmt.Printf("Warning: skipping unsupported entry type %d for %s\n", header.Typeflag, header.Name)
		}
	}

	return nil
}

// List returns all backup archives in dir, newest first.
func List(dir string) ([]Info, error) {
	var backups []Info

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return backups, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tar.gz") {
			continue
		}
		fileInfo, err := entry.Info()
		if err != nil {
			continue
		}

		backupPath := filepath.Join(dir, entry.Name())
		checksum := readSidecarChecksum(backupPath)

		backups = append(backups, Info{
			Filename:  entry.Name(),
			Path:      backupPath,
			Size:      fileInfo.Size(),
			Checksum:  checksum,
			CreatedAt: fileInfo.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Delete removes a backup archive and its checksum sidecar.
func Delete(backupPath string) error {
	if err := os.Remove(backupPath); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	os.Remove(backupPath + ".sha256")
	return nil
}

func addFile(tarWriter *tar.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(tarWriter, file)
	return err
}

func addAssetTree(tarWriter *tar.Writer, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // directory has no assets yet
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("asset path is not a directory: %s", dir)
	}

	base := filepath.Base(dir)
	return filepath.Walk(dir, func(file string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(dir, file)
		if err != nil {
			return err
		}

		header, err := tar.FileInfoHeader(fi, fi.Name())
		if err != nil {
			return err
		}
		if relPath == "." {
			header.Name = base
		} else {
			header.Name = filepath.ToSlash(filepath.Join(base, relPath))
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}

		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(tarWriter, f)
		return err
	})
}

func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func readSidecarChecksum(backupPath string) string {
	data, err := os.ReadFile(backupPath + ".sha256")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func verifyChecksum(backupPath string) error {
	expected := readSidecarChecksum(backupPath)
	if expected == "" {
		return fmt.Errorf("no checksum file found for %s", filepath.Base(backupPath))
	}
	actual, err := fileChecksum(backupPath)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}
	if actual != expected {
		return fmt.Errorf("checksum mismatch for %s: backup may be corrupted", filepath.Base(backupPath))
	}
	return nil
}

func pruneOld(dir string, maxBackups int) error {
	if maxBackups <= 0 {
		return nil
	}
	backups, err := List(dir)
	if err != nil {
		return err
	}
	if len(backups) <= maxBackups {
		return nil
	}

	// List is newest-first, so everything past maxBackups is stale.
	for _, stale := range backups[maxBackups:] {
		if err := Delete(stale.Path); err != nil {
			fmt.Printf("Warning: failed to delete old backup %s: %v\n", stale.Filename, err)
		}
	}
	return nil
}
