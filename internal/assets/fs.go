// file: internal/assets/fs.go
// version: 1.3.0
// guid: 5e92c7a0-8d14-4f6b-b3a9-027e6c5d18f4

// Package assets manages the on-disk files that sit beside the database:
// covers, portraits, emblems, gallery images and region maps. Everything
// is addressed by a path relative to the application data directory.
package assets

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FS is a file store rooted at the application data directory. All
// operations take paths relative to the root; paths that escape it are
// rejected.
type FS struct {
	root string
}

// NewFS creates a store rooted at dir, creating the directory if needed.
func NewFS(dir string) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}
	return &FS{root: dir}, nil
}

// Root returns the absolute data directory.
func (a *FS) Root() string { return a.root }

// resolve maps a relative path into the root, rejecting escapes.
func (a *FS) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("asset path %q escapes the data directory", relPath)
	}
	return filepath.Join(a.root, cleaned), nil
}

// Exists reports whether a file exists at relPath.
func (a *FS) Exists(relPath string) (bool, error) {
	full, err := a.resolve(relPath)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", relPath, err)
	}
	return true, nil
}

// WriteFile writes data at relPath, creating parent directories.
func (a *FS) WriteFile(relPath string, data []byte) error {
	full, err := a.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", relPath, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, err)
	}
	return nil
}

// CopyFile copies an external file into the store at relPath.
func (a *FS) CopyFile(srcPath, relPath string) error {
	full, err := a.resolve(relPath)
	if err != nil {
		return err
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", relPath, err)
	}
	dst, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", relPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy into %s: %w", relPath, err)
	}
	return dst.Sync()
}

// Remove deletes the file at relPath. Removing a missing file is not an
// error: deletes are retried by reconciliation jobs.
func (a *FS) Remove(relPath string) error {
	full, err := a.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", relPath, err)
	}
	return nil
}

// ListFiles walks one subdirectory of the store and returns the relative
// paths of every regular file in it. A missing subdirectory yields an
// empty list.
func (a *FS) ListFiles(subdir string) ([]string, error) {
	base, err := a.resolve(subdir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return []string{}, nil
	}

	files := []string{}
	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(a.root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", subdir, err)
	}
	return files, nil
}
