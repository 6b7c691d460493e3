// file: internal/database/manager.go
// version: 1.4.0
// guid: b64f2a0d-8c7e-4519-9f3b-e05a1d6c8427

package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Manager owns the single lazily-opened connection handle. The first Get
// opens the database file and runs the full schema/migration sequence;
// later calls return the same handle. Close disposes the handle so a
// later Get re-opens and re-migrates, which is what "reset database"
// relies on.
type Manager struct {
	mu   sync.Mutex
	path string
	db   *sql.DB
}

// NewManager creates a manager for the database file at path. Nothing is
// opened until the first Get.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Path returns the database file location.
func (m *Manager) Path() string { return m.path }

// Get returns the shared connection handle, opening and migrating the
// database on first call. Concurrent callers serialize on the manager
// lock, so the migration sequence runs at most once per open handle.
func (m *Manager) Get() (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked()
}

func (m *Manager) getLocked() (*sql.DB, error) {
	if m.db != nil {
		return m.db, nil
	}

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", m.path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// The whole startup sequence is one transaction: full DDL, then the
	// versioned steps, then content migrations. A failure at any point
	// rolls everything back and startup aborts; a partially migrated
	// schema is unsafe to operate on.
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	m.db = db
	return m.db, nil
}

// Close disposes the shared handle. Idempotent; the next Get re-opens.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

// Reset closes the handle, deletes the database file, and re-opens a
// fresh, fully migrated database.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		if err := m.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		m.db = nil
	}
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove database file: %w", err)
	}
	// SQLite sidecar files would resurrect old state if left behind.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(m.path + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove database sidecar file: %w", err)
		}
	}

	_, err := m.getLocked()
	return err
}
