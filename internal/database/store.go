// file: internal/database/store.go
// version: 1.5.0
// guid: 74c0e8b1-3d5f-4a26-b9e7-0f2c9a4d6e18

package database

import (
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// AssetRemover removes an asset file stored at a path relative to the
// application data directory. Implemented by the assets package; the data
// layer needs it for deletes whose on-disk files a CASCADE cannot reach.
type AssetRemover interface {
	Remove(relPath string) error
}

// nopRemover is the default when no asset store is attached (tests).
type nopRemover struct{}

func (nopRemover) Remove(string) error { return nil }

// Store is the data-access layer. One Store serves every entity type;
// the per-entity operations are grouped by file (books.go, characters.go,
// ...). All operations route through the safe wrapper in safeop.go.
type Store struct {
	mgr      *Manager
	notifier Notifier
	assets   AssetRemover
}

// NewStore creates a store over the given manager with no UI sink and no
// asset store attached.
func NewStore(mgr *Manager) *Store {
	return &Store{mgr: mgr, notifier: nopNotifier{}, assets: nopRemover{}}
}

// WithNotifier attaches the UI notification sink.
func (s *Store) WithNotifier(n Notifier) *Store {
	if n != nil {
		s.notifier = n
	}
	return s
}

// WithAssetRemover attaches the on-disk asset store.
func (s *Store) WithAssetRemover(r AssetRemover) *Store {
	if r != nil {
		s.assets = r
	}
	return s
}

// Manager exposes the underlying connection manager for maintenance code.
func (s *Store) Manager() *Manager { return s.mgr }

// newULID generates a sortable unique id for new rows.
func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
