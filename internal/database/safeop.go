// file: internal/database/safeop.go
// version: 1.3.0
// guid: e81f4a6b-2c5d-4903-b7fa-6d09c3e1a845

package database

import (
	"errors"
	"log"

	"github.com/RafaelNCST/grimorium-sub002/internal/metrics"
)

// Notifier is the surface the data layer uses to report classified
// failures to the user interface. The core only ever calls ShowError.
type Notifier interface {
	ShowError(kind ErrorKind)
}

// nopNotifier is the default sink when no UI is attached (tests, CLI).
type nopNotifier struct{}

func (nopNotifier) ShowError(ErrorKind) {}

// safe runs a storage operation under the uniform failure policy: on
// error the failure is classified, logged with its operation name,
// counted, pushed to the notification sink, and returned as a
// *StorageError so callers can still branch on the kind.
//
// ErrNotFound is flow control, not a storage failure; it passes through
// untouched.
func (s *Store) safe(op string, fn func() error) error {
	metrics.IncStorageOp(op)
	err := fn()
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	classified := ClassifyError(op, err)
	log.Printf("storage failure in %s: kind=%s err=%v", op, classified.Kind, err)
	metrics.IncStorageFailure(string(classified.Kind))
	s.notifier.ShowError(classified.Kind)
	return classified
}
