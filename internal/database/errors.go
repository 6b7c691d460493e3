// file: internal/database/errors.go
// version: 1.2.0
// guid: 5e0b7c2d-9a14-4f6e-83b9-d7c1a0e4f528

package database

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a storage failure for user-facing reporting.
type ErrorKind string

const (
	ErrKindCorrupt  ErrorKind = "corrupt"
	ErrKindDiskFull ErrorKind = "disk_full"
	ErrKindLocked   ErrorKind = "locked"
	ErrKindGeneric  ErrorKind = "generic"
)

// ErrNotFound is returned when a lookup by id matches no row. It is a
// plain flow-control error and is never routed through the classifier.
var ErrNotFound = errors.New("not found")

// StorageError wraps a driver error with its classified kind and the name
// of the operation that produced it.
type StorageError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// UserMessage returns a short message suitable for a notification toast.
func (e *StorageError) UserMessage() string {
	switch e.Kind {
	case ErrKindCorrupt:
		return "The project database appears to be damaged."
	case ErrKindDiskFull:
		return "There is no space left on the disk."
	case ErrKindLocked:
		return "The project database is busy. Try again in a moment."
	default:
		return "An unexpected storage error occurred."
	}
}

// SQLite has no structured error codes we can rely on across driver
// versions, so classification matches known substrings of the lower-cased
// message. Corruption indicators win over disk-full, disk-full over lock
// contention.
var (
	corruptIndicators = []string{
		"database disk image is malformed",
		"file is not a database",
		"file is encrypted or is not a database",
		"corrupt",
	}
	diskFullIndicators = []string{
		"database or disk is full",
		"disk full",
		"no space left on device",
		"disk i/o error",
	}
	lockedIndicators = []string{
		"database is locked",
		"database table is locked",
		"locking protocol",
		"busy",
	}
)

// ClassifyError maps a raw driver error onto the error taxonomy.
func ClassifyError(op string, err error) *StorageError {
	msg := strings.ToLower(err.Error())
	kind := ErrKindGeneric
	switch {
	case matchesAny(msg, corruptIndicators):
		kind = ErrKindCorrupt
	case matchesAny(msg, diskFullIndicators):
		kind = ErrKindDiskFull
	case matchesAny(msg, lockedIndicators):
		kind = ErrKindLocked
	}
	return &StorageError{Kind: kind, Op: op, Err: err}
}

func matchesAny(msg string, indicators []string) bool {
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

// isDuplicateColumn reports whether err is the expected noise produced by
// re-running an additive column migration against an up-to-date schema.
func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}
