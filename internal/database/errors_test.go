// file: internal/database/errors_test.go
// version: 1.1.0
// guid: f1a8c5e3-7d29-4b60-94af-6e0d2b8c4175

package database

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		msg  string
		want ErrorKind
	}{
		{"database disk image is malformed", ErrKindCorrupt},
		{"file is not a database", ErrKindCorrupt},
		{"database or disk is full", ErrKindDiskFull},
		{"write failed: no space left on device", ErrKindDiskFull},
		{"disk I/O error", ErrKindDiskFull},
		{"database is locked", ErrKindLocked},
		{"SQLITE_BUSY: database table is locked", ErrKindLocked},
		{"constraint failed: UNIQUE", ErrKindGeneric},
		{"something unexpected", ErrKindGeneric},
	}
	for _, tc := range cases {
		got := ClassifyError("test_op", errors.New(tc.msg))
		if got.Kind != tc.want {
			t.Errorf("ClassifyError(%q).Kind = %s, want %s", tc.msg, got.Kind, tc.want)
		}
		if got.Op != "test_op" {
			t.Errorf("op = %q", got.Op)
		}
	}
}

// Corruption indicators beat disk-full ones when a message matches both.
func TestClassifyErrorPrecedence(t *testing.T) {
	err := errors.New("disk i/o error: database disk image is malformed")
	if got := ClassifyError("op", err); got.Kind != ErrKindCorrupt {
		t.Errorf("kind = %s, want corrupt", got.Kind)
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	inner := errors.New("database is locked")
	wrapped := ClassifyError("op", fmt.Errorf("failed to save: %w", inner))
	if !errors.Is(wrapped, inner) {
		t.Error("StorageError does not unwrap to the driver error")
	}
	if wrapped.Kind != ErrKindLocked {
		t.Errorf("kind = %s", wrapped.Kind)
	}
}

func TestStorageErrorUserMessage(t *testing.T) {
	for _, kind := range []ErrorKind{ErrKindCorrupt, ErrKindDiskFull, ErrKindLocked, ErrKindGeneric} {
		e := &StorageError{Kind: kind, Op: "op", Err: errors.New("x")}
		if e.UserMessage() == "" {
			t.Errorf("empty user message for kind %s", kind)
		}
	}
}

func TestIsDuplicateColumn(t *testing.T) {
	if !isDuplicateColumn(errors.New("duplicate column name: scale")) {
		t.Error("duplicate column error not recognized")
	}
	if isDuplicateColumn(errors.New("no such column: scale")) {
		t.Error("unrelated error treated as duplicate column")
	}
	if isDuplicateColumn(nil) {
		t.Error("nil error treated as duplicate column")
	}
}
