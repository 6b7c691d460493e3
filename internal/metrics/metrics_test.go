// file: internal/metrics/metrics_test.go
// version: 1.1.0
// guid: 7a8b9c0d-1e2f-3a4b-5c6d-7e8f9a0b1c2d

package metrics

import "testing"

func TestRegisterIdempotent(t *testing.T) {
	Register()
	Register()
}

func TestIncStorageOp(t *testing.T) {
	IncStorageOp("get_books")
}

func TestIncStorageFailure(t *testing.T) {
	IncStorageFailure("constraint")
}

func TestAddOrphanFilesRemoved(t *testing.T) {
	AddOrphanFilesRemoved(3)
}

func TestIncDuplicateMapsFixed(t *testing.T) {
	IncDuplicateMapsFixed()
}
