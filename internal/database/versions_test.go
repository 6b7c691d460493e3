// file: internal/database/versions_test.go
// version: 1.1.0
// guid: 6e2a9c4f-1d85-4b37-a0e6-8f3b5d7c2091

package database

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

func createTestCharacter(t *testing.T, store *Store) *models.Character {
	t.Helper()
	book, err := store.CreateBook("Book", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	char, err := store.CreateCharacter(book.ID, "Aria")
	if err != nil {
		t.Fatal(err)
	}
	return char
}

func TestCreateVersionNotMain(t *testing.T) {
	store := setupTestStore(t)
	char := createTestCharacter(t, store)

	data := json.RawMessage(`{"name":"Aria, older"}`)
	v, err := store.CreateVersion(models.EntityTypeCharacter, char.ID, "Ten years later", "older take", data)
	if err != nil {
		t.Fatalf("CreateVersion failed: %v", err)
	}
	if v.IsMain {
		t.Error("explicitly created version must not be main")
	}
	if v.Description == nil || *v.Description != "older take" {
		t.Errorf("description = %v", v.Description)
	}

	versions, err := store.GetVersions(models.EntityTypeCharacter, char.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 2 {
		t.Fatalf("got %d versions", len(versions))
	}
	// Main sorts first.
	if !versions[0].IsMain {
		t.Error("main version not listed first")
	}
}

func TestExactlyOneMainVersion(t *testing.T) {
	store := setupTestStore(t)
	char := createTestCharacter(t, store)

	alt, err := store.CreateVersion(models.EntityTypeCharacter, char.ID, "Alt", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetMainVersion(alt.ID); err != nil {
		t.Fatalf("SetMainVersion failed: %v", err)
	}

	versions, err := store.GetVersions(models.EntityTypeCharacter, char.ID)
	if err != nil {
		t.Fatal(err)
	}
	mainCount := 0
	for _, v := range versions {
		if v.IsMain {
			mainCount++
			if v.ID != alt.ID {
				t.Errorf("wrong version is main: %s", v.ID)
			}
		}
	}
	if mainCount != 1 {
		t.Errorf("found %d main versions, want exactly 1", mainCount)
	}
}

func TestDeleteMainVersionRejected(t *testing.T) {
	store := setupTestStore(t)
	char := createTestCharacter(t, store)

	versions, err := store.GetVersions(models.EntityTypeCharacter, char.ID)
	if err != nil {
		t.Fatal(err)
	}
	err = store.DeleteVersion(versions[0].ID)
	if err == nil {
		t.Fatal("deleting the main version must fail")
	}
	if !strings.Contains(err.Error(), "main version") {
		t.Errorf("unexpected error: %v", err)
	}

	// The row must still exist.
	if _, err := store.GetVersion(versions[0].ID); err != nil {
		t.Errorf("main version gone after rejected delete: %v", err)
	}
}

func TestDeleteNonMainVersion(t *testing.T) {
	store := setupTestStore(t)
	char := createTestCharacter(t, store)

	alt, err := store.CreateVersion(models.EntityTypeCharacter, char.ID, "Alt", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteVersion(alt.ID); err != nil {
		t.Fatalf("DeleteVersion failed: %v", err)
	}
	if _, err := store.GetVersion(alt.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateVersionData(t *testing.T) {
	store := setupTestStore(t)
	char := createTestCharacter(t, store)

	alt, err := store.CreateVersion(models.EntityTypeCharacter, char.ID, "Alt", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(alt.Data) != "{}" {
		t.Errorf("empty snapshot should default to {}, got %s", alt.Data)
	}

	snapshot := json.RawMessage(`{"name":"Aria","age":31}`)
	if err := store.UpdateVersionData(alt.ID, snapshot); err != nil {
		t.Fatalf("UpdateVersionData failed: %v", err)
	}

	got, err := store.GetVersion(alt.ID)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(got.Data, &decoded); err != nil {
		t.Fatalf("stored snapshot does not decode: %v", err)
	}
	if decoded["name"] != "Aria" {
		t.Errorf("snapshot = %v", decoded)
	}
}

func TestUpdateVersionNotFound(t *testing.T) {
	store := setupTestStore(t)
	if err := store.UpdateVersion("missing", "x", "y"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
