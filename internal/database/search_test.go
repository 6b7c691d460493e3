// file: internal/database/search_test.go
// version: 1.1.0
// guid: e7d3b9a5-0c62-4f14-8b7d-a4e18f6c2093

package database

import (
	"testing"
)

func TestSearchEntitiesAcrossTypes(t *testing.T) {
	store := setupTestStore(t)
	book, err := store.CreateBook("Book", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	other, err := store.CreateBook("Other", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.CreateCharacter(book.ID, "Aralorn"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateFaction(book.ID, "Order of Aral"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateRegion(book.ID, "Frostmark", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateNote(book.ID, "Aral family tree", ""); err != nil {
		t.Fatal(err)
	}
	// Same name in another book must not leak in.
	if _, err := store.CreateCharacter(other.ID, "Aralorn"); err != nil {
		t.Fatal(err)
	}

	results, err := store.SearchEntities(book.ID, "aral")
	if err != nil {
		t.Fatalf("SearchEntities failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3: %+v", len(results), results)
	}
	types := map[string]bool{}
	for _, r := range results {
		types[r.EntityType] = true
	}
	for _, want := range []string{"character", "faction", "note"} {
		if !types[want] {
			t.Errorf("missing %s result", want)
		}
	}
	// Best matches first.
	for i := 1; i < len(results); i++ {
		if results[i-1].Rank > results[i].Rank {
			t.Errorf("results not rank-ordered: %+v", results)
		}
	}
}

func TestSearchEntitiesAccentInsensitive(t *testing.T) {
	store := setupTestStore(t)
	book, err := store.CreateBook("Book", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateCharacter(book.ID, "Sébastien"); err != nil {
		t.Fatal(err)
	}

	results, err := store.SearchEntities(book.ID, "sebastien")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("accent-folded search found %d results", len(results))
	}
}

func TestSearchEntitiesEmptyQuery(t *testing.T) {
	store := setupTestStore(t)
	book, err := store.CreateBook("Book", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateCharacter(book.ID, "Aria"); err != nil {
		t.Fatal(err)
	}

	results, err := store.SearchEntities(book.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("empty query returned %d results", len(results))
	}
}
