// file: internal/database/entitylogs_test.go
// version: 1.1.0
// guid: 3c8e5a1f-9d47-4b62-80cf-2e6b4d0a7935

package database

import (
	"testing"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

func TestEntityLogLifecycle(t *testing.T) {
	store := setupTestStore(t)
	book, err := store.CreateBook("Book", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	char, err := store.CreateCharacter(book.ID, "Aria")
	if err != nil {
		t.Fatal(err)
	}
	faction, err := store.CreateFaction(book.ID, "Order")
	if err != nil {
		t.Fatal(err)
	}

	// One narrative beat involving two entities.
	log, err := store.CreateEntityLog(book.ID, "The betrayal", "Aria leaves the Order.",
		[]models.EntityLogLink{
			{EntityID: char.ID, EntityType: models.EntityTypeCharacter},
			{EntityID: faction.ID, EntityType: models.EntityTypeFaction},
		})
	if err != nil {
		t.Fatalf("CreateEntityLog failed: %v", err)
	}
	if log.OrderIndex != 0 {
		t.Errorf("first log order_index = %d", log.OrderIndex)
	}

	logs, err := store.GetEntityLogsByBookID(book.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d logs", len(logs))
	}
	if len(logs[0].Links) != 2 {
		t.Errorf("got %d links", len(logs[0].Links))
	}

	// Both linked entities see the same moment.
	byChar, err := store.GetEntityLogsByEntity(models.EntityTypeCharacter, char.ID)
	if err != nil {
		t.Fatal(err)
	}
	byFaction, err := store.GetEntityLogsByEntity(models.EntityTypeFaction, faction.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(byChar) != 1 || len(byFaction) != 1 || byChar[0].ID != byFaction[0].ID {
		t.Errorf("shared log not visible from both entities: %d / %d", len(byChar), len(byFaction))
	}

	if err := store.UpdateEntityLog(log.ID, "The betrayal", "Aria burns the charter and leaves."); err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceEntityLogLinks(log.ID, []models.EntityLogLink{
		{EntityID: char.ID, EntityType: models.EntityTypeCharacter},
	}); err != nil {
		t.Fatal(err)
	}
	byFaction, err = store.GetEntityLogsByEntity(models.EntityTypeFaction, faction.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(byFaction) != 0 {
		t.Error("replaced link set still includes the faction")
	}

	if err := store.DeleteEntityLog(log.ID); err != nil {
		t.Fatal(err)
	}
	logs, err = store.GetEntityLogsByBookID(book.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 0 {
		t.Error("log not deleted")
	}
}

func TestReorderEntityLogs(t *testing.T) {
	store := setupTestStore(t)
	book, err := store.CreateBook("Book", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, title := range []string{"First", "Second", "Third"} {
		log, err := store.CreateEntityLog(book.ID, title, "", nil)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, log.ID)
	}

	want := []string{ids[1], ids[2], ids[0]}
	if err := store.ReorderEntityLogs(book.ID, want); err != nil {
		t.Fatalf("ReorderEntityLogs failed: %v", err)
	}

	logs, err := store.GetEntityLogsByBookID(book.ID)
	if err != nil {
		t.Fatal(err)
	}
	for i, log := range logs {
		if log.ID != want[i] {
			t.Errorf("position %d holds %s, want %s", i, log.ID, want[i])
		}
	}
}

func TestDeleteEntityRemovesLogLinks(t *testing.T) {
	store := setupTestStore(t)
	book, err := store.CreateBook("Book", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	char, err := store.CreateCharacter(book.ID, "Aria")
	if err != nil {
		t.Fatal(err)
	}
	log, err := store.CreateEntityLog(book.ID, "Moment", "",
		[]models.EntityLogLink{{EntityID: char.ID, EntityType: models.EntityTypeCharacter}})
	if err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteCharacter(char.ID); err != nil {
		t.Fatal(err)
	}

	logs, err := store.GetEntityLogsByBookID(book.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("log row must survive, got %d", len(logs))
	}
	if logs[0].ID != log.ID {
		t.Fatal("wrong log")
	}
	if len(logs[0].Links) != 0 {
		t.Errorf("stale link survived entity delete: %+v", logs[0].Links)
	}
}
