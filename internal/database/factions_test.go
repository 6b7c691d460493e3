// file: internal/database/factions_test.go
// version: 1.1.0
// guid: 3e9a7c1d-5f40-4b82-96de-1c8b0f4a6273

package database

import (
	"testing"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

func TestDeleteFactionStripsDiplomacy(t *testing.T) {
	store := setupTestStore(t)
	book, err := store.CreateBook("Book", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	doomed, err := store.CreateFaction(book.ID, "Doomed")
	if err != nil {
		t.Fatal(err)
	}
	rival, err := store.CreateFaction(book.ID, "Rival")
	if err != nil {
		t.Fatal(err)
	}
	ally, err := store.CreateFaction(book.ID, "Ally")
	if err != nil {
		t.Fatal(err)
	}

	diplomacy := []models.DiplomaticRelation{
		{FactionID: doomed.ID, Stance: "war", Intensity: 90},
		{FactionID: ally.ID, Stance: "alliance", Intensity: 70},
	}
	if _, err := store.UpdateFaction(rival.ID, models.FactionPatch{Diplomacy: &diplomacy}); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteFaction(doomed.ID); err != nil {
		t.Fatalf("DeleteFaction failed: %v", err)
	}

	got, err := store.GetFactionByID(rival.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Diplomacy) != 1 || got.Diplomacy[0].FactionID != ally.ID {
		t.Errorf("diplomacy after delete = %+v", got.Diplomacy)
	}
}

func TestDeleteRaceStripsSpecies(t *testing.T) {
	store := setupTestStore(t)
	book, err := store.CreateBook("Book", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	race, err := store.CreateRace(book.ID, "Hillfolk")
	if err != nil {
		t.Fatal(err)
	}
	keep, err := store.CreateRace(book.ID, "Seaborn")
	if err != nil {
		t.Fatal(err)
	}
	char, err := store.CreateCharacter(book.ID, "Aria")
	if err != nil {
		t.Fatal(err)
	}

	species := []string{race.ID, keep.ID}
	if _, err := store.UpdateCharacter(char.ID, models.CharacterPatch{Species: &species}); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteRace(race.ID); err != nil {
		t.Fatalf("DeleteRace failed: %v", err)
	}

	got, err := store.GetCharacterByID(char.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Species) != 1 || got.Species[0] != keep.ID {
		t.Errorf("species after delete = %v", got.Species)
	}
}

func TestDeleteItemLeavesOthersAlone(t *testing.T) {
	store := setupTestStore(t)
	book, err := store.CreateBook("Book", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	item, err := store.CreateItem(book.ID, "Sunblade")
	if err != nil {
		t.Fatal(err)
	}
	other, err := store.CreateItem(book.ID, "Moonshard")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteItem(item.ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if _, err := store.GetItemByID(other.ID); err != nil {
		t.Errorf("unrelated item affected: %v", err)
	}
	versions, err := store.GetVersions(models.EntityTypeItem, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 0 {
		t.Errorf("%d versions survived item delete", len(versions))
	}
}
