// file: internal/database/powersystems_test.go
// version: 1.1.0
// guid: 9e4b7d2a-6f05-4c38-a1e9-d73c0b8f5216

package database

import (
	"testing"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

func setupPowerTree(t *testing.T, store *Store) (bookID string, system *models.PowerSystem, page *models.PowerPage, section *models.PowerSection) {
	t.Helper()
	book, err := store.CreateBook("Book", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	system, err = store.CreatePowerSystem(book.ID, "Runecraft")
	if err != nil {
		t.Fatal(err)
	}
	group, err := store.CreatePowerGroup(system.ID, "Elemental")
	if err != nil {
		t.Fatal(err)
	}
	page, err = store.CreatePowerPage(group.ID, "Fire runes")
	if err != nil {
		t.Fatal(err)
	}
	section, err = store.CreatePowerSection(page.ID, "Basics")
	if err != nil {
		t.Fatal(err)
	}
	return book.ID, system, page, section
}

func TestReplacePowerBlocks(t *testing.T) {
	store := setupTestStore(t)
	_, _, _, section := setupPowerTree(t, store)

	blocks := []models.PowerBlock{
		{Kind: "heading", Content: "Ignition"},
		{Kind: "text", Content: "Every fire rune starts from a spark glyph."},
	}
	if err := store.ReplacePowerBlocks(section.ID, blocks); err != nil {
		t.Fatalf("ReplacePowerBlocks failed: %v", err)
	}

	got, err := store.GetPowerBlocks(section.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d blocks", len(got))
	}
	// Order follows the slice, not insertion accidents.
	if got[0].Kind != "heading" || got[1].Kind != "text" {
		t.Errorf("block order = %q, %q", got[0].Kind, got[1].Kind)
	}
	if got[0].OrderIndex != 0 || got[1].OrderIndex != 1 {
		t.Errorf("order indexes = %d, %d", got[0].OrderIndex, got[1].OrderIndex)
	}

	// Replacing with one block drops the other.
	if err := store.ReplacePowerBlocks(section.ID, blocks[1:]); err != nil {
		t.Fatal(err)
	}
	got, err = store.GetPowerBlocks(section.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Kind != "text" {
		t.Errorf("blocks after replace = %+v", got)
	}
}

func TestLinkCharacterPowerExclusivity(t *testing.T) {
	store := setupTestStore(t)
	bookID, _, page, section := setupPowerTree(t, store)
	char, err := store.CreateCharacter(bookID, "Aria")
	if err != nil {
		t.Fatal(err)
	}

	// Exactly one of page or section must be set.
	if _, err := store.LinkCharacterPower(char.ID, nil, nil, nil); err == nil {
		t.Error("link with neither target must fail")
	}
	if _, err := store.LinkCharacterPower(char.ID, &page.ID, &section.ID, nil); err == nil {
		t.Error("link with both targets must fail")
	}

	label := "Sparkwright"
	link, err := store.LinkCharacterPower(char.ID, &page.ID, nil, &label)
	if err != nil {
		t.Fatalf("page link failed: %v", err)
	}
	if _, err := store.LinkCharacterPower(char.ID, nil, &section.ID, nil); err != nil {
		t.Fatalf("section link failed: %v", err)
	}

	links, err := store.GetPowerLinksByCharacter(char.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d links", len(links))
	}

	if err := store.UnlinkCharacterPower(link.ID); err != nil {
		t.Fatal(err)
	}
	links, err = store.GetPowerLinksByCharacter(char.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 1 {
		t.Errorf("unlink left %d links", len(links))
	}
}

func TestDeletePowerSystemCascades(t *testing.T) {
	store := setupTestStore(t)
	_, system, _, section := setupPowerTree(t, store)

	if err := store.ReplacePowerBlocks(section.ID, []models.PowerBlock{{Kind: "text", Content: "x"}}); err != nil {
		t.Fatal(err)
	}
	if err := store.DeletePowerSystem(system.ID); err != nil {
		t.Fatalf("DeletePowerSystem failed: %v", err)
	}

	groups, err := store.GetPowerGroups(system.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 0 {
		t.Errorf("%d groups survived system delete", len(groups))
	}
	blocks, err := store.GetPowerBlocks(section.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 0 {
		t.Errorf("%d blocks survived system delete", len(blocks))
	}
}

func TestRenamePowerChildren(t *testing.T) {
	store := setupTestStore(t)
	_, _, page, section := setupPowerTree(t, store)

	if err := store.RenamePowerPage(page.ID, "Ember runes"); err != nil {
		t.Fatal(err)
	}
	if err := store.RenamePowerSection(section.ID, "Fundamentals"); err != nil {
		t.Fatal(err)
	}
	if err := store.RenamePowerPage("missing", "x"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	sections, err := store.GetPowerSections(page.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sections) != 1 || sections[0].Title != "Fundamentals" {
		t.Errorf("sections = %+v", sections)
	}
}
