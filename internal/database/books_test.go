// file: internal/database/books_test.go
// version: 1.1.0
// guid: 8c3f5a1d-2e74-4b08-96cd-1f0a7e9b3d46

package database

import (
	"testing"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

func TestCreateBookDefaults(t *testing.T) {
	store := setupTestStore(t)

	book, err := store.CreateBook("The Hollow Crown", "", []string{"fantasy"}, nil)
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	if book.ID == "" {
		t.Error("book id not generated")
	}
	if book.Status != models.BookStatusPlanning {
		t.Errorf("status = %q, want %q", book.Status, models.BookStatusPlanning)
	}

	got, err := store.GetBookByID(book.ID)
	if err != nil {
		t.Fatalf("GetBookByID failed: %v", err)
	}
	if got.Title != "The Hollow Crown" {
		t.Errorf("title = %q", got.Title)
	}
	if len(got.Genres) != 1 || got.Genres[0] != "fantasy" {
		t.Errorf("genres = %v", got.Genres)
	}
	if got.Tabs == nil || got.StickyNotes == nil || got.Checklist == nil {
		t.Error("JSON collections must decode to empty, not nil")
	}
}

func TestGetBookByIDNotFound(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.GetBookByID("missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateBookPartial(t *testing.T) {
	store := setupTestStore(t)
	synopsis := "A kingdom unravels."
	book, err := store.CreateBook("Draft", models.BookStatusInProgress, []string{"fantasy", "mystery"}, &synopsis)
	if err != nil {
		t.Fatal(err)
	}

	newTitle := "Final Title"
	updated, err := store.UpdateBook(book.ID, models.BookPatch{Title: &newTitle})
	if err != nil {
		t.Fatalf("UpdateBook failed: %v", err)
	}

	// Unpatched fields survive the merge.
	if updated.Title != "Final Title" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Status != models.BookStatusInProgress {
		t.Errorf("status reset by partial update: %q", updated.Status)
	}
	if len(updated.Genres) != 2 {
		t.Errorf("genres reset by partial update: %v", updated.Genres)
	}
	if updated.Synopsis == nil || *updated.Synopsis != synopsis {
		t.Error("synopsis reset by partial update")
	}
}

func TestUpdateBookOverviewRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	book, err := store.CreateBook("Overview", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	overview := models.BookOverview{
		Goals:    &models.BookGoals{TargetWords: 90000, Deadline: "2027-01-01"},
		Progress: &models.StoryProgress{CurrentWords: 36000, PercentComplete: 40},
		StickyNotes: []models.StickyNote{
			{ID: "n1", Text: "Check chapter 3 pacing", Color: "yellow"},
		},
		Checklist: []models.ChecklistItem{
			{ID: "c1", Text: "Outline act three", Done: false},
		},
		SectionVisibility: map[string]bool{"goals": true, "notes": false},
	}
	if err := store.UpdateBookOverview(book.ID, overview); err != nil {
		t.Fatalf("UpdateBookOverview failed: %v", err)
	}

	got, err := store.GetBookByID(book.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Goals == nil || got.Goals.TargetWords != 90000 {
		t.Errorf("goals = %+v", got.Goals)
	}
	if got.Progress == nil || got.Progress.CurrentWords != 36000 {
		t.Errorf("progress = %+v", got.Progress)
	}
	if len(got.StickyNotes) != 1 || got.StickyNotes[0].Text != "Check chapter 3 pacing" {
		t.Errorf("sticky notes = %+v", got.StickyNotes)
	}
	if !got.SectionVisibility["goals"] || got.SectionVisibility["notes"] {
		t.Errorf("section visibility = %v", got.SectionVisibility)
	}
}

func TestUpdateBookTabsNotFound(t *testing.T) {
	store := setupTestStore(t)
	err := store.UpdateBookTabs("missing", []models.TabConfig{{ID: "t1", Title: "Chapters", Visible: true}})
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAllBooksOrderedByLastOpened(t *testing.T) {
	store := setupTestStore(t)
	first, err := store.CreateBook("First", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.CreateBook("Second", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := store.TouchBookLastOpened(first.ID); err != nil {
		t.Fatal(err)
	}

	books, err := store.GetAllBooks()
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 2 {
		t.Fatalf("got %d books", len(books))
	}
	if books[0].ID != first.ID {
		t.Errorf("touched book not first: got %q, want %q", books[0].ID, first.ID)
	}
	if books[1].ID != second.ID {
		t.Errorf("second book = %q", books[1].ID)
	}
}

func TestDeleteBookCascades(t *testing.T) {
	store := setupTestStore(t)
	book, err := store.CreateBook("Doomed", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	char, err := store.CreateCharacter(book.ID, "Aria")
	if err != nil {
		t.Fatal(err)
	}
	chapter, err := store.CreateChapter(book.ID, "One")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteBook(book.ID); err != nil {
		t.Fatalf("DeleteBook failed: %v", err)
	}

	if _, err := store.GetCharacterByID(char.ID); err != ErrNotFound {
		t.Errorf("character survived book delete: %v", err)
	}
	if _, err := store.GetChapterByID(chapter.ID); err != ErrNotFound {
		t.Errorf("chapter survived book delete: %v", err)
	}

	// The character's automatic main version keys on (entity_type,
	// entity_id) and cannot cascade; the delete removes it explicitly.
	versions, err := store.GetVersions(models.EntityTypeCharacter, char.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 0 {
		t.Errorf("found %d orphaned versions after book delete", len(versions))
	}
}

func TestDeleteBookNotFound(t *testing.T) {
	store := setupTestStore(t)
	if err := store.DeleteBook("missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
