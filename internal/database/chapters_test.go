// file: internal/database/chapters_test.go
// version: 1.1.0
// guid: 0d6c2f8b-4a19-4e57-b1d0-3c7e5f9a2486

package database

import (
	"testing"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

func setupChapterBook(t *testing.T, store *Store) string {
	t.Helper()
	book, err := store.CreateBook("Novel", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return book.ID
}

func TestChapterMetadataExcludesContent(t *testing.T) {
	store := setupTestStore(t)
	bookID := setupChapterBook(t, store)

	chapter, err := store.CreateChapter(bookID, "One")
	if err != nil {
		t.Fatal(err)
	}
	content := "The rain had not stopped for three days.\n\n— We leave at dawn, she said."
	stats, err := store.UpdateChapterContent(chapter.ID, content)
	if err != nil {
		t.Fatalf("UpdateChapterContent failed: %v", err)
	}
	if stats.Words == 0 || stats.Chars == 0 {
		t.Errorf("stats not computed: %+v", stats)
	}
	if stats.Paragraphs != 2 {
		t.Errorf("paragraphs = %d, want 2", stats.Paragraphs)
	}
	if stats.Dialogues != 1 {
		t.Errorf("dialogues = %d, want 1", stats.Dialogues)
	}

	// The listing query carries the counters but never the text.
	metas, err := store.GetChapterMetadataByBookID(bookID)
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 1 {
		t.Fatalf("got %d chapters", len(metas))
	}
	if metas[0].WordCount != stats.Words {
		t.Errorf("listing word count = %d, want %d", metas[0].WordCount, stats.Words)
	}

	full, err := store.GetChapterByID(chapter.ID)
	if err != nil {
		t.Fatal(err)
	}
	if full.Content != content {
		t.Error("content not stored")
	}
}

func TestCreateChapterAppendsToOrder(t *testing.T) {
	store := setupTestStore(t)
	bookID := setupChapterBook(t, store)

	for i, title := range []string{"One", "Two", "Three"} {
		ch, err := store.CreateChapter(bookID, title)
		if err != nil {
			t.Fatal(err)
		}
		if ch.OrderIndex != i {
			t.Errorf("%s order_index = %d, want %d", title, ch.OrderIndex, i)
		}
	}
}

func TestReorderChapters(t *testing.T) {
	store := setupTestStore(t)
	bookID := setupChapterBook(t, store)

	var ids []string
	for _, title := range []string{"One", "Two", "Three"} {
		ch, err := store.CreateChapter(bookID, title)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, ch.ID)
	}

	reversed := []string{ids[2], ids[1], ids[0]}
	if err := store.ReorderChapters(bookID, reversed); err != nil {
		t.Fatalf("ReorderChapters failed: %v", err)
	}

	metas, err := store.GetChapterMetadataByBookID(bookID)
	if err != nil {
		t.Fatal(err)
	}
	for i, meta := range metas {
		if meta.ID != reversed[i] {
			t.Errorf("position %d holds %s, want %s", i, meta.ID, reversed[i])
		}
	}
}

func TestChapterMentionsUpsert(t *testing.T) {
	store := setupTestStore(t)
	bookID := setupChapterBook(t, store)
	chapter, err := store.CreateChapter(bookID, "One")
	if err != nil {
		t.Fatal(err)
	}
	char, err := store.CreateCharacter(bookID, "Aria")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.AddChapterMention(chapter.ID, char.ID, models.EntityTypeCharacter, "Aria", nil); err != nil {
		t.Fatal(err)
	}
	// Mentioning the same entity again refreshes the snapshot instead of
	// duplicating the row.
	portrait := "portraits/aria.png"
	if err := store.AddChapterMention(chapter.ID, char.ID, models.EntityTypeCharacter, "Aria of Vael", &portrait); err != nil {
		t.Fatal(err)
	}

	mentions, err := store.GetChapterMentions(chapter.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(mentions) != 1 {
		t.Fatalf("got %d mentions, want 1", len(mentions))
	}
	if mentions[0].Name != "Aria of Vael" {
		t.Errorf("snapshot name = %q", mentions[0].Name)
	}
	if mentions[0].ImagePath == nil || *mentions[0].ImagePath != portrait {
		t.Error("snapshot image not refreshed")
	}

	if err := store.RemoveChapterMention(chapter.ID, char.ID, models.EntityTypeCharacter); err != nil {
		t.Fatal(err)
	}
	mentions, err = store.GetChapterMentions(chapter.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(mentions) != 0 {
		t.Errorf("mention not removed")
	}
}

func TestAnnotationsWithNotes(t *testing.T) {
	store := setupTestStore(t)
	bookID := setupChapterBook(t, store)
	chapter, err := store.CreateChapter(bookID, "One")
	if err != nil {
		t.Fatal(err)
	}

	ann, err := store.CreateChapterAnnotation(chapter.ID, 10, 42, "#ffd166")
	if err != nil {
		t.Fatalf("CreateChapterAnnotation failed: %v", err)
	}
	note, err := store.AddAnnotationNote(ann.ID, "Foreshadowing here")
	if err != nil {
		t.Fatalf("AddAnnotationNote failed: %v", err)
	}
	if _, err := store.AddAnnotationNote(ann.ID, "Second thought"); err != nil {
		t.Fatal(err)
	}

	annotations, err := store.GetChapterAnnotations(chapter.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(annotations) != 1 {
		t.Fatalf("got %d annotations", len(annotations))
	}
	if annotations[0].StartOffset != 10 || annotations[0].EndOffset != 42 {
		t.Errorf("offsets = %d..%d", annotations[0].StartOffset, annotations[0].EndOffset)
	}
	if len(annotations[0].Notes) != 2 {
		t.Fatalf("got %d notes", len(annotations[0].Notes))
	}

	if err := store.DeleteAnnotationNote(note.ID); err != nil {
		t.Fatal(err)
	}
	annotations, err = store.GetChapterAnnotations(chapter.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(annotations[0].Notes) != 1 {
		t.Errorf("note not deleted")
	}

	// Deleting the annotation takes its notes with it.
	if err := store.DeleteChapterAnnotation(ann.ID); err != nil {
		t.Fatal(err)
	}
	annotations, err = store.GetChapterAnnotations(chapter.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(annotations) != 0 {
		t.Errorf("annotation not deleted")
	}
}

func TestReplaceChapterEntityLinks(t *testing.T) {
	store := setupTestStore(t)
	bookID := setupChapterBook(t, store)
	chapter, err := store.CreateChapter(bookID, "One")
	if err != nil {
		t.Fatal(err)
	}
	char, err := store.CreateCharacter(bookID, "Aria")
	if err != nil {
		t.Fatal(err)
	}

	links := []models.TextEntityLink{
		{EntityID: char.ID, EntityType: models.EntityTypeCharacter, StartOffset: 0, EndOffset: 4},
		{EntityID: char.ID, EntityType: models.EntityTypeCharacter, StartOffset: 120, EndOffset: 124},
	}
	if err := store.ReplaceChapterEntityLinks(chapter.ID, links); err != nil {
		t.Fatalf("ReplaceChapterEntityLinks failed: %v", err)
	}

	got, err := store.GetChapterEntityLinks(chapter.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d links", len(got))
	}

	// A replace with fewer links drops the rest.
	if err := store.ReplaceChapterEntityLinks(chapter.ID, links[:1]); err != nil {
		t.Fatal(err)
	}
	got, err = store.GetChapterEntityLinks(chapter.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("replace kept %d links, want 1", len(got))
	}
}

func TestDeleteChapter(t *testing.T) {
	store := setupTestStore(t)
	bookID := setupChapterBook(t, store)
	chapter, err := store.CreateChapter(bookID, "One")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteChapter(chapter.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetChapterByID(chapter.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteChapter(chapter.ID); err != ErrNotFound {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
