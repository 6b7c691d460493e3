// file: internal/database/chapters.go
// version: 1.5.0
// guid: 85d2f7b0-4e1c-49a6-93d8-b6c0e24f7a59

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

const chapterMetaColumns = `id, book_id, title, order_index, status, summary,
	word_count, char_count, paragraph_count, dialogue_count, created_at, updated_at`

func scanChapterMeta(scanner rowScanner, c *models.ChapterMeta) error {
	var summary sql.NullString
	err := scanner.Scan(&c.ID, &c.BookID, &c.Title, &c.OrderIndex, &c.Status, &summary,
		&c.WordCount, &c.CharCount, &c.ParagraphCount, &c.DialogueCount,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return err
	}
	if summary.Valid {
		c.Summary = &summary.String
	}
	return nil
}

// GetChapterMetadataByBookID returns the chapter list in reading order
// without loading any chapter text.
func (s *Store) GetChapterMetadataByBookID(bookID string) ([]models.ChapterMeta, error) {
	chapters := []models.ChapterMeta{}
	err := s.safe("get_chapter_metadata", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM chapters
			WHERE book_id = ? ORDER BY order_index`, chapterMetaColumns), bookID)
		if err != nil {
			return fmt.Errorf("failed to query chapters: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var c models.ChapterMeta
			if err := scanChapterMeta(rows, &c); err != nil {
				return fmt.Errorf("failed to scan chapter: %w", err)
			}
			chapters = append(chapters, c)
		}
		return rows.Err()
	})
	return chapters, err
}

// GetChapterByID returns a full chapter including its text.
func (s *Store) GetChapterByID(id string) (*models.Chapter, error) {
	var c models.Chapter
	err := s.safe("get_chapter", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		var summary sql.NullString
		row := db.QueryRow(`SELECT id, book_id, title, order_index, status, summary, content,
			word_count, char_count, paragraph_count, dialogue_count, created_at, updated_at
			FROM chapters WHERE id = ?`, id)
		err = row.Scan(&c.ID, &c.BookID, &c.Title, &c.OrderIndex, &c.Status, &summary,
			&c.Content, &c.WordCount, &c.CharCount, &c.ParagraphCount, &c.DialogueCount,
			&c.CreatedAt, &c.UpdatedAt)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get chapter: %w", err)
		}
		if summary.Valid {
			c.Summary = &summary.String
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateChapter appends a new empty chapter to a book.
func (s *Store) CreateChapter(bookID, title string) (*models.Chapter, error) {
	var c models.Chapter
	err := s.safe("create_chapter", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate chapter id: %w", err)
		}
		now := time.Now()
		return withTx(db, func(tx *sql.Tx) error {
			var orderIndex int
			err := tx.QueryRow("SELECT COALESCE(MAX(order_index) + 1, 0) FROM chapters WHERE book_id = ?",
				bookID).Scan(&orderIndex)
			if err != nil {
				return fmt.Errorf("failed to compute chapter order: %w", err)
			}
			_, err = tx.Exec(`INSERT INTO chapters (id, book_id, title, order_index, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)`, id, bookID, title, orderIndex, now, now)
			if err != nil {
				return fmt.Errorf("failed to create chapter: %w", err)
			}
			c = models.Chapter{
				ID:         id,
				BookID:     bookID,
				Title:      title,
				OrderIndex: orderIndex,
				Status:     "draft",
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateChapter merges a metadata patch. Content changes go through
// UpdateChapterContent.
func (s *Store) UpdateChapter(id string, patch models.ChapterPatch) error {
	return s.safe("update_chapter", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			var c models.ChapterMeta
			row := tx.QueryRow(fmt.Sprintf("SELECT %s FROM chapters WHERE id = ?", chapterMetaColumns), id)
			if err := scanChapterMeta(row, &c); err != nil {
				if err == sql.ErrNoRows {
					return ErrNotFound
				}
				return fmt.Errorf("failed to read chapter for update: %w", err)
			}

			if patch.Title != nil {
				c.Title = *patch.Title
			}
			if patch.Status != nil {
				c.Status = *patch.Status
			}
			if patch.Summary != nil {
				c.Summary = patch.Summary
			}

			_, err := tx.Exec(`UPDATE chapters SET title = ?, status = ?, summary = ?, updated_at = ?
				WHERE id = ?`, c.Title, c.Status, c.Summary, time.Now(), id)
			if err != nil {
				return fmt.Errorf("failed to update chapter: %w", err)
			}
			return nil
		})
	})
}

// UpdateChapterContent saves chapter text and recomputes the derived
// counters in the same statement, so the stored counters can never
// drift from the stored text.
func (s *Store) UpdateChapterContent(id, content string) (*models.ChapterStats, error) {
	stats := models.ComputeChapterStats(content)
	err := s.safe("update_chapter_content", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec(`UPDATE chapters SET content = ?, word_count = ?, char_count = ?,
			paragraph_count = ?, dialogue_count = ?, updated_at = ? WHERE id = ?`,
			content, stats.Words, stats.Chars, stats.Paragraphs, stats.Dialogues, time.Now(), id)
		if err != nil {
			return fmt.Errorf("failed to update chapter content: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ReorderChapters applies a complete new ordering for a book's chapters.
// IDs missing from the list keep their position relative to each other
// after the listed ones.
func (s *Store) ReorderChapters(bookID string, orderedIDs []string) error {
	return s.safe("reorder_chapters", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			for i, id := range orderedIDs {
				_, err := tx.Exec(`UPDATE chapters SET order_index = ?, updated_at = ?
					WHERE id = ? AND book_id = ?`, i, time.Now(), id, bookID)
				if err != nil {
					return fmt.Errorf("failed to reorder chapter %s: %w", id, err)
				}
			}
			return nil
		})
	})
}

// DeleteChapter removes a chapter; mentions, annotations and links
// cascade from the chapter row.
func (s *Store) DeleteChapter(id string) error {
	return s.safe("delete_chapter", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec("DELETE FROM chapters WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete chapter: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Mentions

// GetChapterMentions returns the mention chips of a chapter.
func (s *Store) GetChapterMentions(chapterID string) ([]models.Mention, error) {
	mentions := []models.Mention{}
	err := s.safe("get_chapter_mentions", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT id, chapter_id, entity_id, entity_type, name, image_path
			FROM chapter_mentions WHERE chapter_id = ? ORDER BY name COLLATE NOCASE`, chapterID)
		if err != nil {
			return fmt.Errorf("failed to query mentions: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var m models.Mention
			var imagePath sql.NullString
			if err := rows.Scan(&m.ID, &m.ChapterID, &m.EntityID, &m.EntityType, &m.Name, &imagePath); err != nil {
				return fmt.Errorf("failed to scan mention: %w", err)
			}
			if imagePath.Valid {
				m.ImagePath = &imagePath.String
			}
			mentions = append(mentions, m)
		}
		return rows.Err()
	})
	return mentions, err
}

// AddChapterMention records that a chapter references an entity. Adding
// the same entity twice is a no-op.
func (s *Store) AddChapterMention(chapterID, entityID, entityType, name string, imagePath *string) error {
	return s.safe("add_chapter_mention", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate mention id: %w", err)
		}
		_, err = db.Exec(`INSERT INTO chapter_mentions (id, chapter_id, entity_id, entity_type, name, image_path)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(chapter_id, entity_id, entity_type) DO UPDATE SET name = excluded.name, image_path = excluded.image_path`,
			id, chapterID, entityID, entityType, name, imagePath)
		if err != nil {
			return fmt.Errorf("failed to add mention: %w", err)
		}
		return nil
	})
}

// RemoveChapterMention drops one mention.
func (s *Store) RemoveChapterMention(chapterID, entityID, entityType string) error {
	return s.safe("remove_chapter_mention", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec(`DELETE FROM chapter_mentions
			WHERE chapter_id = ? AND entity_id = ? AND entity_type = ?`,
			chapterID, entityID, entityType)
		if err != nil {
			return fmt.Errorf("failed to remove mention: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Annotations

// GetChapterAnnotations returns all annotations of a chapter with their
// notes attached.
func (s *Store) GetChapterAnnotations(chapterID string) ([]models.Annotation, error) {
	annotations := []models.Annotation{}
	err := s.safe("get_chapter_annotations", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT id, chapter_id, start_offset, end_offset, color
			FROM chapter_annotations WHERE chapter_id = ? ORDER BY start_offset`, chapterID)
		if err != nil {
			return fmt.Errorf("failed to query annotations: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var a models.Annotation
			if err := rows.Scan(&a.ID, &a.ChapterID, &a.StartOffset, &a.EndOffset, &a.Color); err != nil {
				return fmt.Errorf("failed to scan annotation: %w", err)
			}
			a.Notes = []models.AnnotationNote{}
			annotations = append(annotations, a)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		noteRows, err := db.Query(`SELECT n.id, n.annotation_id, n.text, n.created_at
			FROM annotation_notes n
			JOIN chapter_annotations a ON a.id = n.annotation_id
			WHERE a.chapter_id = ? ORDER BY n.created_at`, chapterID)
		if err != nil {
			return fmt.Errorf("failed to query annotation notes: %w", err)
		}
		defer noteRows.Close()

		byID := map[string]int{}
		for i, a := range annotations {
			byID[a.ID] = i
		}
		for noteRows.Next() {
			var n models.AnnotationNote
			if err := noteRows.Scan(&n.ID, &n.AnnotationID, &n.Text, &n.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan annotation note: %w", err)
			}
			if i, ok := byID[n.AnnotationID]; ok {
				annotations[i].Notes = append(annotations[i].Notes, n)
			}
		}
		return noteRows.Err()
	})
	return annotations, err
}

// CreateChapterAnnotation anchors a new annotation to a text range.
func (s *Store) CreateChapterAnnotation(chapterID string, startOffset, endOffset int, color string) (*models.Annotation, error) {
	var a models.Annotation
	err := s.safe("create_chapter_annotation", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate annotation id: %w", err)
		}
		_, err = db.Exec(`INSERT INTO chapter_annotations (id, chapter_id, start_offset, end_offset, color)
			VALUES (?, ?, ?, ?, ?)`, id, chapterID, startOffset, endOffset, color)
		if err != nil {
			return fmt.Errorf("failed to create annotation: %w", err)
		}
		a = models.Annotation{ID: id, ChapterID: chapterID, StartOffset: startOffset,
			EndOffset: endOffset, Color: color, Notes: []models.AnnotationNote{}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteChapterAnnotation removes an annotation and its notes.
func (s *Store) DeleteChapterAnnotation(id string) error {
	return s.safe("delete_chapter_annotation", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec("DELETE FROM chapter_annotations WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete annotation: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AddAnnotationNote appends a note to an annotation.
func (s *Store) AddAnnotationNote(annotationID, text string) (*models.AnnotationNote, error) {
	var n models.AnnotationNote
	err := s.safe("add_annotation_note", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate note id: %w", err)
		}
		now := time.Now()
		_, err = db.Exec(`INSERT INTO annotation_notes (id, annotation_id, text, created_at)
			VALUES (?, ?, ?, ?)`, id, annotationID, text, now)
		if err != nil {
			return fmt.Errorf("failed to add annotation note: %w", err)
		}
		n = models.AnnotationNote{ID: id, AnnotationID: annotationID, Text: text, CreatedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// DeleteAnnotationNote removes one note from an annotation.
func (s *Store) DeleteAnnotationNote(id string) error {
	return s.safe("delete_annotation_note", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec("DELETE FROM annotation_notes WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete annotation note: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Text entity links

// GetChapterEntityLinks returns the text-anchored entity links of a
// chapter in document order.
func (s *Store) GetChapterEntityLinks(chapterID string) ([]models.TextEntityLink, error) {
	links := []models.TextEntityLink{}
	err := s.safe("get_chapter_entity_links", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT id, chapter_id, entity_id, entity_type, start_offset, end_offset
			FROM chapter_entity_links WHERE chapter_id = ? ORDER BY start_offset`, chapterID)
		if err != nil {
			return fmt.Errorf("failed to query entity links: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var l models.TextEntityLink
			if err := rows.Scan(&l.ID, &l.ChapterID, &l.EntityID, &l.EntityType, &l.StartOffset, &l.EndOffset); err != nil {
				return fmt.Errorf("failed to scan entity link: %w", err)
			}
			links = append(links, l)
		}
		return rows.Err()
	})
	return links, err
}

// ReplaceChapterEntityLinks rewrites the full link set of a chapter. The
// editor recomputes anchors on every save, so replace-all matches how
// the data arrives.
func (s *Store) ReplaceChapterEntityLinks(chapterID string, links []models.TextEntityLink) error {
	return s.safe("replace_chapter_entity_links", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec("DELETE FROM chapter_entity_links WHERE chapter_id = ?", chapterID); err != nil {
				return fmt.Errorf("failed to clear entity links: %w", err)
			}
			for _, l := range links {
				id := l.ID
				if id == "" {
					id, err = newULID()
					if err != nil {
						return fmt.Errorf("failed to generate link id: %w", err)
					}
				}
				_, err := tx.Exec(`INSERT INTO chapter_entity_links (id, chapter_id, entity_id, entity_type, start_offset, end_offset)
					VALUES (?, ?, ?, ?, ?, ?)`,
					id, chapterID, l.EntityID, l.EntityType, l.StartOffset, l.EndOffset)
				if err != nil {
					return fmt.Errorf("failed to insert entity link: %w", err)
				}
			}
			return nil
		})
	})
}
