// file: internal/database/notes.go
// version: 1.2.0
// guid: d4a8c2e6-0f73-4b91-85ce-27b6d1f094a3

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

// GetNotesByBookID returns all notes of a book, most recently edited
// first.
func (s *Store) GetNotesByBookID(bookID string) ([]models.Note, error) {
	notes := []models.Note{}
	err := s.safe("get_notes", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT id, book_id, title, content, created_at, updated_at
			FROM notes WHERE book_id = ? ORDER BY updated_at DESC`, bookID)
		if err != nil {
			return fmt.Errorf("failed to query notes: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var n models.Note
			if err := rows.Scan(&n.ID, &n.BookID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
				return fmt.Errorf("failed to scan note: %w", err)
			}
			notes = append(notes, n)
		}
		return rows.Err()
	})
	return notes, err
}

// GetNoteByID returns one note.
func (s *Store) GetNoteByID(id string) (*models.Note, error) {
	var n models.Note
	err := s.safe("get_note", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		row := db.QueryRow(`SELECT id, book_id, title, content, created_at, updated_at
			FROM notes WHERE id = ?`, id)
		err = row.Scan(&n.ID, &n.BookID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get note: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateNote inserts a new note.
func (s *Store) CreateNote(bookID, title, content string) (*models.Note, error) {
	var n models.Note
	err := s.safe("create_note", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate note id: %w", err)
		}
		now := time.Now()
		_, err = db.Exec(`INSERT INTO notes (id, book_id, title, content, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`, id, bookID, title, content, now, now)
		if err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}
		n = models.Note{ID: id, BookID: bookID, Title: title, Content: content,
			CreatedAt: now, UpdatedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// UpdateNote merges a partial patch.
func (s *Store) UpdateNote(id string, patch models.NotePatch) error {
	return s.safe("update_note", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			var n models.Note
			row := tx.QueryRow("SELECT id, title, content FROM notes WHERE id = ?", id)
			if err := row.Scan(&n.ID, &n.Title, &n.Content); err != nil {
				if err == sql.ErrNoRows {
					return ErrNotFound
				}
				return fmt.Errorf("failed to read note for update: %w", err)
			}

			if patch.Title != nil {
				n.Title = *patch.Title
			}
			if patch.Content != nil {
				n.Content = *patch.Content
			}

			_, err := tx.Exec("UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ?",
				n.Title, n.Content, time.Now(), id)
			if err != nil {
				return fmt.Errorf("failed to update note: %w", err)
			}
			return nil
		})
	})
}

// DeleteNote removes a note; its link rows cascade.
func (s *Store) DeleteNote(id string) error {
	return s.safe("delete_note", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec("DELETE FROM notes WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
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

// GetNoteLinks returns the entities a note is attached to.
func (s *Store) GetNoteLinks(noteID string) ([]models.NoteLink, error) {
	links := []models.NoteLink{}
	err := s.safe("get_note_links", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT note_id, entity_id, entity_type FROM note_links
			WHERE note_id = ?`, noteID)
		if err != nil {
			return fmt.Errorf("failed to query note links: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var l models.NoteLink
			if err := rows.Scan(&l.NoteID, &l.EntityID, &l.EntityType); err != nil {
				return fmt.Errorf("failed to scan note link: %w", err)
			}
			links = append(links, l)
		}
		return rows.Err()
	})
	return links, err
}

// GetNotesByEntity returns the notes linked to an entity.
func (s *Store) GetNotesByEntity(entityType, entityID string) ([]models.Note, error) {
	notes := []models.Note{}
	err := s.safe("get_notes_by_entity", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT n.id, n.book_id, n.title, n.content, n.created_at, n.updated_at
			FROM notes n JOIN note_links l ON l.note_id = n.id
			WHERE l.entity_type = ? AND l.entity_id = ?
			ORDER BY n.updated_at DESC`, entityType, entityID)
		if err != nil {
			return fmt.Errorf("failed to query linked notes: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var n models.Note
			if err := rows.Scan(&n.ID, &n.BookID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
				return fmt.Errorf("failed to scan note: %w", err)
			}
			notes = append(notes, n)
		}
		return rows.Err()
	})
	return notes, err
}

// LinkNote attaches a note to an entity. Linking twice is a no-op.
func (s *Store) LinkNote(noteID, entityID, entityType string) error {
	return s.safe("link_note", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		_, err = db.Exec(`INSERT OR IGNORE INTO note_links (note_id, entity_id, entity_type)
			VALUES (?, ?, ?)`, noteID, entityID, entityType)
		if err != nil {
			return fmt.Errorf("failed to link note: %w", err)
		}
		return nil
	})
}

// UnlinkNote detaches a note from an entity.
func (s *Store) UnlinkNote(noteID, entityID, entityType string) error {
	return s.safe("unlink_note", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec(`DELETE FROM note_links
			WHERE note_id = ? AND entity_id = ? AND entity_type = ?`,
			noteID, entityID, entityType)
		if err != nil {
			return fmt.Errorf("failed to unlink note: %w", err)
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
