// file: internal/database/books.go
// version: 1.6.0
// guid: 2d8f4b6a-9c1e-4753-a0b8-5e7d3f92c614

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

const bookSelectColumns = `id, title, status, genres, synopsis, cover_path, goals, progress,
	sticky_notes, checklist, section_visibility, tabs, created_at, updated_at, last_opened_at`

func scanBook(scanner rowScanner, b *models.Book) error {
	var genres, synopsis, coverPath, goals, progress sql.NullString
	var stickyNotes, checklist, sectionVisibility, tabs sql.NullString
	var lastOpenedAt sql.NullTime

	err := scanner.Scan(&b.ID, &b.Title, &b.Status, &genres, &synopsis, &coverPath,
		&goals, &progress, &stickyNotes, &checklist, &sectionVisibility, &tabs,
		&b.CreatedAt, &b.UpdatedAt, &lastOpenedAt)
	if err != nil {
		return err
	}

	b.Genres = parseJSONColumn(genres, "books.genres", []string{})
	if synopsis.Valid {
		b.Synopsis = &synopsis.String
	}
	if coverPath.Valid {
		b.CoverPath = &coverPath.String
	}
	b.Goals = parseJSONColumn(goals, "books.goals", (*models.BookGoals)(nil))
	b.Progress = parseJSONColumn(progress, "books.progress", (*models.StoryProgress)(nil))
	b.StickyNotes = parseJSONColumn(stickyNotes, "books.sticky_notes", []models.StickyNote{})
	b.Checklist = parseJSONColumn(checklist, "books.checklist", []models.ChecklistItem{})
	b.SectionVisibility = parseJSONColumn(sectionVisibility, "books.section_visibility", map[string]bool{})
	b.Tabs = parseJSONColumn(tabs, "books.tabs", []models.TabConfig{})
	if lastOpenedAt.Valid {
		b.LastOpenedAt = &lastOpenedAt.Time
	}
	return nil
}

// GetAllBooks returns every book, most recently opened first.
func (s *Store) GetAllBooks() ([]models.Book, error) {
	books := []models.Book{}
	err := s.safe("get_all_books", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM books
			ORDER BY COALESCE(last_opened_at, created_at) DESC`, bookSelectColumns))
		if err != nil {
			return fmt.Errorf("failed to query books: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var b models.Book
			if err := scanBook(rows, &b); err != nil {
				return fmt.Errorf("failed to scan book: %w", err)
			}
			books = append(books, b)
		}
		return rows.Err()
	})
	return books, err
}

// GetBookByID returns one book.
func (s *Store) GetBookByID(id string) (*models.Book, error) {
	var b models.Book
	err := s.safe("get_book", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		row := db.QueryRow(fmt.Sprintf("SELECT %s FROM books WHERE id = ?", bookSelectColumns), id)
		if err := scanBook(row, &b); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get book: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBook inserts a new book project.
func (s *Store) CreateBook(title string, status models.BookStatus, genres []string, synopsis *string) (*models.Book, error) {
	var b models.Book
	err := s.safe("create_book", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate book id: %w", err)
		}
		if status == "" {
			status = models.BookStatusPlanning
		}
		now := time.Now()
		_, err = db.Exec(`INSERT INTO books (id, title, status, genres, synopsis, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, title, status, marshalJSONList(genres), synopsis, now, now)
		if err != nil {
			return fmt.Errorf("failed to create book: %w", err)
		}
		b = models.Book{
			ID:                id,
			Title:             title,
			Status:            status,
			Genres:            append([]string{}, genres...),
			Synopsis:          synopsis,
			StickyNotes:       []models.StickyNote{},
			Checklist:         []models.ChecklistItem{},
			SectionVisibility: map[string]bool{},
			Tabs:              []models.TabConfig{},
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBook applies a partial update: the current row is read, patched
// fields are merged over it, and the whole row is written back in the
// same transaction.
func (s *Store) UpdateBook(id string, patch models.BookPatch) (*models.Book, error) {
	var b models.Book
	err := s.safe("update_book", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			row := tx.QueryRow(fmt.Sprintf("SELECT %s FROM books WHERE id = ?", bookSelectColumns), id)
			if err := scanBook(row, &b); err != nil {
				if err == sql.ErrNoRows {
					return ErrNotFound
				}
				return fmt.Errorf("failed to read book for update: %w", err)
			}

			if patch.Title != nil {
				b.Title = *patch.Title
			}
			if patch.Status != nil {
				b.Status = *patch.Status
			}
			if patch.Genres != nil {
				b.Genres = *patch.Genres
			}
			if patch.Synopsis != nil {
				b.Synopsis = patch.Synopsis
			}
			if patch.CoverPath != nil {
				b.CoverPath = patch.CoverPath
			}
			b.UpdatedAt = time.Now()

			_, err := tx.Exec(`UPDATE books SET title = ?, status = ?, genres = ?, synopsis = ?,
				cover_path = ?, updated_at = ? WHERE id = ?`,
				b.Title, b.Status, marshalJSONList(b.Genres), b.Synopsis, b.CoverPath, b.UpdatedAt, id)
			if err != nil {
				return fmt.Errorf("failed to update book: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBookOverview replaces the overview blobs (goals, progress,
// sticky notes, checklist, section visibility) in one write.
func (s *Store) UpdateBookOverview(id string, overview models.BookOverview) error {
	return s.safe("update_book_overview", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		var goals, progress *string
		if overview.Goals != nil {
			goals = marshalJSONValue(overview.Goals)
		}
		if overview.Progress != nil {
			progress = marshalJSONValue(overview.Progress)
		}
		result, err := db.Exec(`UPDATE books SET goals = ?, progress = ?, sticky_notes = ?,
			checklist = ?, section_visibility = ?, updated_at = ? WHERE id = ?`,
			goals, progress, marshalJSONList(overview.StickyNotes),
			marshalJSONList(overview.Checklist), marshalJSONMap(overview.SectionVisibility),
			time.Now(), id)
		if err != nil {
			return fmt.Errorf("failed to update book overview: %w", err)
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

// UpdateBookTabs replaces the workspace tab configuration.
func (s *Store) UpdateBookTabs(id string, tabs []models.TabConfig) error {
	return s.safe("update_book_tabs", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec("UPDATE books SET tabs = ?, updated_at = ? WHERE id = ?",
			marshalJSONList(tabs), time.Now(), id)
		if err != nil {
			return fmt.Errorf("failed to update book tabs: %w", err)
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

// TouchBookLastOpened stamps the book as just opened.
func (s *Store) TouchBookLastOpened(id string) error {
	return s.safe("touch_book_last_opened", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec("UPDATE books SET last_opened_at = ? WHERE id = ?", time.Now(), id)
		if err != nil {
			return fmt.Errorf("failed to touch book: %w", err)
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

// DeleteBook removes a book and everything under it. Child rows go via
// ON DELETE CASCADE; the polymorphic version and relationship rows are
// deleted explicitly in the same transaction, and the asset files of the
// whole subtree are removed after the commit point is reached.
func (s *Store) DeleteBook(id string) error {
	return s.safe("delete_book", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			paths, err := collectBookAssetPaths(tx, id)
			if err != nil {
				return err
			}

			// Versions and relationships key on (entity_type, entity_id)
			// and cannot cascade from the entity tables.
			entityTables := map[string]string{
				models.EntityTypeCharacter: "characters",
				models.EntityTypeFaction:   "factions",
				models.EntityTypeRace:      "races",
				models.EntityTypeItem:      "items",
				models.EntityTypeRegion:    "regions",
			}
			for entityType, table := range entityTables {
				_, err := tx.Exec(fmt.Sprintf(`DELETE FROM entity_versions
					WHERE entity_type = ? AND entity_id IN (SELECT id FROM %s WHERE book_id = ?)`, table),
					entityType, id)
				if err != nil {
					return fmt.Errorf("failed to delete %s versions: %w", entityType, err)
				}
				_, err = tx.Exec(fmt.Sprintf(`DELETE FROM entity_relationships
					WHERE entity_type = ? AND (owner_id IN (SELECT id FROM %s WHERE book_id = ?)
						OR target_id IN (SELECT id FROM %s WHERE book_id = ?))`, table, table),
					entityType, id, id)
				if err != nil {
					return fmt.Errorf("failed to delete %s relationships: %w", entityType, err)
				}
			}

			result, err := tx.Exec("DELETE FROM books WHERE id = ?", id)
			if err != nil {
				return fmt.Errorf("failed to delete book: %w", err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrNotFound
			}

			removeAssetFiles(s.assets, paths)
			return nil
		})
	})
}

// collectBookAssetPaths gathers every on-disk asset path referenced by a
// book's subtree before the rows disappear.
func collectBookAssetPaths(tx *sql.Tx, bookID string) ([]string, error) {
	queries := []struct {
		query string
		args  []any
	}{
		{"SELECT cover_path FROM books WHERE id = ? AND cover_path IS NOT NULL", []any{bookID}},
		{"SELECT image_path FROM characters WHERE book_id = ? AND image_path IS NOT NULL", []any{bookID}},
		{"SELECT emblem_path FROM factions WHERE book_id = ? AND emblem_path IS NOT NULL", []any{bookID}},
		{"SELECT image_path FROM races WHERE book_id = ? AND image_path IS NOT NULL", []any{bookID}},
		{"SELECT image_path FROM items WHERE book_id = ? AND image_path IS NOT NULL", []any{bookID}},
		{"SELECT image_path FROM gallery_images WHERE book_id = ?", []any{bookID}},
		{`SELECT thumbnail_path FROM gallery_images
			WHERE book_id = ? AND thumbnail_path IS NOT NULL AND thumbnail_path NOT LIKE 'data:%'`, []any{bookID}},
		{`SELECT rm.image_path FROM region_maps rm
			JOIN regions r ON r.id = rm.region_id WHERE r.book_id = ?`, []any{bookID}},
	}

	paths := []string{}
	for _, q := range queries {
		found, err := collectStringsTx(tx, q.query, q.args...)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}
