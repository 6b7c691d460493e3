// file: internal/database/items.go
// version: 1.3.0
// guid: 1f6b3a84-0e2d-49c7-8fd5-b47a90c6e218

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

const itemSelectColumns = `id, book_id, name, description, origin, powers, holders,
	image_path, field_visibility, ui_state, created_at, updated_at`

func scanItem(scanner rowScanner, i *models.Item) error {
	var description, origin sql.NullString
	var powers, holders, imagePath, fieldVisibility, uiState sql.NullString

	err := scanner.Scan(&i.ID, &i.BookID, &i.Name, &description, &origin, &powers,
		&holders, &imagePath, &fieldVisibility, &uiState, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return err
	}

	if description.Valid {
		i.Description = &description.String
	}
	if origin.Valid {
		i.Origin = &origin.String
	}
	i.Powers = parseJSONColumn(powers, "items.powers", []string{})
	i.Holders = parseJSONColumn(holders, "items.holders", []models.EntityRef{})
	if imagePath.Valid {
		i.ImagePath = &imagePath.String
	}
	i.FieldVisibility = parseJSONColumn(fieldVisibility, "items.field_visibility", map[string]bool{})
	i.UIState = rawMessageFromColumn(uiState)
	return nil
}

// GetItemsByBookID returns all items of a book, by name.
func (s *Store) GetItemsByBookID(bookID string) ([]models.Item, error) {
	items := []models.Item{}
	err := s.safe("get_items", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM items
			WHERE book_id = ? ORDER BY name COLLATE NOCASE`, itemSelectColumns), bookID)
		if err != nil {
			return fmt.Errorf("failed to query items: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var i models.Item
			if err := scanItem(rows, &i); err != nil {
				return fmt.Errorf("failed to scan item: %w", err)
			}
			items = append(items, i)
		}
		return rows.Err()
	})
	return items, err
}

// GetItemByID returns one item.
func (s *Store) GetItemByID(id string) (*models.Item, error) {
	var i models.Item
	err := s.safe("get_item", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		row := db.QueryRow(fmt.Sprintf("SELECT %s FROM items WHERE id = ?", itemSelectColumns), id)
		if err := scanItem(row, &i); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// CreateItem inserts an item and its automatic main version.
func (s *Store) CreateItem(bookID, name string) (*models.Item, error) {
	var i models.Item
	err := s.safe("create_item", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate item id: %w", err)
		}
		now := time.Now()
		return withTx(db, func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO items (id, book_id, name, powers, holders, field_visibility, created_at, updated_at)
				VALUES (?, ?, ?, '[]', '[]', '{}', ?, ?)`,
				id, bookID, name, now, now)
			if err != nil {
				return fmt.Errorf("failed to create item: %w", err)
			}
			if err := createMainVersion(tx, models.EntityTypeItem, id, "Main"); err != nil {
				return err
			}
			i = models.Item{
				ID:              id,
				BookID:          bookID,
				Name:            name,
				Powers:          []string{},
				Holders:         []models.EntityRef{},
				FieldVisibility: map[string]bool{},
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// UpdateItem merges a partial patch and writes the full row back.
func (s *Store) UpdateItem(id string, patch models.ItemPatch) (*models.Item, error) {
	var i models.Item
	err := s.safe("update_item", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			row := tx.QueryRow(fmt.Sprintf("SELECT %s FROM items WHERE id = ?", itemSelectColumns), id)
			if err := scanItem(row, &i); err != nil {
				if err == sql.ErrNoRows {
					return ErrNotFound
				}
				return fmt.Errorf("failed to read item for update: %w", err)
			}

			if patch.Name != nil {
				i.Name = *patch.Name
			}
			if patch.Description != nil {
				i.Description = patch.Description
			}
			if patch.Origin != nil {
				i.Origin = patch.Origin
			}
			if patch.Powers != nil {
				i.Powers = *patch.Powers
			}
			if patch.Holders != nil {
				i.Holders = *patch.Holders
			}
			if patch.ImagePath != nil {
				i.ImagePath = patch.ImagePath
			}
			if patch.FieldVisibility != nil {
				i.FieldVisibility = *patch.FieldVisibility
			}
			if len(patch.UIState) > 0 {
				i.UIState = patch.UIState
			}
			i.UpdatedAt = time.Now()

			_, err := tx.Exec(`UPDATE items SET name = ?, description = ?, origin = ?, powers = ?,
				holders = ?, image_path = ?, field_visibility = ?, ui_state = ?, updated_at = ?
				WHERE id = ?`,
				i.Name, i.Description, i.Origin, marshalJSONList(i.Powers),
				marshalJSONList(i.Holders), i.ImagePath, marshalJSONMap(i.FieldVisibility),
				rawMessageColumn(i.UIState), i.UpdatedAt, id)
			if err != nil {
				return fmt.Errorf("failed to update item: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// DeleteItem removes an item, its polymorphic rows and its image file.
func (s *Store) DeleteItem(id string) error {
	return s.safe("delete_item", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			var imagePath sql.NullString
			err := tx.QueryRow("SELECT image_path FROM items WHERE id = ?", id).Scan(&imagePath)
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to read item: %w", err)
			}

			if err := deleteEntityVersions(tx, s.assets, models.EntityTypeItem, id); err != nil {
				return err
			}
			if err := deleteEntityRelationships(tx, models.EntityTypeItem, id); err != nil {
				return err
			}
			if err := deleteEntityLinkRows(tx, models.EntityTypeItem, id); err != nil {
				return err
			}

			if _, err := tx.Exec("DELETE FROM items WHERE id = ?", id); err != nil {
				return fmt.Errorf("failed to delete item: %w", err)
			}

			if imagePath.Valid {
				removeAssetFiles(s.assets, []string{imagePath.String})
			}
			return nil
		})
	})
}
