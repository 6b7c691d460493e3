// file: internal/database/characters.go
// version: 1.5.0
// guid: 6a3e9f2d-8b40-47c1-95e6-d17b4c08a352

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

const characterSelectColumns = `id, book_id, name, age, role, summary, appearance, personality,
	species, birthplaces, image_path, field_visibility, ui_state, created_at, updated_at`

func scanCharacter(scanner rowScanner, c *models.Character) error {
	var age sql.NullInt64
	var role, summary, appearance, personality sql.NullString
	var species, birthplaces, imagePath, fieldVisibility, uiState sql.NullString

	err := scanner.Scan(&c.ID, &c.BookID, &c.Name, &age, &role, &summary, &appearance,
		&personality, &species, &birthplaces, &imagePath, &fieldVisibility, &uiState,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return err
	}

	if age.Valid {
		v := int(age.Int64)
		c.Age = &v
	}
	if role.Valid {
		c.Role = &role.String
	}
	if summary.Valid {
		c.Summary = &summary.String
	}
	if appearance.Valid {
		c.Appearance = &appearance.String
	}
	if personality.Valid {
		c.Personality = &personality.String
	}
	c.Species = parseJSONColumn(species, "characters.species", []string{})
	c.Birthplaces = parseJSONColumn(birthplaces, "characters.birthplaces", []models.Location{})
	if imagePath.Valid {
		c.ImagePath = &imagePath.String
	}
	c.FieldVisibility = parseJSONColumn(fieldVisibility, "characters.field_visibility", map[string]bool{})
	c.UIState = rawMessageFromColumn(uiState)
	return nil
}

// GetCharactersByBookID returns all characters of a book, by name.
func (s *Store) GetCharactersByBookID(bookID string) ([]models.Character, error) {
	characters := []models.Character{}
	err := s.safe("get_characters", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM characters
			WHERE book_id = ? ORDER BY name COLLATE NOCASE`, characterSelectColumns), bookID)
		if err != nil {
			return fmt.Errorf("failed to query characters: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var c models.Character
			if err := scanCharacter(rows, &c); err != nil {
				return fmt.Errorf("failed to scan character: %w", err)
			}
			characters = append(characters, c)
		}
		return rows.Err()
	})
	return characters, err
}

// GetCharacterByID returns one character.
func (s *Store) GetCharacterByID(id string) (*models.Character, error) {
	var c models.Character
	err := s.safe("get_character", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		row := db.QueryRow(fmt.Sprintf("SELECT %s FROM characters WHERE id = ?", characterSelectColumns), id)
		if err := scanCharacter(row, &c); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get character: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCharacter inserts a character and its automatic main version in
// one transaction.
func (s *Store) CreateCharacter(bookID, name string) (*models.Character, error) {
	var c models.Character
	err := s.safe("create_character", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate character id: %w", err)
		}
		now := time.Now()
		return withTx(db, func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO characters (id, book_id, name, species, birthplaces, field_visibility, created_at, updated_at)
				VALUES (?, ?, ?, '[]', '[]', '{}', ?, ?)`,
				id, bookID, name, now, now)
			if err != nil {
				return fmt.Errorf("failed to create character: %w", err)
			}
			if err := createMainVersion(tx, models.EntityTypeCharacter, id, "Main"); err != nil {
				return err
			}
			c = models.Character{
				ID:              id,
				BookID:          bookID,
				Name:            name,
				Species:         []string{},
				Birthplaces:     []models.Location{},
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
	return &c, nil
}

// UpdateCharacter merges a partial patch over the current row and writes
// the full row back.
func (s *Store) UpdateCharacter(id string, patch models.CharacterPatch) (*models.Character, error) {
	var c models.Character
	err := s.safe("update_character", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			row := tx.QueryRow(fmt.Sprintf("SELECT %s FROM characters WHERE id = ?", characterSelectColumns), id)
			if err := scanCharacter(row, &c); err != nil {
				if err == sql.ErrNoRows {
					return ErrNotFound
				}
				return fmt.Errorf("failed to read character for update: %w", err)
			}

			if patch.Name != nil {
				c.Name = *patch.Name
			}
			if patch.Age != nil {
				c.Age = patch.Age
			}
			if patch.Role != nil {
				c.Role = patch.Role
			}
			if patch.Summary != nil {
				c.Summary = patch.Summary
			}
			if patch.Appearance != nil {
				c.Appearance = patch.Appearance
			}
			if patch.Personality != nil {
				c.Personality = patch.Personality
			}
			if patch.Species != nil {
				c.Species = *patch.Species
			}
			if patch.Birthplaces != nil {
				c.Birthplaces = *patch.Birthplaces
			}
			if patch.ImagePath != nil {
				c.ImagePath = patch.ImagePath
			}
			if patch.FieldVisibility != nil {
				c.FieldVisibility = *patch.FieldVisibility
			}
			if len(patch.UIState) > 0 {
				c.UIState = patch.UIState
			}
			c.UpdatedAt = time.Now()

			var age *int64
			if c.Age != nil {
				v := int64(*c.Age)
				age = &v
			}
			_, err := tx.Exec(`UPDATE characters SET name = ?, age = ?, role = ?, summary = ?,
				appearance = ?, personality = ?, species = ?, birthplaces = ?, image_path = ?,
				field_visibility = ?, ui_state = ?, updated_at = ? WHERE id = ?`,
				c.Name, age, c.Role, c.Summary, c.Appearance, c.Personality,
				marshalJSONList(c.Species), marshalJSONList(c.Birthplaces), c.ImagePath,
				marshalJSONMap(c.FieldVisibility), rawMessageColumn(c.UIState), c.UpdatedAt, id)
			if err != nil {
				return fmt.Errorf("failed to update character: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCharacter removes a character and every reference to it: JSON
// arrays in other entities are stripped, hierarchy seats vacated,
// polymorphic rows deleted, and the portrait file removed. The whole
// sweep and the row delete share one transaction.
func (s *Store) DeleteCharacter(id string) error {
	return s.safe("delete_character", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			var imagePath sql.NullString
			err := tx.QueryRow("SELECT image_path FROM characters WHERE id = ?", id).Scan(&imagePath)
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to read character: %w", err)
			}

			if err := removeFromJSONArray(tx, "factions", "founders", "id", id); err != nil {
				return err
			}
			if err := removeFromNestedJSONArray(tx, "factions", "timeline", "*.events.*.charactersInvolved", id); err != nil {
				return err
			}
			if err := clearTreeHolder(tx, "factions", "hierarchy", "children", "holder_id", id); err != nil {
				return err
			}
			if err := removeFromJSONArray(tx, "items", "holders", "id", id); err != nil {
				return err
			}

			if err := deleteEntityVersions(tx, s.assets, models.EntityTypeCharacter, id); err != nil {
				return err
			}
			if err := deleteEntityRelationships(tx, models.EntityTypeCharacter, id); err != nil {
				return err
			}
			if err := deleteEntityLinkRows(tx, models.EntityTypeCharacter, id); err != nil {
				return err
			}

			if _, err := tx.Exec("DELETE FROM characters WHERE id = ?", id); err != nil {
				return fmt.Errorf("failed to delete character: %w", err)
			}

			if imagePath.Valid {
				removeAssetFiles(s.assets, []string{imagePath.String})
			}
			return nil
		})
	})
}
