// file: internal/database/races.go
// version: 1.3.0
// guid: 7e0c4d92-3a65-48fb-b1e8-96d20c7f4a13

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

const raceSelectColumns = `id, book_id, name, description, homelands, traits, lifespan_years,
	image_path, field_visibility, ui_state, created_at, updated_at`

func scanRace(scanner rowScanner, r *models.Race) error {
	var description sql.NullString
	var homelands, traits sql.NullString
	var lifespanYears sql.NullInt64
	var imagePath, fieldVisibility, uiState sql.NullString

	err := scanner.Scan(&r.ID, &r.BookID, &r.Name, &description, &homelands, &traits,
		&lifespanYears, &imagePath, &fieldVisibility, &uiState, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return err
	}

	if description.Valid {
		r.Description = &description.String
	}
	r.Homelands = parseJSONColumn(homelands, "races.homelands", []models.Location{})
	r.Traits = parseJSONColumn(traits, "races.traits", []string{})
	if lifespanYears.Valid {
		v := int(lifespanYears.Int64)
		r.LifespanYears = &v
	}
	if imagePath.Valid {
		r.ImagePath = &imagePath.String
	}
	r.FieldVisibility = parseJSONColumn(fieldVisibility, "races.field_visibility", map[string]bool{})
	r.UIState = rawMessageFromColumn(uiState)
	return nil
}

// GetRacesByBookID returns all races of a book, by name.
func (s *Store) GetRacesByBookID(bookID string) ([]models.Race, error) {
	races := []models.Race{}
	err := s.safe("get_races", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM races
			WHERE book_id = ? ORDER BY name COLLATE NOCASE`, raceSelectColumns), bookID)
		if err != nil {
			return fmt.Errorf("failed to query races: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var r models.Race
			if err := scanRace(rows, &r); err != nil {
				return fmt.Errorf("failed to scan race: %w", err)
			}
			races = append(races, r)
		}
		return rows.Err()
	})
	return races, err
}

// GetRaceByID returns one race.
func (s *Store) GetRaceByID(id string) (*models.Race, error) {
	var r models.Race
	err := s.safe("get_race", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		row := db.QueryRow(fmt.Sprintf("SELECT %s FROM races WHERE id = ?", raceSelectColumns), id)
		if err := scanRace(row, &r); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get race: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRace inserts a race and its automatic main version.
func (s *Store) CreateRace(bookID, name string) (*models.Race, error) {
	var r models.Race
	err := s.safe("create_race", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate race id: %w", err)
		}
		now := time.Now()
		return withTx(db, func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO races (id, book_id, name, homelands, traits, field_visibility, created_at, updated_at)
				VALUES (?, ?, ?, '[]', '[]', '{}', ?, ?)`,
				id, bookID, name, now, now)
			if err != nil {
				return fmt.Errorf("failed to create race: %w", err)
			}
			if err := createMainVersion(tx, models.EntityTypeRace, id, "Main"); err != nil {
				return err
			}
			r = models.Race{
				ID:              id,
				BookID:          bookID,
				Name:            name,
				Homelands:       []models.Location{},
				Traits:          []string{},
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
	return &r, nil
}

// UpdateRace merges a partial patch and writes the full row back.
func (s *Store) UpdateRace(id string, patch models.RacePatch) (*models.Race, error) {
	var r models.Race
	err := s.safe("update_race", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			row := tx.QueryRow(fmt.Sprintf("SELECT %s FROM races WHERE id = ?", raceSelectColumns), id)
			if err := scanRace(row, &r); err != nil {
				if err == sql.ErrNoRows {
					return ErrNotFound
				}
				return fmt.Errorf("failed to read race for update: %w", err)
			}

			if patch.Name != nil {
				r.Name = *patch.Name
			}
			if patch.Description != nil {
				r.Description = patch.Description
			}
			if patch.Homelands != nil {
				r.Homelands = *patch.Homelands
			}
			if patch.Traits != nil {
				r.Traits = *patch.Traits
			}
			if patch.LifespanYears != nil {
				r.LifespanYears = patch.LifespanYears
			}
			if patch.ImagePath != nil {
				r.ImagePath = patch.ImagePath
			}
			if patch.FieldVisibility != nil {
				r.FieldVisibility = *patch.FieldVisibility
			}
			if len(patch.UIState) > 0 {
				r.UIState = patch.UIState
			}
			r.UpdatedAt = time.Now()

			var lifespan *int64
			if r.LifespanYears != nil {
				v := int64(*r.LifespanYears)
				lifespan = &v
			}
			_, err := tx.Exec(`UPDATE races SET name = ?, description = ?, homelands = ?,
				traits = ?, lifespan_years = ?, image_path = ?, field_visibility = ?,
				ui_state = ?, updated_at = ? WHERE id = ?`,
				r.Name, r.Description, marshalJSONList(r.Homelands), marshalJSONList(r.Traits),
				lifespan, r.ImagePath, marshalJSONMap(r.FieldVisibility),
				rawMessageColumn(r.UIState), r.UpdatedAt, id)
			if err != nil {
				return fmt.Errorf("failed to update race: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRace removes a race, strips its id from character species lists,
// deletes its polymorphic rows, and removes its image file.
func (s *Store) DeleteRace(id string) error {
	return s.safe("delete_race", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			var imagePath sql.NullString
			err := tx.QueryRow("SELECT image_path FROM races WHERE id = ?", id).Scan(&imagePath)
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to read race: %w", err)
			}

			if err := removeFromJSONArray(tx, "characters", "species", "id", id); err != nil {
				return err
			}

			if err := deleteEntityVersions(tx, s.assets, models.EntityTypeRace, id); err != nil {
				return err
			}
			if err := deleteEntityRelationships(tx, models.EntityTypeRace, id); err != nil {
				return err
			}
			if err := deleteEntityLinkRows(tx, models.EntityTypeRace, id); err != nil {
				return err
			}

			if _, err := tx.Exec("DELETE FROM races WHERE id = ?", id); err != nil {
				return fmt.Errorf("failed to delete race: %w", err)
			}

			if imagePath.Valid {
				removeAssetFiles(s.assets, []string{imagePath.String})
			}
			return nil
		})
	})
}
