// file: internal/database/factions.go
// version: 1.4.0
// guid: c25a8e1f-6d93-40b7-82c4-f0a9615d3be8

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

const factionSelectColumns = `id, book_id, name, summary, emblem_path, founders, hierarchy,
	diplomacy, timeline, field_visibility, ui_state, created_at, updated_at`

func scanFaction(scanner rowScanner, f *models.Faction) error {
	var summary, emblemPath sql.NullString
	var founders, hierarchy, diplomacy, timeline, fieldVisibility, uiState sql.NullString

	err := scanner.Scan(&f.ID, &f.BookID, &f.Name, &summary, &emblemPath, &founders,
		&hierarchy, &diplomacy, &timeline, &fieldVisibility, &uiState,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return err
	}

	if summary.Valid {
		f.Summary = &summary.String
	}
	if emblemPath.Valid {
		f.EmblemPath = &emblemPath.String
	}
	f.Founders = parseJSONColumn(founders, "factions.founders", []models.EntityRef{})
	f.Hierarchy = parseJSONColumn(hierarchy, "factions.hierarchy", []models.HierarchyNode{})
	f.Diplomacy = parseJSONColumn(diplomacy, "factions.diplomacy", []models.DiplomaticRelation{})
	f.Timeline = parseJSONColumn(timeline, "factions.timeline", []models.TimelineEra{})
	f.FieldVisibility = parseJSONColumn(fieldVisibility, "factions.field_visibility", map[string]bool{})
	f.UIState = rawMessageFromColumn(uiState)
	return nil
}

// GetFactionsByBookID returns all factions of a book, by name.
func (s *Store) GetFactionsByBookID(bookID string) ([]models.Faction, error) {
	factions := []models.Faction{}
	err := s.safe("get_factions", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM factions
			WHERE book_id = ? ORDER BY name COLLATE NOCASE`, factionSelectColumns), bookID)
		if err != nil {
			return fmt.Errorf("failed to query factions: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var f models.Faction
			if err := scanFaction(rows, &f); err != nil {
				return fmt.Errorf("failed to scan faction: %w", err)
			}
			factions = append(factions, f)
		}
		return rows.Err()
	})
	return factions, err
}

// GetFactionByID returns one faction.
func (s *Store) GetFactionByID(id string) (*models.Faction, error) {
	var f models.Faction
	err := s.safe("get_faction", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		row := db.QueryRow(fmt.Sprintf("SELECT %s FROM factions WHERE id = ?", factionSelectColumns), id)
		if err := scanFaction(row, &f); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get faction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFaction inserts a faction and its automatic main version.
func (s *Store) CreateFaction(bookID, name string) (*models.Faction, error) {
	var f models.Faction
	err := s.safe("create_faction", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate faction id: %w", err)
		}
		now := time.Now()
		return withTx(db, func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO factions (id, book_id, name, founders, hierarchy, diplomacy, timeline, field_visibility, created_at, updated_at)
				VALUES (?, ?, ?, '[]', '[]', '[]', '[]', '{}', ?, ?)`,
				id, bookID, name, now, now)
			if err != nil {
				return fmt.Errorf("failed to create faction: %w", err)
			}
			if err := createMainVersion(tx, models.EntityTypeFaction, id, "Main"); err != nil {
				return err
			}
			f = models.Faction{
				ID:              id,
				BookID:          bookID,
				Name:            name,
				Founders:        []models.EntityRef{},
				Hierarchy:       []models.HierarchyNode{},
				Diplomacy:       []models.DiplomaticRelation{},
				Timeline:        []models.TimelineEra{},
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
	return &f, nil
}

// UpdateFaction merges a partial patch and writes the full row back.
func (s *Store) UpdateFaction(id string, patch models.FactionPatch) (*models.Faction, error) {
	var f models.Faction
	err := s.safe("update_faction", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			row := tx.QueryRow(fmt.Sprintf("SELECT %s FROM factions WHERE id = ?", factionSelectColumns), id)
			if err := scanFaction(row, &f); err != nil {
				if err == sql.ErrNoRows {
					return ErrNotFound
				}
				return fmt.Errorf("failed to read faction for update: %w", err)
			}

			if patch.Name != nil {
				f.Name = *patch.Name
			}
			if patch.Summary != nil {
				f.Summary = patch.Summary
			}
			if patch.EmblemPath != nil {
				f.EmblemPath = patch.EmblemPath
			}
			if patch.Founders != nil {
				f.Founders = *patch.Founders
			}
			if patch.Hierarchy != nil {
				f.Hierarchy = *patch.Hierarchy
			}
			if patch.Diplomacy != nil {
				f.Diplomacy = *patch.Diplomacy
			}
			if patch.Timeline != nil {
				f.Timeline = *patch.Timeline
			}
			if patch.FieldVisibility != nil {
				f.FieldVisibility = *patch.FieldVisibility
			}
			if len(patch.UIState) > 0 {
				f.UIState = patch.UIState
			}
			f.UpdatedAt = time.Now()

			_, err := tx.Exec(`UPDATE factions SET name = ?, summary = ?, emblem_path = ?,
				founders = ?, hierarchy = ?, diplomacy = ?, timeline = ?,
				field_visibility = ?, ui_state = ?, updated_at = ? WHERE id = ?`,
				f.Name, f.Summary, f.EmblemPath,
				marshalJSONList(f.Founders), marshalJSONList(f.Hierarchy),
				marshalJSONList(f.Diplomacy), marshalJSONList(f.Timeline),
				marshalJSONMap(f.FieldVisibility), rawMessageColumn(f.UIState), f.UpdatedAt, id)
			if err != nil {
				return fmt.Errorf("failed to update faction: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFaction removes a faction, strips it from every other faction's
// diplomacy list, deletes its polymorphic rows, and removes its emblem
// file. One transaction.
func (s *Store) DeleteFaction(id string) error {
	return s.safe("delete_faction", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			var emblemPath sql.NullString
			err := tx.QueryRow("SELECT emblem_path FROM factions WHERE id = ?", id).Scan(&emblemPath)
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to read faction: %w", err)
			}

			if err := removeFromJSONArray(tx, "factions", "diplomacy", "faction_id", id); err != nil {
				return err
			}

			if err := deleteEntityVersions(tx, s.assets, models.EntityTypeFaction, id); err != nil {
				return err
			}
			if err := deleteEntityRelationships(tx, models.EntityTypeFaction, id); err != nil {
				return err
			}
			if err := deleteEntityLinkRows(tx, models.EntityTypeFaction, id); err != nil {
				return err
			}

			if _, err := tx.Exec("DELETE FROM factions WHERE id = ?", id); err != nil {
				return fmt.Errorf("failed to delete faction: %w", err)
			}

			if emblemPath.Valid {
				removeAssetFiles(s.assets, []string{emblemPath.String})
			}
			return nil
		})
	})
}
