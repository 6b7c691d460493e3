// file: internal/database/regions.go
// version: 1.6.0
// guid: 3b9d7f40-2c8a-4e15-b6d3-08f1a5c492e7

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

const regionSelectColumns = `id, book_id, name, summary, parent_id, order_index, climate,
	territory, field_visibility, ui_state, created_at, updated_at`

func scanRegion(scanner rowScanner, r *models.Region) error {
	var summary, parentID, climate sql.NullString
	var territory, fieldVisibility, uiState sql.NullString

	err := scanner.Scan(&r.ID, &r.BookID, &r.Name, &summary, &parentID, &r.OrderIndex,
		&climate, &territory, &fieldVisibility, &uiState, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return err
	}

	if summary.Valid {
		r.Summary = &summary.String
	}
	if parentID.Valid {
		r.ParentID = &parentID.String
	}
	if climate.Valid {
		r.Climate = &climate.String
	}
	r.Territory = parseJSONColumn(territory, "regions.territory", []string{})
	r.FieldVisibility = parseJSONColumn(fieldVisibility, "regions.field_visibility", map[string]bool{})
	r.UIState = rawMessageFromColumn(uiState)
	return nil
}

// GetRegionsByBookID returns the full region tree of a book as a flat
// list ordered for tree assembly: parents before children is not
// guaranteed, but siblings come back in display order.
func (s *Store) GetRegionsByBookID(bookID string) ([]models.Region, error) {
	regions := []models.Region{}
	err := s.safe("get_regions", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM regions
			WHERE book_id = ? ORDER BY COALESCE(parent_id, ''), order_index, name COLLATE NOCASE`,
			regionSelectColumns), bookID)
		if err != nil {
			return fmt.Errorf("failed to query regions: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var r models.Region
			if err := scanRegion(rows, &r); err != nil {
				return fmt.Errorf("failed to scan region: %w", err)
			}
			regions = append(regions, r)
		}
		return rows.Err()
	})
	return regions, err
}

// GetRegionByID returns one region.
func (s *Store) GetRegionByID(id string) (*models.Region, error) {
	var r models.Region
	err := s.safe("get_region", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		row := db.QueryRow(fmt.Sprintf("SELECT %s FROM regions WHERE id = ?", regionSelectColumns), id)
		if err := scanRegion(row, &r); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get region: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRegion inserts a region at the end of its sibling list, together
// with its automatic main version.
func (s *Store) CreateRegion(bookID, name string, parentID *string) (*models.Region, error) {
	var r models.Region
	err := s.safe("create_region", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate region id: %w", err)
		}
		now := time.Now()
		return withTx(db, func(tx *sql.Tx) error {
			if parentID != nil {
				var parentBook string
				err := tx.QueryRow("SELECT book_id FROM regions WHERE id = ?", *parentID).Scan(&parentBook)
				if err == sql.ErrNoRows {
					return fmt.Errorf("parent region %s does not exist", *parentID)
				}
				if err != nil {
					return fmt.Errorf("failed to check parent region: %w", err)
				}
				if parentBook != bookID {
					return fmt.Errorf("parent region belongs to a different book")
				}
			}

			var orderIndex int
			err := tx.QueryRow(`SELECT COALESCE(MAX(order_index) + 1, 0) FROM regions
				WHERE book_id = ? AND COALESCE(parent_id, '') = COALESCE(?, '')`,
				bookID, parentID).Scan(&orderIndex)
			if err != nil {
				return fmt.Errorf("failed to compute region order: %w", err)
			}

			_, err = tx.Exec(`INSERT INTO regions (id, book_id, name, parent_id, order_index, territory, field_visibility, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, '[]', '{}', ?, ?)`,
				id, bookID, name, parentID, orderIndex, now, now)
			if err != nil {
				return fmt.Errorf("failed to create region: %w", err)
			}
			if err := createMainVersion(tx, models.EntityTypeRegion, id, "Main"); err != nil {
				return err
			}
			r = models.Region{
				ID:              id,
				BookID:          bookID,
				Name:            name,
				ParentID:        parentID,
				OrderIndex:      orderIndex,
				Territory:       []string{},
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

// UpdateRegion merges a partial patch and writes the full row back.
// Parent and order changes go through MoveRegion.
func (s *Store) UpdateRegion(id string, patch models.RegionPatch) (*models.Region, error) {
	var r models.Region
	err := s.safe("update_region", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			row := tx.QueryRow(fmt.Sprintf("SELECT %s FROM regions WHERE id = ?", regionSelectColumns), id)
			if err := scanRegion(row, &r); err != nil {
				if err == sql.ErrNoRows {
					return ErrNotFound
				}
				return fmt.Errorf("failed to read region for update: %w", err)
			}

			if patch.Name != nil {
				r.Name = *patch.Name
			}
			if patch.Summary != nil {
				r.Summary = patch.Summary
			}
			if patch.Climate != nil {
				r.Climate = patch.Climate
			}
			if patch.Territory != nil {
				r.Territory = *patch.Territory
			}
			if patch.FieldVisibility != nil {
				r.FieldVisibility = *patch.FieldVisibility
			}
			if len(patch.UIState) > 0 {
				r.UIState = patch.UIState
			}
			r.UpdatedAt = time.Now()

			_, err := tx.Exec(`UPDATE regions SET name = ?, summary = ?, climate = ?, territory = ?,
				field_visibility = ?, ui_state = ?, updated_at = ? WHERE id = ?`,
				r.Name, r.Summary, r.Climate, marshalJSONList(r.Territory),
				marshalJSONMap(r.FieldVisibility), rawMessageColumn(r.UIState), r.UpdatedAt, id)
			if err != nil {
				return fmt.Errorf("failed to update region: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// MoveRegion reparents a region and slots it at orderIndex among its new
// siblings. A move that would make a region its own ancestor is rejected
// before anything is written.
func (s *Store) MoveRegion(id string, newParentID *string, orderIndex int) error {
	return s.safe("move_region", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			var bookID string
			err := tx.QueryRow("SELECT book_id FROM regions WHERE id = ?", id).Scan(&bookID)
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to read region: %w", err)
			}

			if newParentID != nil {
				if *newParentID == id {
					return fmt.Errorf("region cannot be its own parent")
				}
				var parentBook string
				err := tx.QueryRow("SELECT book_id FROM regions WHERE id = ?", *newParentID).Scan(&parentBook)
				if err == sql.ErrNoRows {
					return fmt.Errorf("parent region %s does not exist", *newParentID)
				}
				if err != nil {
					return fmt.Errorf("failed to check parent region: %w", err)
				}
				if parentBook != bookID {
					return fmt.Errorf("parent region belongs to a different book")
				}

				// Walk up from the new parent; hitting the moved region
				// means the move would create a cycle.
				ancestor := *newParentID
				for {
					var next sql.NullString
					err := tx.QueryRow("SELECT parent_id FROM regions WHERE id = ?", ancestor).Scan(&next)
					if err != nil {
						return fmt.Errorf("failed to walk region ancestry: %w", err)
					}
					if !next.Valid {
						break
					}
					if next.String == id {
						return fmt.Errorf("move would create a cycle in the region tree")
					}
					ancestor = next.String
				}
			}

			// Open a gap at the target position, then drop the region in.
			_, err = tx.Exec(`UPDATE regions SET order_index = order_index + 1
				WHERE book_id = ? AND COALESCE(parent_id, '') = COALESCE(?, '')
				  AND order_index >= ? AND id <> ?`,
				bookID, newParentID, orderIndex, id)
			if err != nil {
				return fmt.Errorf("failed to shift region siblings: %w", err)
			}
			_, err = tx.Exec(`UPDATE regions SET parent_id = ?, order_index = ?, updated_at = ? WHERE id = ?`,
				newParentID, orderIndex, time.Now(), id)
			if err != nil {
				return fmt.Errorf("failed to move region: %w", err)
			}
			return nil
		})
	})
}

// DeleteRegion removes a region and its whole subtree. Every region in
// the subtree is stripped from birthplace/homeland lists and has its
// polymorphic rows deleted; map image files go last. The descendant rows
// themselves fall to the parent_id CASCADE.
func (s *Store) DeleteRegion(id string) error {
	return s.safe("delete_region", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			subtree, err := collectStringsTx(tx, `WITH RECURSIVE subtree(id) AS (
					SELECT id FROM regions WHERE id = ?
					UNION ALL
					SELECT r.id FROM regions r JOIN subtree s ON r.parent_id = s.id
				) SELECT id FROM subtree`, id)
			if err != nil {
				return err
			}
			if len(subtree) == 0 {
				return ErrNotFound
			}

			for _, regionID := range subtree {
				if err := removeFromJSONArray(tx, "characters", "birthplaces", "id", regionID); err != nil {
					return err
				}
				if err := removeFromJSONArray(tx, "races", "homelands", "id", regionID); err != nil {
					return err
				}
				if err := deleteEntityVersions(tx, s.assets, models.EntityTypeRegion, regionID); err != nil {
					return err
				}
				if err := deleteEntityRelationships(tx, models.EntityTypeRegion, regionID); err != nil {
					return err
				}
				if err := deleteEntityLinkRows(tx, models.EntityTypeRegion, regionID); err != nil {
					return err
				}
			}

			if _, err := tx.Exec("DELETE FROM regions WHERE id = ?", id); err != nil {
				return fmt.Errorf("failed to delete region: %w", err)
			}
			return nil
		})
	})
}

const regionMapSelectColumns = `id, region_id, version_id, image_path, created_at, updated_at`

func scanRegionMap(scanner rowScanner, m *models.RegionMap) error {
	return scanner.Scan(&m.ID, &m.RegionID, &m.VersionID, &m.ImagePath, &m.CreatedAt, &m.UpdatedAt)
}

// GetRegionMaps returns all maps of a region across its versions.
func (s *Store) GetRegionMaps(regionID string) ([]models.RegionMap, error) {
	maps := []models.RegionMap{}
	err := s.safe("get_region_maps", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM region_maps
			WHERE region_id = ? ORDER BY created_at`, regionMapSelectColumns), regionID)
		if err != nil {
			return fmt.Errorf("failed to query region maps: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var m models.RegionMap
			if err := scanRegionMap(rows, &m); err != nil {
				return fmt.Errorf("failed to scan region map: %w", err)
			}
			maps = append(maps, m)
		}
		return rows.Err()
	})
	return maps, err
}

// GetRegionMapByVersion returns the map of one (region, version) pair.
func (s *Store) GetRegionMapByVersion(regionID, versionID string) (*models.RegionMap, error) {
	var m models.RegionMap
	err := s.safe("get_region_map", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		row := db.QueryRow(fmt.Sprintf(`SELECT %s FROM region_maps
			WHERE region_id = ? AND version_id = ?`, regionMapSelectColumns), regionID, versionID)
		if err := scanRegionMap(row, &m); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get region map: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SetRegionMap attaches an image to a (region, version) pair, replacing
// any existing map. The replaced image file is deleted; its markers die
// with the old map row.
func (s *Store) SetRegionMap(regionID, versionID, imagePath string) (*models.RegionMap, error) {
	var m models.RegionMap
	err := s.safe("set_region_map", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			var oldID, oldPath string
			now := time.Now()
			err := tx.QueryRow(`SELECT id, image_path FROM region_maps
				WHERE region_id = ? AND version_id = ?`, regionID, versionID).Scan(&oldID, &oldPath)
			switch {
			case err == sql.ErrNoRows:
				id, err := newULID()
				if err != nil {
					return fmt.Errorf("failed to generate map id: %w", err)
				}
				_, err = tx.Exec(`INSERT INTO region_maps (id, region_id, version_id, image_path, created_at, updated_at)
					VALUES (?, ?, ?, ?, ?, ?)`, id, regionID, versionID, imagePath, now, now)
				if err != nil {
					return fmt.Errorf("failed to insert region map: %w", err)
				}
				m = models.RegionMap{ID: id, RegionID: regionID, VersionID: versionID,
					ImagePath: imagePath, CreatedAt: now, UpdatedAt: now}
				return nil
			case err != nil:
				return fmt.Errorf("failed to check existing map: %w", err)
			}

			_, err = tx.Exec("UPDATE region_maps SET image_path = ?, updated_at = ? WHERE id = ?",
				imagePath, now, oldID)
			if err != nil {
				return fmt.Errorf("failed to replace region map: %w", err)
			}
			if oldPath != "" && oldPath != imagePath {
				removeAssetFiles(s.assets, []string{oldPath})
			}
			m = models.RegionMap{ID: oldID, RegionID: regionID, VersionID: versionID,
				ImagePath: imagePath, UpdatedAt: now}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteRegionMap removes a map row, its markers and its image file.
func (s *Store) DeleteRegionMap(id string) error {
	return s.safe("delete_region_map", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			var imagePath string
			err := tx.QueryRow("SELECT image_path FROM region_maps WHERE id = ?", id).Scan(&imagePath)
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to read region map: %w", err)
			}
			if _, err := tx.Exec("DELETE FROM region_maps WHERE id = ?", id); err != nil {
				return fmt.Errorf("failed to delete region map: %w", err)
			}
			removeAssetFiles(s.assets, []string{imagePath})
			return nil
		})
	})
}

const markerSelectColumns = `id, map_id, x, y, label, color, label_visible, scale`

func scanMarker(scanner rowScanner, m *models.MapMarker) error {
	return scanner.Scan(&m.ID, &m.MapID, &m.X, &m.Y, &m.Label, &m.Color, &m.LabelVisible, &m.Scale)
}

// GetMapMarkers returns the markers of one map.
func (s *Store) GetMapMarkers(mapID string) ([]models.MapMarker, error) {
	markers := []models.MapMarker{}
	err := s.safe("get_map_markers", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf("SELECT %s FROM map_markers WHERE map_id = ? ORDER BY id",
			markerSelectColumns), mapID)
		if err != nil {
			return fmt.Errorf("failed to query markers: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var m models.MapMarker
			if err := scanMarker(rows, &m); err != nil {
				return fmt.Errorf("failed to scan marker: %w", err)
			}
			markers = append(markers, m)
		}
		return rows.Err()
	})
	return markers, err
}

// CreateMapMarker pins a new marker on a map.
func (s *Store) CreateMapMarker(mapID string, marker models.MapMarker) (*models.MapMarker, error) {
	err := s.safe("create_map_marker", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate marker id: %w", err)
		}
		marker.ID = id
		marker.MapID = mapID
		if marker.Scale == 0 {
			marker.Scale = 1.0
		}
		_, err = db.Exec(`INSERT INTO map_markers (id, map_id, x, y, label, color, label_visible, scale)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			marker.ID, marker.MapID, marker.X, marker.Y, marker.Label, marker.Color,
			marker.LabelVisible, marker.Scale)
		if err != nil {
			return fmt.Errorf("failed to create marker: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &marker, nil
}

// UpdateMapMarker rewrites a marker in full.
func (s *Store) UpdateMapMarker(marker models.MapMarker) error {
	return s.safe("update_map_marker", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec(`UPDATE map_markers SET x = ?, y = ?, label = ?, color = ?,
			label_visible = ?, scale = ? WHERE id = ?`,
			marker.X, marker.Y, marker.Label, marker.Color, marker.LabelVisible, marker.Scale, marker.ID)
		if err != nil {
			return fmt.Errorf("failed to update marker: %w", err)
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

// DeleteMapMarker removes one marker.
func (s *Store) DeleteMapMarker(id string) error {
	return s.safe("delete_map_marker", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec("DELETE FROM map_markers WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete marker: %w", err)
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
