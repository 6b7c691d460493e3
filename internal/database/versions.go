// file: internal/database/versions.go
// version: 1.3.0
// guid: 58f2a7c4-1e9b-4d60-8a35-c6e04b9f7d21

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

const versionSelectColumns = `id, entity_type, entity_id, name, description, is_main, data, created_at, updated_at`

func scanVersion(scanner rowScanner, v *models.Version) error {
	var description sql.NullString
	var data string
	err := scanner.Scan(&v.ID, &v.EntityType, &v.EntityID, &v.Name, &description,
		&v.IsMain, &data, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return err
	}
	if description.Valid {
		v.Description = &description.String
	}
	v.Data = json.RawMessage(data)
	return nil
}

// GetVersions returns every version of an entity, main version first.
func (s *Store) GetVersions(entityType string, entityID string) ([]models.Version, error) {
	versions := []models.Version{}
	err := s.safe("get_versions", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM entity_versions
			WHERE entity_type = ? AND entity_id = ?
			ORDER BY is_main DESC, created_at`, versionSelectColumns), entityType, entityID)
		if err != nil {
			return fmt.Errorf("failed to query versions: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var v models.Version
			if err := scanVersion(rows, &v); err != nil {
				return fmt.Errorf("failed to scan version: %w", err)
			}
			versions = append(versions, v)
		}
		return rows.Err()
	})
	return versions, err
}

// GetVersion returns a single version by id.
func (s *Store) GetVersion(id string) (*models.Version, error) {
	var v models.Version
	err := s.safe("get_version", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		row := db.QueryRow(fmt.Sprintf("SELECT %s FROM entity_versions WHERE id = ?", versionSelectColumns), id)
		if err := scanVersion(row, &v); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get version: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVersion adds a non-main version whose data snapshot starts from
// the supplied payload (usually a copy of the current main version).
func (s *Store) CreateVersion(entityType string, entityID, name, description string, data json.RawMessage) (*models.Version, error) {
	var v models.Version
	err := s.safe("create_version", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate version id: %w", err)
		}
		if len(data) == 0 {
			data = json.RawMessage("{}")
		}
		now := time.Now()
		_, err = db.Exec(`INSERT INTO entity_versions (id, entity_type, entity_id, name, description, is_main, data, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)`,
			id, entityType, entityID, name, description, string(data), now, now)
		if err != nil {
			return fmt.Errorf("failed to create version: %w", err)
		}
		v = models.Version{
			ID:         id,
			EntityType: entityType,
			EntityID:   entityID,
			Name:       name,
			IsMain:     false,
			Data:       data,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if description != "" {
			v.Description = &description
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// createMainVersion inserts the automatic main version row for a freshly
// created entity. Runs inside the entity-create transaction so entity
// and main version appear together or not at all.
func createMainVersion(tx *sql.Tx, entityType string, entityID, name string) error {
	id, err := newULID()
	if err != nil {
		return fmt.Errorf("failed to generate version id: %w", err)
	}
	now := time.Now()
	_, err = tx.Exec(`INSERT INTO entity_versions (id, entity_type, entity_id, name, description, is_main, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, '', 1, '{}', ?, ?)`,
		id, entityType, entityID, name, now, now)
	if err != nil {
		return fmt.Errorf("failed to create main version: %w", err)
	}
	return nil
}

// UpdateVersion renames or re-describes a version.
func (s *Store) UpdateVersion(id, name, description string) error {
	return s.safe("update_version", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec(`UPDATE entity_versions SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
			name, description, time.Now(), id)
		if err != nil {
			return fmt.Errorf("failed to update version: %w", err)
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

// UpdateVersionData replaces a version's data snapshot.
func (s *Store) UpdateVersionData(id string, data json.RawMessage) error {
	return s.safe("update_version_data", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		if len(data) == 0 {
			data = json.RawMessage("{}")
		}
		result, err := db.Exec(`UPDATE entity_versions SET data = ?, updated_at = ? WHERE id = ?`,
			string(data), time.Now(), id)
		if err != nil {
			return fmt.Errorf("failed to update version data: %w", err)
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

// DeleteVersion removes a non-main version together with its region maps
// and their image files. Deleting the main version is rejected: every
// entity keeps exactly one main version for its lifetime.
func (s *Store) DeleteVersion(id string) error {
	return s.safe("delete_version", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}

		var isMain bool
		err = db.QueryRow("SELECT is_main FROM entity_versions WHERE id = ?", id).Scan(&isMain)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check version: %w", err)
		}
		if isMain {
			return fmt.Errorf("cannot delete the main version")
		}

		// Collect map image paths before the CASCADE removes the rows.
		paths, err := collectStrings(db, "SELECT image_path FROM region_maps WHERE version_id = ?", id)
		if err != nil {
			return err
		}

		return withTx(db, func(tx *sql.Tx) error {
			result, err := tx.Exec("DELETE FROM entity_versions WHERE id = ?", id)
			if err != nil {
				return fmt.Errorf("failed to delete version: %w", err)
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

// SetMainVersion promotes a version to main. The current main version is
// demoted in the same transaction; the partial unique index on
// (entity_type, entity_id) WHERE is_main = 1 enforces the invariant.
func (s *Store) SetMainVersion(id string) error {
	return s.safe("set_main_version", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			var entityType string
			var entityID string
			err := tx.QueryRow("SELECT entity_type, entity_id FROM entity_versions WHERE id = ?", id).
				Scan(&entityType, &entityID)
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to look up version: %w", err)
			}

			_, err = tx.Exec(`UPDATE entity_versions SET is_main = 0, updated_at = ?
				WHERE entity_type = ? AND entity_id = ? AND is_main = 1`,
				time.Now(), entityType, entityID)
			if err != nil {
				return fmt.Errorf("failed to demote current main version: %w", err)
			}
			_, err = tx.Exec("UPDATE entity_versions SET is_main = 1, updated_at = ? WHERE id = ?", time.Now(), id)
			if err != nil {
				return fmt.Errorf("failed to promote version: %w", err)
			}
			return nil
		})
	})
}

// deleteEntityVersions removes all versions of an entity plus the image
// files of any region maps hanging off them. Used inside entity-delete
// transactions; the polymorphic (entity_type, entity_id) pair cannot be
// a SQL foreign key, so the cascade is explicit.
func deleteEntityVersions(tx *sql.Tx, assets AssetRemover, entityType string, entityID string) error {
	paths, err := collectStringsTx(tx, `SELECT rm.image_path FROM region_maps rm
		JOIN entity_versions v ON v.id = rm.version_id
		WHERE v.entity_type = ? AND v.entity_id = ?`, entityType, entityID)
	if err != nil {
		return err
	}
	_, err = tx.Exec("DELETE FROM entity_versions WHERE entity_type = ? AND entity_id = ?", entityType, entityID)
	if err != nil {
		return fmt.Errorf("failed to delete versions: %w", err)
	}
	removeAssetFiles(assets, paths)
	return nil
}

func collectStrings(db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query paths: %w", err)
	}
	defer rows.Close()
	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func collectStringsTx(tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query paths: %w", err)
	}
	defer rows.Close()
	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// removeAssetFiles deletes asset files best-effort; a missing file never
// fails the database operation that orphaned it.
func removeAssetFiles(assets AssetRemover, paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := assets.Remove(p); err != nil {
			// The orphan scan picks these up later.
			continue
		}
	}
}
