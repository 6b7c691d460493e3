// file: internal/database/relationships.go
// version: 1.2.0
// guid: 9b4e6d10-7c3f-4a82-b5d9-1e8f2a60c473

package database

import (
	"database/sql"
	"fmt"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

const relationshipSelectColumns = `id, entity_type, owner_id, target_id, kind, intensity, description`

func scanRelationship(scanner rowScanner, r *models.Relationship) error {
	var description sql.NullString
	err := scanner.Scan(&r.ID, &r.EntityType, &r.OwnerID, &r.TargetID, &r.Kind, &r.Intensity, &description)
	if err != nil {
		return err
	}
	if description.Valid {
		r.Description = &description.String
	}
	return nil
}

// GetRelationships returns the relationship rows owned by an entity.
func (s *Store) GetRelationships(entityType string, ownerID string) ([]models.Relationship, error) {
	relationships := []models.Relationship{}
	err := s.safe("get_relationships", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM entity_relationships
			WHERE entity_type = ? AND owner_id = ? ORDER BY id`, relationshipSelectColumns),
			entityType, ownerID)
		if err != nil {
			return fmt.Errorf("failed to query relationships: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var r models.Relationship
			if err := scanRelationship(rows, &r); err != nil {
				return fmt.Errorf("failed to scan relationship: %w", err)
			}
			relationships = append(relationships, r)
		}
		return rows.Err()
	})
	return relationships, err
}

// SaveRelationships replaces the full relationship set of an owner in
// one transaction. The UI edits the set as a whole, so replace-all is
// simpler and safer than diffing.
func (s *Store) SaveRelationships(entityType string, ownerID string, relationships []models.Relationship) error {
	return s.safe("save_relationships", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			_, err := tx.Exec("DELETE FROM entity_relationships WHERE entity_type = ? AND owner_id = ?",
				entityType, ownerID)
			if err != nil {
				return fmt.Errorf("failed to clear relationships: %w", err)
			}
			for _, r := range relationships {
				id := r.ID
				if id == "" {
					id, err = newULID()
					if err != nil {
						return fmt.Errorf("failed to generate relationship id: %w", err)
					}
				}
				_, err = tx.Exec(`INSERT INTO entity_relationships (id, entity_type, owner_id, target_id, kind, intensity, description)
					VALUES (?, ?, ?, ?, ?, ?, ?)`,
					id, entityType, ownerID, r.TargetID, r.Kind, r.Intensity, r.Description)
				if err != nil {
					return fmt.Errorf("failed to insert relationship: %w", err)
				}
			}
			return nil
		})
	})
}

// deleteEntityRelationships removes every relationship row an entity
// participates in, as owner or as target. Called inside entity-delete
// transactions.
func deleteEntityRelationships(tx *sql.Tx, entityType string, entityID string) error {
	_, err := tx.Exec(`DELETE FROM entity_relationships
		WHERE entity_type = ? AND (owner_id = ? OR target_id = ?)`,
		entityType, entityID, entityID)
	if err != nil {
		return fmt.Errorf("failed to delete relationships: %w", err)
	}
	return nil
}
