// file: internal/database/entitylogs.go
// version: 1.2.0
// guid: 06e4b8d2-9a1f-4c75-83b0-5d27f6e9a041

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

// GetEntityLogsByBookID returns all log moments of a book with their
// entity links attached, in timeline order.
func (s *Store) GetEntityLogsByBookID(bookID string) ([]models.EntityLog, error) {
	logs := []models.EntityLog{}
	err := s.safe("get_entity_logs", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT id, book_id, title, description, order_index, created_at
			FROM entity_logs WHERE book_id = ? ORDER BY order_index, created_at`, bookID)
		if err != nil {
			return fmt.Errorf("failed to query entity logs: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var l models.EntityLog
			if err := rows.Scan(&l.ID, &l.BookID, &l.Title, &l.Description, &l.OrderIndex, &l.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan entity log: %w", err)
			}
			l.Links = []models.EntityLogLink{}
			logs = append(logs, l)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		linkRows, err := db.Query(`SELECT k.log_id, k.entity_id, k.entity_type
			FROM entity_log_links k
			JOIN entity_logs l ON l.id = k.log_id
			WHERE l.book_id = ?`, bookID)
		if err != nil {
			return fmt.Errorf("failed to query log links: %w", err)
		}
		defer linkRows.Close()

		byID := map[string]int{}
		for i, l := range logs {
			byID[l.ID] = i
		}
		for linkRows.Next() {
			var k models.EntityLogLink
			if err := linkRows.Scan(&k.LogID, &k.EntityID, &k.EntityType); err != nil {
				return fmt.Errorf("failed to scan log link: %w", err)
			}
			if i, ok := byID[k.LogID]; ok {
				logs[i].Links = append(logs[i].Links, k)
			}
		}
		return linkRows.Err()
	})
	return logs, err
}

// GetEntityLogsByEntity returns the log moments an entity appears in.
func (s *Store) GetEntityLogsByEntity(entityType, entityID string) ([]models.EntityLog, error) {
	logs := []models.EntityLog{}
	err := s.safe("get_entity_logs_by_entity", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT l.id, l.book_id, l.title, l.description, l.order_index, l.created_at
			FROM entity_logs l
			JOIN entity_log_links k ON k.log_id = l.id
			WHERE k.entity_type = ? AND k.entity_id = ?
			ORDER BY l.order_index, l.created_at`, entityType, entityID)
		if err != nil {
			return fmt.Errorf("failed to query logs for entity: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var l models.EntityLog
			if err := rows.Scan(&l.ID, &l.BookID, &l.Title, &l.Description, &l.OrderIndex, &l.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan entity log: %w", err)
			}
			l.Links = []models.EntityLogLink{}
			logs = append(logs, l)
		}
		return rows.Err()
	})
	return logs, err
}

// CreateEntityLog records a new timeline moment and links the given
// entities to it in one transaction.
func (s *Store) CreateEntityLog(bookID, title, description string, links []models.EntityLogLink) (*models.EntityLog, error) {
	var l models.EntityLog
	err := s.safe("create_entity_log", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate log id: %w", err)
		}
		now := time.Now()
		return withTx(db, func(tx *sql.Tx) error {
			var orderIndex int
			err := tx.QueryRow("SELECT COALESCE(MAX(order_index) + 1, 0) FROM entity_logs WHERE book_id = ?",
				bookID).Scan(&orderIndex)
			if err != nil {
				return fmt.Errorf("failed to compute log order: %w", err)
			}
			_, err = tx.Exec(`INSERT INTO entity_logs (id, book_id, title, description, order_index, created_at)
				VALUES (?, ?, ?, ?, ?, ?)`, id, bookID, title, description, orderIndex, now)
			if err != nil {
				return fmt.Errorf("failed to create entity log: %w", err)
			}
			l = models.EntityLog{ID: id, BookID: bookID, Title: title, Description: description,
				OrderIndex: orderIndex, CreatedAt: now, Links: []models.EntityLogLink{}}
			for _, k := range links {
				_, err := tx.Exec(`INSERT OR IGNORE INTO entity_log_links (log_id, entity_id, entity_type)
					VALUES (?, ?, ?)`, id, k.EntityID, k.EntityType)
				if err != nil {
					return fmt.Errorf("failed to link entity log: %w", err)
				}
				l.Links = append(l.Links, models.EntityLogLink{LogID: id, EntityID: k.EntityID, EntityType: k.EntityType})
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateEntityLog rewrites a log's title and description.
func (s *Store) UpdateEntityLog(id, title, description string) error {
	return s.safe("update_entity_log", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec("UPDATE entity_logs SET title = ?, description = ? WHERE id = ?",
			title, description, id)
		if err != nil {
			return fmt.Errorf("failed to update entity log: %w", err)
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

// ReplaceEntityLogLinks rewrites the full entity set of a log moment.
func (s *Store) ReplaceEntityLogLinks(logID string, links []models.EntityLogLink) error {
	return s.safe("replace_entity_log_links", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec("DELETE FROM entity_log_links WHERE log_id = ?", logID); err != nil {
				return fmt.Errorf("failed to clear log links: %w", err)
			}
			for _, k := range links {
				_, err := tx.Exec(`INSERT OR IGNORE INTO entity_log_links (log_id, entity_id, entity_type)
					VALUES (?, ?, ?)`, logID, k.EntityID, k.EntityType)
				if err != nil {
					return fmt.Errorf("failed to insert log link: %w", err)
				}
			}
			return nil
		})
	})
}

// ReorderEntityLogs applies a complete new timeline ordering.
func (s *Store) ReorderEntityLogs(bookID string, orderedIDs []string) error {
	return s.safe("reorder_entity_logs", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			for i, id := range orderedIDs {
				_, err := tx.Exec("UPDATE entity_logs SET order_index = ? WHERE id = ? AND book_id = ?",
					i, id, bookID)
				if err != nil {
					return fmt.Errorf("failed to reorder entity log %s: %w", id, err)
				}
			}
			return nil
		})
	})
}

// DeleteEntityLog removes a log moment; its links cascade.
func (s *Store) DeleteEntityLog(id string) error {
	return s.safe("delete_entity_log", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec("DELETE FROM entity_logs WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete entity log: %w", err)
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
