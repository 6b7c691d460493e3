// file: internal/database/plotarcs.go
// version: 1.2.0
// guid: f1c7a9e3-5b28-4d06-b94f-0e6a82d5c317

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

const plotArcSelectColumns = `id, book_id, name, description, status, order_index, color, created_at, updated_at`

func scanPlotArc(scanner rowScanner, a *models.PlotArc) error {
	var description, color sql.NullString
	err := scanner.Scan(&a.ID, &a.BookID, &a.Name, &description, &a.Status, &a.OrderIndex,
		&color, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return err
	}
	if description.Valid {
		a.Description = &description.String
	}
	if color.Valid {
		a.Color = &color.String
	}
	return nil
}

// GetPlotArcsByBookID returns the plot arcs of a book in display order.
func (s *Store) GetPlotArcsByBookID(bookID string) ([]models.PlotArc, error) {
	arcs := []models.PlotArc{}
	err := s.safe("get_plot_arcs", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM plot_arcs
			WHERE book_id = ? ORDER BY order_index`, plotArcSelectColumns), bookID)
		if err != nil {
			return fmt.Errorf("failed to query plot arcs: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var a models.PlotArc
			if err := scanPlotArc(rows, &a); err != nil {
				return fmt.Errorf("failed to scan plot arc: %w", err)
			}
			arcs = append(arcs, a)
		}
		return rows.Err()
	})
	return arcs, err
}

// CreatePlotArc appends a new arc to a book.
func (s *Store) CreatePlotArc(bookID, name string) (*models.PlotArc, error) {
	var a models.PlotArc
	err := s.safe("create_plot_arc", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate plot arc id: %w", err)
		}
		now := time.Now()
		return withTx(db, func(tx *sql.Tx) error {
			var orderIndex int
			err := tx.QueryRow("SELECT COALESCE(MAX(order_index) + 1, 0) FROM plot_arcs WHERE book_id = ?",
				bookID).Scan(&orderIndex)
			if err != nil {
				return fmt.Errorf("failed to compute plot arc order: %w", err)
			}
			_, err = tx.Exec(`INSERT INTO plot_arcs (id, book_id, name, order_index, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)`, id, bookID, name, orderIndex, now, now)
			if err != nil {
				return fmt.Errorf("failed to create plot arc: %w", err)
			}
			a = models.PlotArc{ID: id, BookID: bookID, Name: name, Status: "planned",
				OrderIndex: orderIndex, CreatedAt: now, UpdatedAt: now}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdatePlotArc merges a partial patch.
func (s *Store) UpdatePlotArc(id string, patch models.PlotArcPatch) error {
	return s.safe("update_plot_arc", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			var a models.PlotArc
			row := tx.QueryRow(fmt.Sprintf("SELECT %s FROM plot_arcs WHERE id = ?", plotArcSelectColumns), id)
			if err := scanPlotArc(row, &a); err != nil {
				if err == sql.ErrNoRows {
					return ErrNotFound
				}
				return fmt.Errorf("failed to read plot arc for update: %w", err)
			}

			if patch.Name != nil {
				a.Name = *patch.Name
			}
			if patch.Description != nil {
				a.Description = patch.Description
			}
			if patch.Status != nil {
				a.Status = *patch.Status
			}
			if patch.Color != nil {
				a.Color = patch.Color
			}

			_, err := tx.Exec(`UPDATE plot_arcs SET name = ?, description = ?, status = ?, color = ?,
				updated_at = ? WHERE id = ?`,
				a.Name, a.Description, a.Status, a.Color, time.Now(), id)
			if err != nil {
				return fmt.Errorf("failed to update plot arc: %w", err)
			}
			return nil
		})
	})
}

// ReorderPlotArcs applies a complete new ordering.
func (s *Store) ReorderPlotArcs(bookID string, orderedIDs []string) error {
	return s.safe("reorder_plot_arcs", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			for i, id := range orderedIDs {
				_, err := tx.Exec(`UPDATE plot_arcs SET order_index = ?, updated_at = ?
					WHERE id = ? AND book_id = ?`, i, time.Now(), id, bookID)
				if err != nil {
					return fmt.Errorf("failed to reorder plot arc %s: %w", id, err)
				}
			}
			return nil
		})
	})
}

// DeletePlotArc removes one arc.
func (s *Store) DeletePlotArc(id string) error {
	return s.safe("delete_plot_arc", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec("DELETE FROM plot_arcs WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete plot arc: %w", err)
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
