// file: internal/database/powersystems.go
// version: 1.3.0
// guid: 47a1d8f5-6e02-4b93-a7c4-91f3b0e5d268

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

// Power systems form a five-level hierarchy: system -> group -> page ->
// section -> block. Every level orders its children explicitly and
// cascades deletes downward through the schema.

// GetPowerSystemsByBookID returns the systems of a book in display order.
func (s *Store) GetPowerSystemsByBookID(bookID string) ([]models.PowerSystem, error) {
	systems := []models.PowerSystem{}
	err := s.safe("get_power_systems", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT id, book_id, name, description, order_index, created_at, updated_at
			FROM power_systems WHERE book_id = ? ORDER BY order_index`, bookID)
		if err != nil {
			return fmt.Errorf("failed to query power systems: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var p models.PowerSystem
			var description sql.NullString
			if err := rows.Scan(&p.ID, &p.BookID, &p.Name, &description, &p.OrderIndex, &p.CreatedAt, &p.UpdatedAt); err != nil {
				return fmt.Errorf("failed to scan power system: %w", err)
			}
			if description.Valid {
				p.Description = &description.String
			}
			systems = append(systems, p)
		}
		return rows.Err()
	})
	return systems, err
}

// CreatePowerSystem appends a new system to a book.
func (s *Store) CreatePowerSystem(bookID, name string) (*models.PowerSystem, error) {
	var p models.PowerSystem
	err := s.safe("create_power_system", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate system id: %w", err)
		}
		now := time.Now()
		return withTx(db, func(tx *sql.Tx) error {
			var orderIndex int
			err := tx.QueryRow("SELECT COALESCE(MAX(order_index) + 1, 0) FROM power_systems WHERE book_id = ?",
				bookID).Scan(&orderIndex)
			if err != nil {
				return fmt.Errorf("failed to compute system order: %w", err)
			}
			_, err = tx.Exec(`INSERT INTO power_systems (id, book_id, name, order_index, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)`, id, bookID, name, orderIndex, now, now)
			if err != nil {
				return fmt.Errorf("failed to create power system: %w", err)
			}
			p = models.PowerSystem{ID: id, BookID: bookID, Name: name, OrderIndex: orderIndex,
				CreatedAt: now, UpdatedAt: now}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePowerSystem rewrites a system's name and description.
func (s *Store) UpdatePowerSystem(id, name string, description *string) error {
	return s.safe("update_power_system", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec(`UPDATE power_systems SET name = ?, description = ?, updated_at = ?
			WHERE id = ?`, name, description, time.Now(), id)
		if err != nil {
			return fmt.Errorf("failed to update power system: %w", err)
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

// DeletePowerSystem removes a system and everything under it.
func (s *Store) DeletePowerSystem(id string) error {
	return s.safe("delete_power_system", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec("DELETE FROM power_systems WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete power system: %w", err)
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

// nextChildOrder computes the append position among a parent's children.
func nextChildOrder(tx *sql.Tx, table, parentColumn, parentID string) (int, error) {
	var orderIndex int
	err := tx.QueryRow(fmt.Sprintf("SELECT COALESCE(MAX(order_index) + 1, 0) FROM %s WHERE %s = ?",
		table, parentColumn), parentID).Scan(&orderIndex)
	if err != nil {
		return 0, fmt.Errorf("failed to compute %s order: %w", table, err)
	}
	return orderIndex, nil
}

// GetPowerGroups returns the groups of a system in display order.
func (s *Store) GetPowerGroups(systemID string) ([]models.PowerGroup, error) {
	groups := []models.PowerGroup{}
	err := s.safe("get_power_groups", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT id, system_id, name, order_index FROM power_groups
			WHERE system_id = ? ORDER BY order_index`, systemID)
		if err != nil {
			return fmt.Errorf("failed to query power groups: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var g models.PowerGroup
			if err := rows.Scan(&g.ID, &g.SystemID, &g.Name, &g.OrderIndex); err != nil {
				return fmt.Errorf("failed to scan power group: %w", err)
			}
			groups = append(groups, g)
		}
		return rows.Err()
	})
	return groups, err
}

// CreatePowerGroup appends a group to a system.
func (s *Store) CreatePowerGroup(systemID, name string) (*models.PowerGroup, error) {
	var g models.PowerGroup
	err := s.safe("create_power_group", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate group id: %w", err)
		}
		return withTx(db, func(tx *sql.Tx) error {
			orderIndex, err := nextChildOrder(tx, "power_groups", "system_id", systemID)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`INSERT INTO power_groups (id, system_id, name, order_index)
				VALUES (?, ?, ?, ?)`, id, systemID, name, orderIndex)
			if err != nil {
				return fmt.Errorf("failed to create power group: %w", err)
			}
			g = models.PowerGroup{ID: id, SystemID: systemID, Name: name, OrderIndex: orderIndex}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetPowerPages returns the pages of a group in display order.
func (s *Store) GetPowerPages(groupID string) ([]models.PowerPage, error) {
	pages := []models.PowerPage{}
	err := s.safe("get_power_pages", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT id, group_id, title, order_index FROM power_pages
			WHERE group_id = ? ORDER BY order_index`, groupID)
		if err != nil {
			return fmt.Errorf("failed to query power pages: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var p models.PowerPage
			if err := rows.Scan(&p.ID, &p.GroupID, &p.Title, &p.OrderIndex); err != nil {
				return fmt.Errorf("failed to scan power page: %w", err)
			}
			pages = append(pages, p)
		}
		return rows.Err()
	})
	return pages, err
}

// CreatePowerPage appends a page to a group.
func (s *Store) CreatePowerPage(groupID, title string) (*models.PowerPage, error) {
	var p models.PowerPage
	err := s.safe("create_power_page", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate page id: %w", err)
		}
		return withTx(db, func(tx *sql.Tx) error {
			orderIndex, err := nextChildOrder(tx, "power_pages", "group_id", groupID)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`INSERT INTO power_pages (id, group_id, title, order_index)
				VALUES (?, ?, ?, ?)`, id, groupID, title, orderIndex)
			if err != nil {
				return fmt.Errorf("failed to create power page: %w", err)
			}
			p = models.PowerPage{ID: id, GroupID: groupID, Title: title, OrderIndex: orderIndex}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPowerSections returns the sections of a page in display order.
func (s *Store) GetPowerSections(pageID string) ([]models.PowerSection, error) {
	sections := []models.PowerSection{}
	err := s.safe("get_power_sections", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT id, page_id, title, order_index FROM power_sections
			WHERE page_id = ? ORDER BY order_index`, pageID)
		if err != nil {
			return fmt.Errorf("failed to query power sections: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var sec models.PowerSection
			if err := rows.Scan(&sec.ID, &sec.PageID, &sec.Title, &sec.OrderIndex); err != nil {
				return fmt.Errorf("failed to scan power section: %w", err)
			}
			sections = append(sections, sec)
		}
		return rows.Err()
	})
	return sections, err
}

// CreatePowerSection appends a section to a page.
func (s *Store) CreatePowerSection(pageID, title string) (*models.PowerSection, error) {
	var sec models.PowerSection
	err := s.safe("create_power_section", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate section id: %w", err)
		}
		return withTx(db, func(tx *sql.Tx) error {
			orderIndex, err := nextChildOrder(tx, "power_sections", "page_id", pageID)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`INSERT INTO power_sections (id, page_id, title, order_index)
				VALUES (?, ?, ?, ?)`, id, pageID, title, orderIndex)
			if err != nil {
				return fmt.Errorf("failed to create power section: %w", err)
			}
			sec = models.PowerSection{ID: id, PageID: pageID, Title: title, OrderIndex: orderIndex}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &sec, nil
}

// GetPowerBlocks returns the content blocks of a section in display
// order.
func (s *Store) GetPowerBlocks(sectionID string) ([]models.PowerBlock, error) {
	blocks := []models.PowerBlock{}
	err := s.safe("get_power_blocks", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT id, section_id, kind, content, order_index FROM power_blocks
			WHERE section_id = ? ORDER BY order_index`, sectionID)
		if err != nil {
			return fmt.Errorf("failed to query power blocks: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var b models.PowerBlock
			if err := rows.Scan(&b.ID, &b.SectionID, &b.Kind, &b.Content, &b.OrderIndex); err != nil {
				return fmt.Errorf("failed to scan power block: %w", err)
			}
			blocks = append(blocks, b)
		}
		return rows.Err()
	})
	return blocks, err
}

// ReplacePowerBlocks rewrites a section's block list in one transaction.
// The editor saves the whole section at once.
func (s *Store) ReplacePowerBlocks(sectionID string, blocks []models.PowerBlock) error {
	return s.safe("replace_power_blocks", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec("DELETE FROM power_blocks WHERE section_id = ?", sectionID); err != nil {
				return fmt.Errorf("failed to clear power blocks: %w", err)
			}
			for i, b := range blocks {
				id := b.ID
				if id == "" {
					id, err = newULID()
					if err != nil {
						return fmt.Errorf("failed to generate block id: %w", err)
					}
				}
				_, err := tx.Exec(`INSERT INTO power_blocks (id, section_id, kind, content, order_index)
					VALUES (?, ?, ?, ?, ?)`, id, sectionID, b.Kind, b.Content, i)
				if err != nil {
					return fmt.Errorf("failed to insert power block: %w", err)
				}
			}
			return nil
		})
	})
}

// renamePowerChild updates the label column of one hierarchy level.
func (s *Store) renamePowerChild(op, table, column, id, value string) error {
	return s.safe(op, func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec(fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, column), value, id)
		if err != nil {
			return fmt.Errorf("failed to rename %s row: %w", table, err)
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

// RenamePowerGroup renames a group.
func (s *Store) RenamePowerGroup(id, name string) error {
	return s.renamePowerChild("rename_power_group", "power_groups", "name", id, name)
}

// RenamePowerPage retitles a page.
func (s *Store) RenamePowerPage(id, title string) error {
	return s.renamePowerChild("rename_power_page", "power_pages", "title", id, title)
}

// RenamePowerSection retitles a section.
func (s *Store) RenamePowerSection(id, title string) error {
	return s.renamePowerChild("rename_power_section", "power_sections", "title", id, title)
}

// deletePowerChild removes one row of a hierarchy level; children
// cascade.
func (s *Store) deletePowerChild(op, table, id string) error {
	return s.safe(op, func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
		if err != nil {
			return fmt.Errorf("failed to delete %s row: %w", table, err)
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

// DeletePowerGroup removes a group and its pages.
func (s *Store) DeletePowerGroup(id string) error {
	return s.deletePowerChild("delete_power_group", "power_groups", id)
}

// DeletePowerPage removes a page and its sections.
func (s *Store) DeletePowerPage(id string) error {
	return s.deletePowerChild("delete_power_page", "power_pages", id)
}

// DeletePowerSection removes a section and its blocks.
func (s *Store) DeletePowerSection(id string) error {
	return s.deletePowerChild("delete_power_section", "power_sections", id)
}

// GetPowerLinksByCharacter returns the power pages/sections attached to
// a character.
func (s *Store) GetPowerLinksByCharacter(characterID string) ([]models.PowerCharacterLink, error) {
	links := []models.PowerCharacterLink{}
	err := s.safe("get_power_links", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(`SELECT id, character_id, page_id, section_id, custom_label
			FROM power_character_links WHERE character_id = ? ORDER BY id`, characterID)
		if err != nil {
			return fmt.Errorf("failed to query power links: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var l models.PowerCharacterLink
			var pageID, sectionID, customLabel sql.NullString
			if err := rows.Scan(&l.ID, &l.CharacterID, &pageID, &sectionID, &customLabel); err != nil {
				return fmt.Errorf("failed to scan power link: %w", err)
			}
			if pageID.Valid {
				l.PageID = &pageID.String
			}
			if sectionID.Valid {
				l.SectionID = &sectionID.String
			}
			if customLabel.Valid {
				l.CustomLabel = &customLabel.String
			}
			links = append(links, l)
		}
		return rows.Err()
	})
	return links, err
}

// LinkCharacterPower attaches a character to exactly one page or one
// section. The schema's CHECK constraint rejects anything else, so the
// argument shape is validated up front.
func (s *Store) LinkCharacterPower(characterID string, pageID, sectionID, customLabel *string) (*models.PowerCharacterLink, error) {
	if (pageID == nil) == (sectionID == nil) {
		return nil, fmt.Errorf("power link must target exactly one page or one section")
	}
	var l models.PowerCharacterLink
	err := s.safe("link_character_power", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate link id: %w", err)
		}
		_, err = db.Exec(`INSERT INTO power_character_links (id, character_id, page_id, section_id, custom_label)
			VALUES (?, ?, ?, ?, ?)`, id, characterID, pageID, sectionID, customLabel)
		if err != nil {
			return fmt.Errorf("failed to link character power: %w", err)
		}
		l = models.PowerCharacterLink{ID: id, CharacterID: characterID, PageID: pageID,
			SectionID: sectionID, CustomLabel: customLabel}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UnlinkCharacterPower removes one power link.
func (s *Store) UnlinkCharacterPower(id string) error {
	return s.safe("unlink_character_power", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec("DELETE FROM power_character_links WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to unlink character power: %w", err)
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
