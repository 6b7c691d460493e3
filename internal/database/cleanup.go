// file: internal/database/cleanup.go
// version: 1.3.0
// guid: 4c1f8a6e-9d27-4b05-b3c1-7fa08e25d194

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// removeFromJSONArray strips every element referencing targetID from the
// JSON array stored in table.column across all rows, writing a row back
// only when its array actually shrank. Elements may be plain id strings
// or objects carrying idField. Rows whose column fails to parse are
// logged and skipped so one corrupt row cannot abort a delete sweep.
func removeFromJSONArray(tx *sql.Tx, table, column, idField, targetID string) error {
	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE %s IS NOT NULL", column, table, column)
	rows, err := tx.Query(query)
	if err != nil {
		return fmt.Errorf("failed to query %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	type pending struct {
		id      string
		payload string
	}
	updates := []pending{}

	for rows.Next() {
		var rowID string
		var raw sql.NullString
		if err := rows.Scan(&rowID, &raw); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		if !raw.Valid || raw.String == "" {
			continue
		}

		var items []json.RawMessage
		if err := json.Unmarshal([]byte(raw.String), &items); err != nil {
			log.Printf("Warning: skipping %s.%s for row %s: %v", table, column, rowID, err)
			continue
		}

		kept := filterArrayElements(items, idField, targetID)
		if len(kept) == len(items) {
			continue
		}

		encoded, err := json.Marshal(kept)
		if err != nil {
			return fmt.Errorf("failed to re-encode %s.%s: %w", table, column, err)
		}
		updates = append(updates, pending{id: rowID, payload: string(encoded)})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, column)
	for _, u := range updates {
		if _, err := tx.Exec(stmt, u.payload, u.id); err != nil {
			return fmt.Errorf("failed to update %s row %s: %w", table, u.id, err)
		}
	}
	return nil
}

// filterArrayElements drops elements that reference targetID, either as
// a bare string or as an object whose idField matches. Elements of other
// shapes are kept untouched.
func filterArrayElements(items []json.RawMessage, idField, targetID string) []json.RawMessage {
	kept := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		var asString string
		if err := json.Unmarshal(item, &asString); err == nil {
			if asString == targetID {
				continue
			}
			kept = append(kept, item)
			continue
		}
		var asObject map[string]json.RawMessage
		if err := json.Unmarshal(item, &asObject); err == nil {
			var id string
			if raw, ok := asObject[idField]; ok && json.Unmarshal(raw, &id) == nil && id == targetID {
				continue
			}
		}
		kept = append(kept, item)
	}
	return kept
}

// removeFromNestedJSONArray strips targetID from a string array buried
// inside the JSON document stored in table.column. path is a dot-joined
// field path where "*" matches every element of an intermediate array,
// e.g. "timeline.*.charactersInvolved" visits the charactersInvolved
// list of every timeline event. Rows that fail to parse are skipped.
func removeFromNestedJSONArray(tx *sql.Tx, table, column, path, targetID string) error {
	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE %s IS NOT NULL", column, table, column)
	rows, err := tx.Query(query)
	if err != nil {
		return fmt.Errorf("failed to query %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	segments := strings.Split(path, ".")

	type pending struct {
		id      string
		payload string
	}
	updates := []pending{}

	for rows.Next() {
		var rowID string
		var raw sql.NullString
		if err := rows.Scan(&rowID, &raw); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		if !raw.Valid || raw.String == "" {
			continue
		}

		var doc any
		if err := json.Unmarshal([]byte(raw.String), &doc); err != nil {
			log.Printf("Warning: skipping %s.%s for row %s: %v", table, column, rowID, err)
			continue
		}

		changed := pruneAtPath(doc, segments, targetID)
		if !changed {
			continue
		}

		encoded, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to re-encode %s.%s: %w", table, column, err)
		}
		updates = append(updates, pending{id: rowID, payload: string(encoded)})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, column)
	for _, u := range updates {
		if _, err := tx.Exec(stmt, u.payload, u.id); err != nil {
			return fmt.Errorf("failed to update %s row %s: %w", table, u.id, err)
		}
	}
	return nil
}

// deleteEntityLinkRows removes the polymorphic link rows that reference
// an entity. These tables key on (entity_id, entity_type) and cannot
// cascade from the entity tables.
func deleteEntityLinkRows(tx *sql.Tx, entityType, entityID string) error {
	statements := []string{
		"DELETE FROM chapter_mentions WHERE entity_type = ? AND entity_id = ?",
		"DELETE FROM chapter_entity_links WHERE entity_type = ? AND entity_id = ?",
		"DELETE FROM note_links WHERE entity_type = ? AND entity_id = ?",
		"DELETE FROM gallery_links WHERE entity_type = ? AND entity_id = ?",
		"DELETE FROM entity_log_links WHERE entity_type = ? AND entity_id = ?",
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt, entityType, entityID); err != nil {
			return fmt.Errorf("failed to delete link rows: %w", err)
		}
	}
	return nil
}

// clearTreeHolder blanks the given field wherever it equals targetID in
// a tree-shaped JSON column whose nodes nest under childrenKey. Used to
// vacate faction hierarchy seats when their holder is deleted.
func clearTreeHolder(tx *sql.Tx, table, column, childrenKey, field, targetID string) error {
	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE %s IS NOT NULL", column, table, column)
	rows, err := tx.Query(query)
	if err != nil {
		return fmt.Errorf("failed to query %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	type pending struct {
		id      string
		payload string
	}
	updates := []pending{}

	for rows.Next() {
		var rowID string
		var raw sql.NullString
		if err := rows.Scan(&rowID, &raw); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		if !raw.Valid || raw.String == "" {
			continue
		}

		var doc any
		if err := json.Unmarshal([]byte(raw.String), &doc); err != nil {
			log.Printf("Warning: skipping %s.%s for row %s: %v", table, column, rowID, err)
			continue
		}

		if !clearHolderInTree(doc, childrenKey, field, targetID) {
			continue
		}
		encoded, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to re-encode %s.%s: %w", table, column, err)
		}
		updates = append(updates, pending{id: rowID, payload: string(encoded)})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, column)
	for _, u := range updates {
		if _, err := tx.Exec(stmt, u.payload, u.id); err != nil {
			return fmt.Errorf("failed to update %s row %s: %w", table, u.id, err)
		}
	}
	return nil
}

func clearHolderInTree(doc any, childrenKey, field, targetID string) bool {
	switch node := doc.(type) {
	case []any:
		changed := false
		for _, child := range node {
			if clearHolderInTree(child, childrenKey, field, targetID) {
				changed = true
			}
		}
		return changed
	case map[string]any:
		changed := false
		if id, ok := node[field].(string); ok && id == targetID {
			delete(node, field)
			changed = true
		}
		if children, ok := node[childrenKey]; ok {
			if clearHolderInTree(children, childrenKey, field, targetID) {
				changed = true
			}
		}
		return changed
	default:
		return false
	}
}

// pruneAtPath walks doc along segments, mutating the terminal arrays in
// place. It reports whether anything was removed. Missing fields and
// shape mismatches are treated as nothing-to-do, not errors.
func pruneAtPath(doc any, segments []string, targetID string) bool {
	if len(segments) == 0 {
		return false
	}

	segment := segments[0]
	rest := segments[1:]

	if segment == "*" {
		arr, ok := doc.([]any)
		if !ok {
			return false
		}
		changed := false
		for _, elem := range arr {
			if pruneAtPath(elem, rest, targetID) {
				changed = true
			}
		}
		return changed
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return false
	}
	child, ok := obj[segment]
	if !ok {
		return false
	}

	if len(rest) > 0 {
		return pruneAtPath(child, rest, targetID)
	}

	// Terminal segment: child must be the array to prune. Elements may
	// be id strings or objects with an "id" field.
	arr, ok := child.([]any)
	if !ok {
		return false
	}
	kept := make([]any, 0, len(arr))
	for _, elem := range arr {
		switch v := elem.(type) {
		case string:
			if v == targetID {
				continue
			}
		case map[string]any:
			if id, ok := v["id"].(string); ok && id == targetID {
				continue
			}
		}
		kept = append(kept, elem)
	}
	if len(kept) == len(arr) {
		return false
	}
	obj[segment] = kept
	return true
}
