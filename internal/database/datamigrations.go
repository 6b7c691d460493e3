// file: internal/database/datamigrations.go
// version: 1.4.0
// guid: e07b3c92-5f48-41da-9a66-2c81d4f7b3e5

package database

import (
	"database/sql"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Early releases stored status values as localized display strings.
// foldStatus strips accents and case so "Revisão" and "revisao" hit the
// same map key.
var statusFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldStatus(value string) string {
	folded, _, err := transform.String(statusFolder, value)
	if err != nil {
		folded = value
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

var legacyBookStatus = map[string]string{
	"planejando":   "planning",
	"planejamento": "planning",
	"em andamento": "in_progress",
	"escrevendo":   "in_progress",
	"revisao":      "revising",
	"revisando":    "revising",
	"finalizado":   "finished",
	"concluido":    "finished",
	"pausado":      "on_hold",
	"em pausa":     "on_hold",
}

var legacyChapterStatus = map[string]string{
	"rascunho":  "draft",
	"revisao":   "revising",
	"revisando": "revising",
	"completo":  "done",
	"concluido": "done",
}

// canonicalizeStatusValues rewrites localized status strings to their
// canonical ids. Values already canonical, or simply unrecognized, are
// left alone.
func canonicalizeStatusValues(tx *sql.Tx) error {
	if err := canonicalizeColumn(tx, "books", legacyBookStatus); err != nil {
		return err
	}
	return canonicalizeColumn(tx, "chapters", legacyChapterStatus)
}

func canonicalizeColumn(tx *sql.Tx, table string, mapping map[string]string) error {
	rows, err := tx.Query(fmt.Sprintf("SELECT id, status FROM %s", table))
	if err != nil {
		return fmt.Errorf("failed to query %s statuses: %w", table, err)
	}
	defer rows.Close()

	type pending struct {
		id     string
		status string
	}
	updates := []pending{}
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			return fmt.Errorf("failed to scan %s status: %w", table, err)
		}
		canonical, ok := mapping[foldStatus(status)]
		if !ok || canonical == status {
			continue
		}
		updates = append(updates, pending{id: id, status: canonical})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	stmt := fmt.Sprintf("UPDATE %s SET status = ? WHERE id = ?", table)
	for _, u := range updates {
		if _, err := tx.Exec(stmt, u.status, u.id); err != nil {
			return fmt.Errorf("failed to canonicalize %s row %s: %w", table, u.id, err)
		}
	}
	if len(updates) > 0 {
		log.Printf("    - Canonicalized %d %s status values", len(updates), table)
	}
	return nil
}

// migrateLegacyEntityLogs copies rows from the legacy character_logs
// table (one log row per character) into entity_logs plus a link row,
// then drops the legacy table so the migration cannot run twice.
func migrateLegacyEntityLogs(tx *sql.Tx) error {
	rows, err := tx.Query(`SELECT id, book_id, character_id, title, content, order_index, created_at
		FROM character_logs ORDER BY created_at`)
	if err != nil {
		return fmt.Errorf("failed to read legacy character_logs: %w", err)
	}
	defer rows.Close()

	type legacyLog struct {
		id          string
		bookID      string
		characterID string
		title       string
		content     sql.NullString
		orderIndex  int
		createdAt   sql.NullString
	}
	logs := []legacyLog{}
	for rows.Next() {
		var l legacyLog
		if err := rows.Scan(&l.id, &l.bookID, &l.characterID, &l.title, &l.content, &l.orderIndex, &l.createdAt); err != nil {
			return fmt.Errorf("failed to scan legacy log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, l := range logs {
		_, err := tx.Exec(`INSERT OR IGNORE INTO entity_logs (id, book_id, title, description, order_index, created_at)
			VALUES (?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`,
			l.id, l.bookID, l.title, l.content.String, l.orderIndex, l.createdAt)
		if err != nil {
			return fmt.Errorf("failed to copy legacy log %s: %w", l.id, err)
		}
		_, err = tx.Exec(`INSERT OR IGNORE INTO entity_log_links (log_id, entity_id, entity_type)
			VALUES (?, ?, 'character')`, l.id, l.characterID)
		if err != nil {
			return fmt.Errorf("failed to link legacy log %s: %w", l.id, err)
		}
	}

	if _, err := tx.Exec("DROP TABLE character_logs"); err != nil {
		return fmt.Errorf("failed to drop legacy character_logs: %w", err)
	}
	log.Printf("    - Migrated %d legacy character logs", len(logs))
	return nil
}

// AssetWriter persists asset files for migrations that move blobs out of
// the database. Satisfied by assets.FS.
type AssetWriter interface {
	WriteFile(relPath string, data []byte) error
}

// ThumbnailMigrationReport summarizes one MigrateThumbnails run.
type ThumbnailMigrationReport struct {
	Migrated int      `json:"migrated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// MigrateThumbnails rewrites gallery thumbnails stored as inline base64
// data URLs into files under the gallery directory, replacing the column
// value with the new relative path. Runs on demand as a maintenance job
// because it writes outside the database; rows already holding a path
// are skipped, so re-running is harmless. Per-row failures are collected
// rather than aborting the whole pass.
func (s *Store) MigrateThumbnails(writer AssetWriter) (*ThumbnailMigrationReport, error) {
	report := &ThumbnailMigrationReport{}
	err := s.safe("migrate_thumbnails", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}

		rows, err := db.Query(`SELECT id, book_id, thumbnail_path FROM gallery_images
			WHERE thumbnail_path LIKE 'data:image%'`)
		if err != nil {
			return fmt.Errorf("failed to query inline thumbnails: %w", err)
		}
		defer rows.Close()

		type inlineThumb struct {
			id     string
			bookID string
			data   string
		}
		thumbs := []inlineThumb{}
		for rows.Next() {
			var t inlineThumb
			if err := rows.Scan(&t.id, &t.bookID, &t.data); err != nil {
				return fmt.Errorf("failed to scan thumbnail row: %w", err)
			}
			thumbs = append(thumbs, t)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, t := range thumbs {
			data, ext, err := decodeDataURL(t.data)
			if err != nil {
				report.Skipped++
				report.Errors = append(report.Errors, fmt.Sprintf("image %s: %v", t.id, err))
				continue
			}
			relPath := fmt.Sprintf("gallery/%s/thumbs/%s%s", t.bookID, uuid.NewString(), ext)
			if err := writer.WriteFile(relPath, data); err != nil {
				report.Skipped++
				report.Errors = append(report.Errors, fmt.Sprintf("image %s: %v", t.id, err))
				continue
			}
			if _, err := db.Exec("UPDATE gallery_images SET thumbnail_path = ? WHERE id = ?", relPath, t.id); err != nil {
				return fmt.Errorf("failed to update thumbnail path for %s: %w", t.id, err)
			}
			report.Migrated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// decodeDataURL decodes a base64 data URL and picks a file extension
// from its media type.
func decodeDataURL(raw string) ([]byte, string, error) {
	header, payload, found := strings.Cut(raw, ",")
	if !found || !strings.HasSuffix(header, ";base64") {
		return nil, "", fmt.Errorf("not a base64 data URL")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
	}
	ext := ".png"
	switch {
	case strings.Contains(header, "image/jpeg"):
		ext = ".jpg"
	case strings.Contains(header, "image/webp"):
		ext = ".webp"
	case strings.Contains(header, "image/gif"):
		ext = ".gif"
	}
	return data, ext, nil
}
