// file: internal/database/migrations.go
// version: 1.7.0
// guid: a92d7e4f-0b61-4c38-85fa-3e9d1c70b526

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// MigrationFunc applies one migration step inside the startup transaction.
type MigrationFunc func(tx *sql.Tx) error

// Migration is a single versioned schema/content migration.
type Migration struct {
	Version     int
	Description string
	Up          MigrationFunc
}

// MigrationRecord is the ledger entry kept per applied migration.
type MigrationRecord struct {
	Version     int       `json:"version"`
	Description string    `json:"description"`
	AppliedAt   time.Time `json:"applied_at"`
}

// migrations is the ordered list of all migrations. Steps are applied
// only when schema_version is behind, but every step is still written to
// be individually idempotent as a safety net: re-running against an
// up-to-date database must be a no-op.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema (books, world entities, chapters, assets)",
		Up:          migration001Up,
	},
	{
		Version:     2,
		Description: "Add overview and workspace columns to books",
		Up:          migration002Up,
	},
	{
		Version:     3,
		Description: "Add sibling ordering to regions",
		Up:          migration003Up,
	},
	{
		Version:     4,
		Description: "Rebuild region_maps with one-map-per-version uniqueness",
		Up:          migration004Up,
	},
	{
		Version:     5,
		Description: "Retarget map_markers from regions to region_maps",
		Up:          migration005Up,
	},
	{
		Version:     6,
		Description: "Canonicalize localized status values",
		Up:          migration006Up,
	},
	{
		Version:     7,
		Description: "Move per-entity logs into global entity_logs with link rows",
		Up:          migration007Up,
	},
}

// migrate brings db to the latest schema. The full DDL plus every pending
// versioned step plus the in-database content migrations run inside one
// transaction; any failure rolls the whole sequence back.
func migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply base schema: %w", err)
	}

	currentVersion, err := getSchemaVersion(tx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	log.Printf("Current database version: %d", currentVersion)

	pending := []Migration{}
	for _, m := range migrations {
		if m.Version > currentVersion {
			pending = append(pending, m)
		}
	}

	if len(pending) == 0 {
		log.Printf("Database is up to date (version %d)", currentVersion)
	} else {
		log.Printf("Applying %d migrations...", len(pending))
		for _, m := range pending {
			log.Printf("Applying migration %d: %s", m.Version, m.Description)
			if err := m.Up(tx); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.Version, err)
			}
			if err := recordMigration(tx, m); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
			}
			if err := setSchemaVersion(tx, m.Version); err != nil {
				return fmt.Errorf("failed to update version to %d: %w", m.Version, err)
			}
		}
		log.Printf("All migrations completed. Current version: %d", pending[len(pending)-1].Version)
	}

	// Indexes on migration-managed columns only become valid once the
	// steps above have run.
	if _, err := tx.Exec(postSchemaSQL); err != nil {
		return fmt.Errorf("failed to apply post-migration indexes: %w", err)
	}

	return tx.Commit()
}

// rowQuerier is satisfied by *sql.DB and *sql.Tx, so the schema version
// can be read inside the migration transaction or from a plain handle.
type rowQuerier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

// getSchemaVersion reads the schema version from app_state, returning 0
// for a fresh database.
func getSchemaVersion(q rowQuerier) (int, error) {
	var value sql.NullString
	err := q.QueryRow("SELECT value FROM app_state WHERE key = 'schema_version'").Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !value.Valid {
		return 0, nil
	}
	var version int
	if _, err := fmt.Sscanf(value.String, "%d", &version); err != nil {
		return 0, fmt.Errorf("failed to parse schema version %q: %w", value.String, err)
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec(`INSERT INTO app_state (key, value, updated_at) VALUES ('schema_version', ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		fmt.Sprintf("%d", version), time.Now())
	return err
}

func recordMigration(tx *sql.Tx, m Migration) error {
	record := MigrationRecord{
		Version:     m.Version,
		Description: m.Description,
		AppliedAt:   time.Now(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal migration record: %w", err)
	}
	key := fmt.Sprintf("migration_%d", m.Version)
	_, err = tx.Exec(`INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now())
	return err
}

// GetMigrationHistory returns all applied migration records.
func GetMigrationHistory(db *sql.DB) ([]MigrationRecord, error) {
	rows, err := db.Query("SELECT key, value FROM app_state WHERE key LIKE 'migration_%' ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to query migration records: %w", err)
	}
	defer rows.Close()

	records := []MigrationRecord{}
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		if !value.Valid {
			continue
		}
		var record MigrationRecord
		if err := json.Unmarshal([]byte(value.String), &record); err != nil {
			log.Printf("Warning: failed to parse migration record %s: %v", key, err)
			continue
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// execAdditive runs ALTER TABLE ... ADD COLUMN statements, swallowing the
// "duplicate column name" error that re-running against an already
// current schema produces. Anything else is fatal.
func execAdditive(tx *sql.Tx, statements []string) error {
	for _, stmt := range statements {
		log.Printf("    - Executing: %s", stmt)
		if _, err := tx.Exec(stmt); err != nil {
			if isDuplicateColumn(err) {
				log.Printf("    - Column already exists, skipping")
				continue
			}
			return fmt.Errorf("failed to execute statement '%s': %w", stmt, err)
		}
	}
	return nil
}

// tableSQL returns the declared CREATE TABLE text for name, or "" when
// the table does not exist. Structural migrations use it to probe
// whether the old shape is still present.
func tableSQL(tx *sql.Tx, name string) (string, error) {
	var declared sql.NullString
	err := tx.QueryRow(`SELECT sql FROM sqlite_master WHERE type='table' AND name = ?`, name).Scan(&declared)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to inspect table %s: %w", name, err)
	}
	return declared.String, nil
}

// Migration implementations

// migration001Up validates the base schema. Table creation itself is
// handled by the idempotent DDL that runs before the versioned steps.
func migration001Up(tx *sql.Tx) error {
	log.Println("  - Validating base schema")
	for _, table := range []string{"books", "characters", "regions", "chapters"} {
		declared, err := tableSQL(tx, table)
		if err != nil {
			return err
		}
		if declared == "" {
			return fmt.Errorf("base schema missing table %s", table)
		}
	}
	return nil
}

// migration002Up adds the overview/workspace columns used by the book
// overview tab to databases created before those columns existed.
func migration002Up(tx *sql.Tx) error {
	log.Println("  - Adding overview and workspace columns to books")
	return execAdditive(tx, []string{
		"ALTER TABLE books ADD COLUMN goals TEXT",
		"ALTER TABLE books ADD COLUMN progress TEXT",
		"ALTER TABLE books ADD COLUMN sticky_notes TEXT",
		"ALTER TABLE books ADD COLUMN checklist TEXT",
		"ALTER TABLE books ADD COLUMN section_visibility TEXT",
		"ALTER TABLE books ADD COLUMN tabs TEXT",
		"ALTER TABLE books ADD COLUMN last_opened_at DATETIME",
	})
}

// migration003Up adds explicit sibling ordering to the region tree.
func migration003Up(tx *sql.Tx) error {
	log.Println("  - Adding order_index to regions")
	if err := execAdditive(tx, []string{
		"ALTER TABLE regions ADD COLUMN order_index INTEGER NOT NULL DEFAULT 0",
	}); err != nil {
		return err
	}
	// Backfill a stable order for pre-existing siblings.
	_, err := tx.Exec(`UPDATE regions SET order_index = (
		SELECT COUNT(*) FROM regions AS older
		WHERE older.book_id = regions.book_id
		  AND COALESCE(older.parent_id, '') = COALESCE(regions.parent_id, '')
		  AND older.id < regions.id
	) WHERE order_index = 0`)
	if err != nil {
		return fmt.Errorf("failed to backfill region order: %w", err)
	}
	return nil
}

// migration004Up rebuilds region_maps to enforce one map per (region,
// version). Legacy databases declared the table without the UNIQUE
// constraint, which allowed the duplicate-map corruption that
// FixDuplicateMaps repairs.
func migration004Up(tx *sql.Tx) error {
	declared, err := tableSQL(tx, "region_maps")
	if err != nil {
		return err
	}
	if declared == "" || strings.Contains(declared, "UNIQUE(region_id, version_id)") {
		log.Println("  - region_maps already has version uniqueness, skipping")
		return nil
	}

	log.Println("  - Rebuilding region_maps with UNIQUE(region_id, version_id)")
	statements := []string{
		`CREATE TABLE region_maps_new (
			id TEXT PRIMARY KEY,
			region_id TEXT NOT NULL REFERENCES regions(id) ON DELETE CASCADE,
			version_id TEXT NOT NULL REFERENCES entity_versions(id) ON DELETE CASCADE,
			image_path TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(region_id, version_id)
		)`,
		// Keep only the most recently updated row per pair; the shadow
		// table's constraint would otherwise reject the copy.
		`INSERT INTO region_maps_new (id, region_id, version_id, image_path, created_at, updated_at)
			SELECT id, region_id, version_id, image_path, created_at, updated_at FROM region_maps
			WHERE id IN (
				SELECT id FROM region_maps AS rm
				WHERE rm.updated_at = (
					SELECT MAX(inner.updated_at) FROM region_maps AS inner
					WHERE inner.region_id = rm.region_id AND inner.version_id = rm.version_id
				)
			)`,
		"DROP TABLE region_maps",
		"ALTER TABLE region_maps_new RENAME TO region_maps",
		"CREATE INDEX IF NOT EXISTS idx_region_maps_region ON region_maps(region_id)",
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to rebuild region_maps: %w", err)
		}
	}
	return nil
}

// migration005Up retargets map_markers from regions to region_maps so
// each region version carries an independent marker set. Old-shape rows
// are attached to the region's surviving map row.
func migration005Up(tx *sql.Tx) error {
	declared, err := tableSQL(tx, "map_markers")
	if err != nil {
		return err
	}
	if declared == "" || !strings.Contains(declared, "region_id") {
		log.Println("  - map_markers already references region_maps, skipping")
		return nil
	}

	log.Println("  - Rebuilding map_markers against region_maps")
	statements := []string{
		`CREATE TABLE map_markers_new (
			id TEXT PRIMARY KEY,
			map_id TEXT NOT NULL REFERENCES region_maps(id) ON DELETE CASCADE,
			x REAL NOT NULL,
			y REAL NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			label_visible BOOLEAN NOT NULL DEFAULT 1,
			scale REAL NOT NULL DEFAULT 1.0
		)`,
		`INSERT INTO map_markers_new (id, map_id, x, y, label, color, label_visible, scale)
			SELECT mk.id, rm.id, mk.x, mk.y, mk.label, mk.color, mk.label_visible, mk.scale
			FROM map_markers mk
			JOIN region_maps rm ON rm.region_id = mk.region_id`,
		"DROP TABLE map_markers",
		"ALTER TABLE map_markers_new RENAME TO map_markers",
		"CREATE INDEX IF NOT EXISTS idx_map_markers_map ON map_markers(map_id)",
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to rebuild map_markers: %w", err)
		}
	}
	return nil
}

// migration006Up rewrites localized status values to their canonical
// English ids. Content only; see datamigrations.go for the value maps.
func migration006Up(tx *sql.Tx) error {
	log.Println("  - Canonicalizing localized status values")
	return canonicalizeStatusValues(tx)
}

// migration007Up moves rows from the legacy one-log-per-entity table into
// the global entity_logs + entity_log_links pair, so a single narrative
// moment can reference several entities without duplicating text.
func migration007Up(tx *sql.Tx) error {
	declared, err := tableSQL(tx, "character_logs")
	if err != nil {
		return err
	}
	if declared == "" {
		log.Println("  - No legacy character_logs table, skipping")
		return nil
	}

	log.Println("  - Migrating legacy character_logs into entity_logs")
	return migrateLegacyEntityLogs(tx)
}
