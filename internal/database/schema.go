// file: internal/database/schema.go
// version: 1.6.0
// guid: 03b8d5f2-6e1a-4c97-85d4-a9f0c7e2b163

package database

// schemaSQL is the full idempotent DDL describing the latest shape of
// every table. It runs on every cold start before the versioned
// migration steps, so existing databases pick up new tables for free and
// older tables are brought forward by the steps in migrations.go.
// Indexes on columns the versioned steps manage live in postSchemaSQL:
// against a pre-migration database they would fail here, before the
// column exists.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS app_state (
	key TEXT PRIMARY KEY,
	value TEXT,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS books (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'planning',
	genres TEXT,
	synopsis TEXT,
	cover_path TEXT,
	goals TEXT,
	progress TEXT,
	sticky_notes TEXT,
	checklist TEXT,
	section_visibility TEXT,
	tabs TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_opened_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_books_status ON books(status);

CREATE TABLE IF NOT EXISTS characters (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	age INTEGER,
	role TEXT,
	summary TEXT,
	appearance TEXT,
	personality TEXT,
	species TEXT,
	birthplaces TEXT,
	image_path TEXT,
	field_visibility TEXT,
	ui_state TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_characters_book ON characters(book_id);
CREATE INDEX IF NOT EXISTS idx_characters_name ON characters(name);

CREATE TABLE IF NOT EXISTS factions (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	summary TEXT,
	emblem_path TEXT,
	founders TEXT,
	hierarchy TEXT,
	diplomacy TEXT,
	timeline TEXT,
	field_visibility TEXT,
	ui_state TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_factions_book ON factions(book_id);

CREATE TABLE IF NOT EXISTS races (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	description TEXT,
	homelands TEXT,
	traits TEXT,
	lifespan_years INTEGER,
	image_path TEXT,
	field_visibility TEXT,
	ui_state TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_races_book ON races(book_id);

CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	description TEXT,
	origin TEXT,
	powers TEXT,
	holders TEXT,
	image_path TEXT,
	field_visibility TEXT,
	ui_state TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_book ON items(book_id);

CREATE TABLE IF NOT EXISTS regions (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	summary TEXT,
	parent_id TEXT REFERENCES regions(id) ON DELETE CASCADE,
	order_index INTEGER NOT NULL DEFAULT 0,
	climate TEXT,
	territory TEXT,
	field_visibility TEXT,
	ui_state TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_regions_book ON regions(book_id);
CREATE INDEX IF NOT EXISTS idx_regions_parent ON regions(parent_id);

CREATE TABLE IF NOT EXISTS entity_versions (
	id TEXT PRIMARY KEY,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	is_main BOOLEAN NOT NULL DEFAULT 0,
	data TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_entity_versions_entity ON entity_versions(entity_type, entity_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_entity_versions_main
	ON entity_versions(entity_type, entity_id) WHERE is_main = 1;

CREATE TABLE IF NOT EXISTS entity_relationships (
	id TEXT PRIMARY KEY,
	entity_type TEXT NOT NULL,
	owner_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	intensity INTEGER NOT NULL DEFAULT 0,
	description TEXT
);

CREATE INDEX IF NOT EXISTS idx_entity_relationships_owner ON entity_relationships(entity_type, owner_id);
CREATE INDEX IF NOT EXISTS idx_entity_relationships_target ON entity_relationships(entity_type, target_id);

CREATE TABLE IF NOT EXISTS chapters (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	order_index INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'draft',
	summary TEXT,
	content TEXT NOT NULL DEFAULT '',
	word_count INTEGER NOT NULL DEFAULT 0,
	char_count INTEGER NOT NULL DEFAULT 0,
	paragraph_count INTEGER NOT NULL DEFAULT 0,
	dialogue_count INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_chapters_book ON chapters(book_id);
CREATE INDEX IF NOT EXISTS idx_chapters_book_order ON chapters(book_id, order_index);

CREATE TABLE IF NOT EXISTS chapter_mentions (
	id TEXT PRIMARY KEY,
	chapter_id TEXT NOT NULL REFERENCES chapters(id) ON DELETE CASCADE,
	entity_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	name TEXT NOT NULL,
	image_path TEXT,
	UNIQUE(chapter_id, entity_id, entity_type)
);

CREATE INDEX IF NOT EXISTS idx_chapter_mentions_chapter ON chapter_mentions(chapter_id);
CREATE INDEX IF NOT EXISTS idx_chapter_mentions_entity ON chapter_mentions(entity_id, entity_type);

CREATE TABLE IF NOT EXISTS chapter_annotations (
	id TEXT PRIMARY KEY,
	chapter_id TEXT NOT NULL REFERENCES chapters(id) ON DELETE CASCADE,
	start_offset INTEGER NOT NULL,
	end_offset INTEGER NOT NULL,
	color TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_chapter_annotations_chapter ON chapter_annotations(chapter_id);

CREATE TABLE IF NOT EXISTS annotation_notes (
	id TEXT PRIMARY KEY,
	annotation_id TEXT NOT NULL REFERENCES chapter_annotations(id) ON DELETE CASCADE,
	text TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_annotation_notes_annotation ON annotation_notes(annotation_id);

CREATE TABLE IF NOT EXISTS chapter_entity_links (
	id TEXT PRIMARY KEY,
	chapter_id TEXT NOT NULL REFERENCES chapters(id) ON DELETE CASCADE,
	entity_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	start_offset INTEGER NOT NULL,
	end_offset INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chapter_entity_links_chapter ON chapter_entity_links(chapter_id);
CREATE INDEX IF NOT EXISTS idx_chapter_entity_links_entity ON chapter_entity_links(entity_id, entity_type);

CREATE TABLE IF NOT EXISTS region_maps (
	id TEXT PRIMARY KEY,
	region_id TEXT NOT NULL REFERENCES regions(id) ON DELETE CASCADE,
	version_id TEXT NOT NULL REFERENCES entity_versions(id) ON DELETE CASCADE,
	image_path TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(region_id, version_id)
);

CREATE INDEX IF NOT EXISTS idx_region_maps_region ON region_maps(region_id);

CREATE TABLE IF NOT EXISTS map_markers (
	id TEXT PRIMARY KEY,
	map_id TEXT NOT NULL REFERENCES region_maps(id) ON DELETE CASCADE,
	x REAL NOT NULL,
	y REAL NOT NULL,
	label TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	label_visible BOOLEAN NOT NULL DEFAULT 1,
	scale REAL NOT NULL DEFAULT 1.0
);

CREATE TABLE IF NOT EXISTS power_systems (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	description TEXT,
	order_index INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_power_systems_book ON power_systems(book_id);

CREATE TABLE IF NOT EXISTS power_groups (
	id TEXT PRIMARY KEY,
	system_id TEXT NOT NULL REFERENCES power_systems(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	order_index INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_power_groups_system ON power_groups(system_id);

CREATE TABLE IF NOT EXISTS power_pages (
	id TEXT PRIMARY KEY,
	group_id TEXT NOT NULL REFERENCES power_groups(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	order_index INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_power_pages_group ON power_pages(group_id);

CREATE TABLE IF NOT EXISTS power_sections (
	id TEXT PRIMARY KEY,
	page_id TEXT NOT NULL REFERENCES power_pages(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	order_index INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_power_sections_page ON power_sections(page_id);

CREATE TABLE IF NOT EXISTS power_blocks (
	id TEXT PRIMARY KEY,
	section_id TEXT NOT NULL REFERENCES power_sections(id) ON DELETE CASCADE,
	kind TEXT NOT NULL DEFAULT 'text',
	content TEXT NOT NULL DEFAULT '',
	order_index INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_power_blocks_section ON power_blocks(section_id);

CREATE TABLE IF NOT EXISTS power_character_links (
	id TEXT PRIMARY KEY,
	character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
	page_id TEXT REFERENCES power_pages(id) ON DELETE CASCADE,
	section_id TEXT REFERENCES power_sections(id) ON DELETE CASCADE,
	custom_label TEXT,
	CHECK ((page_id IS NULL) <> (section_id IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_power_character_links_character ON power_character_links(character_id);

CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notes_book ON notes(book_id);

CREATE TABLE IF NOT EXISTS note_links (
	note_id TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	entity_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	PRIMARY KEY (note_id, entity_id, entity_type)
);

CREATE INDEX IF NOT EXISTS idx_note_links_entity ON note_links(entity_id, entity_type);

CREATE TABLE IF NOT EXISTS plot_arcs (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'planned',
	order_index INTEGER NOT NULL DEFAULT 0,
	color TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_plot_arcs_book ON plot_arcs(book_id);

CREATE TABLE IF NOT EXISTS entity_logs (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	order_index INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_entity_logs_book ON entity_logs(book_id);

CREATE TABLE IF NOT EXISTS entity_log_links (
	log_id TEXT NOT NULL REFERENCES entity_logs(id) ON DELETE CASCADE,
	entity_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	PRIMARY KEY (log_id, entity_id, entity_type)
);

CREATE INDEX IF NOT EXISTS idx_entity_log_links_entity ON entity_log_links(entity_id, entity_type);

CREATE TABLE IF NOT EXISTS gallery_images (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	image_path TEXT NOT NULL,
	thumbnail_path TEXT,
	caption TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_gallery_images_book ON gallery_images(book_id);

CREATE TABLE IF NOT EXISTS gallery_links (
	image_id TEXT NOT NULL REFERENCES gallery_images(id) ON DELETE CASCADE,
	entity_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	PRIMARY KEY (image_id, entity_id, entity_type)
);

CREATE INDEX IF NOT EXISTS idx_gallery_links_entity ON gallery_links(entity_id, entity_type);
`

// postSchemaSQL holds indexes on columns the versioned steps add or
// rebuild (last_opened_at arrives with migration 2, map_id with the
// migration 5 table rebuild). It runs after the steps, when every
// database shape has the columns.
const postSchemaSQL = `
CREATE INDEX IF NOT EXISTS idx_books_last_opened ON books(last_opened_at);
CREATE INDEX IF NOT EXISTS idx_map_markers_map ON map_markers(map_id);
`
