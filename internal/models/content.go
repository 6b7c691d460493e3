// file: internal/models/content.go
// version: 1.1.0
// guid: 7a5c3e9b-6d20-4f18-a4c7-91b3e5d2c086

package models

import "time"

// Note is a rich-content document owned by a book. Content is an opaque
// editor document; the data layer never inspects it.
type Note struct {
	ID        string    `json:"id" db:"id"`
	BookID    string    `json:"book_id" db:"book_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NotePatch is a partial note update.
type NotePatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// NoteLink attaches a note to an arbitrary entity.
type NoteLink struct {
	NoteID     string `json:"note_id" db:"note_id"`
	EntityID   string `json:"entity_id" db:"entity_id"`
	EntityType string `json:"entity_type" db:"entity_type"`
}

// PlotArc is a named story thread spanning chapters.
type PlotArc struct {
	ID          string    `json:"id" db:"id"`
	BookID      string    `json:"book_id" db:"book_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Status      string    `json:"status" db:"status"`
	OrderIndex  int       `json:"order_index" db:"order_index"`
	Color       *string   `json:"color,omitempty" db:"color"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// PlotArcPatch is a partial plot arc update.
type PlotArcPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// EntityLog is a timeline moment. One log row can involve several entities
// through EntityLogLink rows, so a narrative beat is described once.
type EntityLog struct {
	ID          string          `json:"id" db:"id"`
	BookID      string          `json:"book_id" db:"book_id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	OrderIndex  int             `json:"order_index" db:"order_index"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	Links       []EntityLogLink `json:"links"`
}

// EntityLogLink attaches an entity to a log moment.
type EntityLogLink struct {
	LogID      string `json:"log_id" db:"log_id"`
	EntityID   string `json:"entity_id" db:"entity_id"`
	EntityType string `json:"entity_type" db:"entity_type"`
}

// GalleryImage is an uploaded image plus its generated thumbnail, both
// stored as paths relative to the application data directory.
type GalleryImage struct {
	ID            string    `json:"id" db:"id"`
	BookID        string    `json:"book_id" db:"book_id"`
	ImagePath     string    `json:"image_path" db:"image_path"`
	ThumbnailPath *string   `json:"thumbnail_path,omitempty" db:"thumbnail_path"`
	Caption       *string   `json:"caption,omitempty" db:"caption"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// GalleryLink attaches a gallery image to an entity.
type GalleryLink struct {
	ImageID    string `json:"image_id" db:"image_id"`
	EntityID   string `json:"entity_id" db:"entity_id"`
	EntityType string `json:"entity_type" db:"entity_type"`
}

// Power system hierarchy: System -> Group -> Page -> Section -> Block.
// Every level carries an explicit order index.

type PowerSystem struct {
	ID          string    `json:"id" db:"id"`
	BookID      string    `json:"book_id" db:"book_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	OrderIndex  int       `json:"order_index" db:"order_index"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type PowerGroup struct {
	ID         string `json:"id" db:"id"`
	SystemID   string `json:"system_id" db:"system_id"`
	Name       string `json:"name" db:"name"`
	OrderIndex int    `json:"order_index" db:"order_index"`
}

type PowerPage struct {
	ID         string `json:"id" db:"id"`
	GroupID    string `json:"group_id" db:"group_id"`
	Title      string `json:"title" db:"title"`
	OrderIndex int    `json:"order_index" db:"order_index"`
}

type PowerSection struct {
	ID         string `json:"id" db:"id"`
	PageID     string `json:"page_id" db:"page_id"`
	Title      string `json:"title" db:"title"`
	OrderIndex int    `json:"order_index" db:"order_index"`
}

type PowerBlock struct {
	ID         string `json:"id" db:"id"`
	SectionID  string `json:"section_id" db:"section_id"`
	Kind       string `json:"kind" db:"kind"`
	Content    string `json:"content" db:"content"`
	OrderIndex int    `json:"order_index" db:"order_index"`
}

// PowerCharacterLink attaches a character to exactly one page or exactly
// one section, never both. The schema enforces the exclusivity with a
// CHECK constraint.
type PowerCharacterLink struct {
	ID          string  `json:"id" db:"id"`
	CharacterID string  `json:"character_id" db:"character_id"`
	PageID      *string `json:"page_id,omitempty" db:"page_id"`
	SectionID   *string `json:"section_id,omitempty" db:"section_id"`
	CustomLabel *string `json:"custom_label,omitempty" db:"custom_label"`
}
