// file: internal/models/entities.go
// version: 1.4.0
// guid: 9f2e6b1c-0d47-4a3e-8c5b-2a91e7d4f630

package models

import (
	"encoding/json"
	"time"
)

// Entity type discriminators used by polymorphic tables (versions,
// relationships, mentions, note links, gallery links, log links).
const (
	EntityTypeCharacter = "character"
	EntityTypeFaction   = "faction"
	EntityTypeRace      = "race"
	EntityTypeItem      = "item"
	EntityTypeRegion    = "region"
	EntityTypeNote      = "note"
)

// EntityRef is a lightweight reference to another entity embedded inside a
// JSON column. Name is a denormalized snapshot and may be stale.
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Location is a named place reference embedded inside a JSON column.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HierarchyNode is one node of a faction's rank/title tree.
type HierarchyNode struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	HolderID string          `json:"holder_id,omitempty"`
	Children []HierarchyNode `json:"children,omitempty"`
}

// DiplomaticRelation describes one edge of a faction's diplomacy list.
type DiplomaticRelation struct {
	FactionID   string `json:"faction_id"`
	Stance      string `json:"stance"`
	Intensity   int    `json:"intensity"`
	Description string `json:"description,omitempty"`
}

// TimelineEvent is a single event inside a faction timeline era.
type TimelineEvent struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	CharactersInvolved []string `json:"charactersInvolved"`
}

// TimelineEra groups timeline events under a named era.
type TimelineEra struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Events []TimelineEvent `json:"events"`
}

// Character is a cast member of a book.
type Character struct {
	ID              string          `json:"id" db:"id"`
	BookID          string          `json:"book_id" db:"book_id"`
	Name            string          `json:"name" db:"name"`
	Age             *int            `json:"age,omitempty" db:"age"`
	Role            *string         `json:"role,omitempty" db:"role"`
	Summary         *string         `json:"summary,omitempty" db:"summary"`
	Appearance      *string         `json:"appearance,omitempty" db:"appearance"`
	Personality     *string         `json:"personality,omitempty" db:"personality"`
	Species         []string        `json:"species" db:"species"`
	Birthplaces     []Location      `json:"birthplaces" db:"birthplaces"`
	ImagePath       *string         `json:"image_path,omitempty" db:"image_path"`
	FieldVisibility map[string]bool `json:"field_visibility" db:"field_visibility"`
	UIState         json.RawMessage `json:"ui_state,omitempty" db:"ui_state"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// CharacterPatch is a partial character update. Nil fields are preserved.
type CharacterPatch struct {
	Name            *string          `json:"name,omitempty"`
	Age             *int             `json:"age,omitempty"`
	Role            *string          `json:"role,omitempty"`
	Summary         *string          `json:"summary,omitempty"`
	Appearance      *string          `json:"appearance,omitempty"`
	Personality     *string          `json:"personality,omitempty"`
	Species         *[]string        `json:"species,omitempty"`
	Birthplaces     *[]Location      `json:"birthplaces,omitempty"`
	ImagePath       *string          `json:"image_path,omitempty"`
	FieldVisibility *map[string]bool `json:"field_visibility,omitempty"`
	UIState         json.RawMessage  `json:"ui_state,omitempty"`
}

// Faction is an organization inside a book's world.
type Faction struct {
	ID              string               `json:"id" db:"id"`
	BookID          string               `json:"book_id" db:"book_id"`
	Name            string               `json:"name" db:"name"`
	Summary         *string              `json:"summary,omitempty" db:"summary"`
	EmblemPath      *string              `json:"emblem_path,omitempty" db:"emblem_path"`
	Founders        []EntityRef          `json:"founders" db:"founders"`
	Hierarchy       []HierarchyNode      `json:"hierarchy" db:"hierarchy"`
	Diplomacy       []DiplomaticRelation `json:"diplomacy" db:"diplomacy"`
	Timeline        []TimelineEra        `json:"timeline" db:"timeline"`
	FieldVisibility map[string]bool      `json:"field_visibility" db:"field_visibility"`
	UIState         json.RawMessage      `json:"ui_state,omitempty" db:"ui_state"`
	CreatedAt       time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at" db:"updated_at"`
}

// FactionPatch is a partial faction update.
type FactionPatch struct {
	Name            *string               `json:"name,omitempty"`
	Summary         *string               `json:"summary,omitempty"`
	EmblemPath      *string               `json:"emblem_path,omitempty"`
	Founders        *[]EntityRef          `json:"founders,omitempty"`
	Hierarchy       *[]HierarchyNode      `json:"hierarchy,omitempty"`
	Diplomacy       *[]DiplomaticRelation `json:"diplomacy,omitempty"`
	Timeline        *[]TimelineEra        `json:"timeline,omitempty"`
	FieldVisibility *map[string]bool      `json:"field_visibility,omitempty"`
	UIState         json.RawMessage       `json:"ui_state,omitempty"`
}

// Race is a species/people of a book's world.
type Race struct {
	ID              string          `json:"id" db:"id"`
	BookID          string          `json:"book_id" db:"book_id"`
	Name            string          `json:"name" db:"name"`
	Description     *string         `json:"description,omitempty" db:"description"`
	Homelands       []Location      `json:"homelands" db:"homelands"`
	Traits          []string        `json:"traits" db:"traits"`
	LifespanYears   *int            `json:"lifespan_years,omitempty" db:"lifespan_years"`
	ImagePath       *string         `json:"image_path,omitempty" db:"image_path"`
	FieldVisibility map[string]bool `json:"field_visibility" db:"field_visibility"`
	UIState         json.RawMessage `json:"ui_state,omitempty" db:"ui_state"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// RacePatch is a partial race update.
type RacePatch struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Homelands       *[]Location      `json:"homelands,omitempty"`
	Traits          *[]string        `json:"traits,omitempty"`
	LifespanYears   *int             `json:"lifespan_years,omitempty"`
	ImagePath       *string          `json:"image_path,omitempty"`
	FieldVisibility *map[string]bool `json:"field_visibility,omitempty"`
	UIState         json.RawMessage  `json:"ui_state,omitempty"`
}

// Item is a significant object of a book's world.
type Item struct {
	ID              string          `json:"id" db:"id"`
	BookID          string          `json:"book_id" db:"book_id"`
	Name            string          `json:"name" db:"name"`
	Description     *string         `json:"description,omitempty" db:"description"`
	Origin          *string         `json:"origin,omitempty" db:"origin"`
	Powers          []string        `json:"powers" db:"powers"`
	Holders         []EntityRef     `json:"holders" db:"holders"`
	ImagePath       *string         `json:"image_path,omitempty" db:"image_path"`
	FieldVisibility map[string]bool `json:"field_visibility" db:"field_visibility"`
	UIState         json.RawMessage `json:"ui_state,omitempty" db:"ui_state"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// ItemPatch is a partial item update.
type ItemPatch struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Origin          *string          `json:"origin,omitempty"`
	Powers          *[]string        `json:"powers,omitempty"`
	Holders         *[]EntityRef     `json:"holders,omitempty"`
	ImagePath       *string          `json:"image_path,omitempty"`
	FieldVisibility *map[string]bool `json:"field_visibility,omitempty"`
	UIState         json.RawMessage  `json:"ui_state,omitempty"`
}

// Region is a place in a book's world. Regions form a tree per book via
// ParentID, ordered among siblings by OrderIndex.
type Region struct {
	ID              string          `json:"id" db:"id"`
	BookID          string          `json:"book_id" db:"book_id"`
	Name            string          `json:"name" db:"name"`
	Summary         *string         `json:"summary,omitempty" db:"summary"`
	ParentID        *string         `json:"parent_id,omitempty" db:"parent_id"`
	OrderIndex      int             `json:"order_index" db:"order_index"`
	Climate         *string         `json:"climate,omitempty" db:"climate"`
	Territory       []string        `json:"territory" db:"territory"`
	FieldVisibility map[string]bool `json:"field_visibility" db:"field_visibility"`
	UIState         json.RawMessage `json:"ui_state,omitempty" db:"ui_state"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// RegionPatch is a partial region update. Parent moves go through
// MoveRegion, which checks for cycles, not through the generic patch.
type RegionPatch struct {
	Name            *string          `json:"name,omitempty"`
	Summary         *string          `json:"summary,omitempty"`
	Climate         *string          `json:"climate,omitempty"`
	Territory       *[]string        `json:"territory,omitempty"`
	FieldVisibility *map[string]bool `json:"field_visibility,omitempty"`
	UIState         json.RawMessage  `json:"ui_state,omitempty"`
}

// RegionMap is the image attached to a (region, version) pair. Markers
// reference the map row, not the region, so each version of a region keeps
// an independent marker set.
type RegionMap struct {
	ID        string    `json:"id" db:"id"`
	RegionID  string    `json:"region_id" db:"region_id"`
	VersionID string    `json:"version_id" db:"version_id"`
	ImagePath string    `json:"image_path" db:"image_path"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MapMarker is a pinned point on a region map.
type MapMarker struct {
	ID           string  `json:"id" db:"id"`
	MapID        string  `json:"map_id" db:"map_id"`
	X            float64 `json:"x" db:"x"`
	Y            float64 `json:"y" db:"y"`
	Label        string  `json:"label" db:"label"`
	Color        string  `json:"color" db:"color"`
	LabelVisible bool    `json:"label_visible" db:"label_visible"`
	Scale        float64 `json:"scale" db:"scale"`
}

// Version is an alternate take on an entity. The snapshot in Data is a
// complete serialized copy of the entity, not a diff. Exactly one version
// per (entity_type, entity_id) has IsMain set; the schema enforces this
// with a partial unique index.
type Version struct {
	ID          string          `json:"id" db:"id"`
	EntityType  string          `json:"entity_type" db:"entity_type"`
	EntityID    string          `json:"entity_id" db:"entity_id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	IsMain      bool            `json:"is_main" db:"is_main"`
	Data        json.RawMessage `json:"data" db:"data"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Relationship is a typed edge between two entities of the same type,
// owned by OwnerID. Intensity ranges 0-100.
type Relationship struct {
	ID          string  `json:"id" db:"id"`
	EntityType  string  `json:"entity_type" db:"entity_type"`
	OwnerID     string  `json:"owner_id" db:"owner_id"`
	TargetID    string  `json:"target_id" db:"target_id"`
	Kind        string  `json:"kind" db:"kind"`
	Intensity   int     `json:"intensity" db:"intensity"`
	Description *string `json:"description,omitempty" db:"description"`
}
