// file: internal/models/book.go
// version: 1.2.0
// guid: 4c1d9e2a-7b3f-4e8d-9a05-f61c2b8d73e4

package models

import "time"

// BookStatus is the canonical lifecycle status of a book project.
// Stored as plain text; legacy localized values are rewritten to these ids
// by the startup content migration.
type BookStatus string

const (
	BookStatusPlanning   BookStatus = "planning"
	BookStatusInProgress BookStatus = "in_progress"
	BookStatusRevising   BookStatus = "revising"
	BookStatusFinished   BookStatus = "finished"
	BookStatusOnHold     BookStatus = "on_hold"
)

// BookGoals holds the writing goals shown on the book overview tab.
type BookGoals struct {
	TargetWords    int    `json:"target_words"`
	TargetChapters int    `json:"target_chapters"`
	Deadline       string `json:"deadline,omitempty"`
}

// StoryProgress holds the denormalized progress counters for the overview.
type StoryProgress struct {
	CurrentWords    int `json:"current_words"`
	CurrentChapters int `json:"current_chapters"`
	PercentComplete int `json:"percent_complete"`
}

// StickyNote is a free-form note pinned to the book overview.
type StickyNote struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
}

// ChecklistItem is a single overview checklist entry.
type ChecklistItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// TabConfig describes one configurable tab of the book workspace.
type TabConfig struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Order   int    `json:"order"`
	Visible bool   `json:"visible"`
}

// Book represents a book project. Overview sub-structures are stored as
// JSON columns on the books row; children (characters, chapters, ...) live
// in their own tables keyed by book_id with ON DELETE CASCADE.
type Book struct {
	ID                string          `json:"id" db:"id"`
	Title             string          `json:"title" db:"title"`
	Status            BookStatus      `json:"status" db:"status"`
	Genres            []string        `json:"genres" db:"genres"`
	Synopsis          *string         `json:"synopsis,omitempty" db:"synopsis"`
	CoverPath         *string         `json:"cover_path,omitempty" db:"cover_path"`
	Goals             *BookGoals      `json:"goals,omitempty" db:"goals"`
	Progress          *StoryProgress  `json:"progress,omitempty" db:"progress"`
	StickyNotes       []StickyNote    `json:"sticky_notes" db:"sticky_notes"`
	Checklist         []ChecklistItem `json:"checklist" db:"checklist"`
	SectionVisibility map[string]bool `json:"section_visibility" db:"section_visibility"`
	Tabs              []TabConfig     `json:"tabs" db:"tabs"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
	LastOpenedAt      *time.Time      `json:"last_opened_at,omitempty" db:"last_opened_at"`
}

// BookPatch is a partial update for a book. Nil fields are preserved.
type BookPatch struct {
	Title     *string     `json:"title,omitempty"`
	Status    *BookStatus `json:"status,omitempty"`
	Genres    *[]string   `json:"genres,omitempty"`
	Synopsis  *string     `json:"synopsis,omitempty"`
	CoverPath *string     `json:"cover_path,omitempty"`
}

// BookOverview bundles the overview blobs saved by the overview form.
type BookOverview struct {
	Goals             *BookGoals      `json:"goals,omitempty"`
	Progress          *StoryProgress  `json:"progress,omitempty"`
	StickyNotes       []StickyNote    `json:"sticky_notes"`
	Checklist         []ChecklistItem `json:"checklist"`
	SectionVisibility map[string]bool `json:"section_visibility"`
}
