// file: internal/models/chapter.go
// version: 1.3.0
// guid: 2b8d4f6e-1a9c-4073-b5e2-8c4f0d1a6b97

package models

import (
	"strings"
	"time"
)

// Chapter holds a chapter's text plus counters derived from it. The
// counters are recomputed by the data layer on every content change so
// listings never have to load the text itself.
type Chapter struct {
	ID             string    `json:"id" db:"id"`
	BookID         string    `json:"book_id" db:"book_id"`
	Title          string    `json:"title" db:"title"`
	OrderIndex     int       `json:"order_index" db:"order_index"`
	Status         string    `json:"status" db:"status"`
	Summary        *string   `json:"summary,omitempty" db:"summary"`
	Content        string    `json:"content" db:"content"`
	WordCount      int       `json:"word_count" db:"word_count"`
	CharCount      int       `json:"char_count" db:"char_count"`
	ParagraphCount int       `json:"paragraph_count" db:"paragraph_count"`
	DialogueCount  int       `json:"dialogue_count" db:"dialogue_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// ChapterMeta is a chapter without its content column, used by listing and
// navigation queries.
type ChapterMeta struct {
	ID             string    `json:"id" db:"id"`
	BookID         string    `json:"book_id" db:"book_id"`
	Title          string    `json:"title" db:"title"`
	OrderIndex     int       `json:"order_index" db:"order_index"`
	Status         string    `json:"status" db:"status"`
	Summary        *string   `json:"summary,omitempty" db:"summary"`
	WordCount      int       `json:"word_count" db:"word_count"`
	CharCount      int       `json:"char_count" db:"char_count"`
	ParagraphCount int       `json:"paragraph_count" db:"paragraph_count"`
	DialogueCount  int       `json:"dialogue_count" db:"dialogue_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// ChapterPatch is a partial chapter update. Content changes go through
// UpdateChapterContent so the counters stay consistent.
type ChapterPatch struct {
	Title   *string `json:"title,omitempty"`
	Status  *string `json:"status,omitempty"`
	Summary *string `json:"summary,omitempty"`
}

// Mention is a denormalized snapshot of an entity referenced by a chapter,
// unique per (chapter, entity, type).
type Mention struct {
	ID         string  `json:"id" db:"id"`
	ChapterID  string  `json:"chapter_id" db:"chapter_id"`
	EntityID   string  `json:"entity_id" db:"entity_id"`
	EntityType string  `json:"entity_type" db:"entity_type"`
	Name       string  `json:"name" db:"name"`
	ImagePath  *string `json:"image_path,omitempty" db:"image_path"`
}

// Annotation is a text-offset note anchor inside a chapter.
type Annotation struct {
	ID          string           `json:"id" db:"id"`
	ChapterID   string           `json:"chapter_id" db:"chapter_id"`
	StartOffset int              `json:"start_offset" db:"start_offset"`
	EndOffset   int              `json:"end_offset" db:"end_offset"`
	Color       string           `json:"color" db:"color"`
	Notes       []AnnotationNote `json:"notes"`
}

// AnnotationNote is one note attached to an annotation.
type AnnotationNote struct {
	ID           string    `json:"id" db:"id"`
	AnnotationID string    `json:"annotation_id" db:"annotation_id"`
	Text         string    `json:"text" db:"text"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// TextEntityLink anchors an entity reference to a text range.
type TextEntityLink struct {
	ID          string `json:"id" db:"id"`
	ChapterID   string `json:"chapter_id" db:"chapter_id"`
	EntityID    string `json:"entity_id" db:"entity_id"`
	EntityType  string `json:"entity_type" db:"entity_type"`
	StartOffset int    `json:"start_offset" db:"start_offset"`
	EndOffset   int    `json:"end_offset" db:"end_offset"`
}

// ChapterStats are the counters derived from chapter content.
type ChapterStats struct {
	Words      int `json:"words"`
	Chars      int `json:"chars"`
	Paragraphs int `json:"paragraphs"`
	Dialogues  int `json:"dialogues"`
}

// dialogueLeaders are the characters that open a dialogue paragraph.
var dialogueLeaders = []string{"—", "–", "-", "\"", "“", "«"}

// ComputeChapterStats derives word, character, paragraph and dialogue
// counts from chapter text. A paragraph is a non-empty block separated by
// blank lines; a dialogue is a paragraph opening with a dash or quote.
func ComputeChapterStats(content string) ChapterStats {
	stats := ChapterStats{
		Words: len(strings.Fields(content)),
		Chars: len([]rune(content)),
	}
	for _, block := range strings.Split(content, "\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		stats.Paragraphs++
		for _, leader := range dialogueLeaders {
			if strings.HasPrefix(block, leader) {
				stats.Dialogues++
				break
			}
		}
	}
	return stats
}
