// file: internal/database/search.go
// version: 1.2.0
// guid: 90c6e2d8-4f7a-41b5-8a3e-d25c09b1f764

package database

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

// SearchResult is one fuzzy match across a book's named things.
type SearchResult struct {
	EntityID   string `json:"entity_id"`
	EntityType string `json:"entity_type"`
	Name       string `json:"name"`
	Rank       int    `json:"rank"`
}

// searchSources maps an entity type to the table and label column the
// search sweeps.
var searchSources = []struct {
	entityType string
	query      string
}{
	{models.EntityTypeCharacter, "SELECT id, name FROM characters WHERE book_id = ?"},
	{models.EntityTypeFaction, "SELECT id, name FROM factions WHERE book_id = ?"},
	{models.EntityTypeRace, "SELECT id, name FROM races WHERE book_id = ?"},
	{models.EntityTypeItem, "SELECT id, name FROM items WHERE book_id = ?"},
	{models.EntityTypeRegion, "SELECT id, name FROM regions WHERE book_id = ?"},
	{models.EntityTypeNote, "SELECT id, title FROM notes WHERE book_id = ?"},
}

// SearchEntities fuzzy-matches query against every named entity and note
// of a book, case- and accent-insensitively, best matches first. An
// empty query returns no results.
func (s *Store) SearchEntities(bookID, query string) ([]SearchResult, error) {
	if query == "" {
		return []SearchResult{}, nil
	}

	results := []SearchResult{}
	err := s.safe("search_entities", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}

		for _, source := range searchSources {
			rows, err := db.Query(source.query, bookID)
			if err != nil {
				return fmt.Errorf("failed to query %s names: %w", source.entityType, err)
			}

			for rows.Next() {
				var id, name string
				if err := rows.Scan(&id, &name); err != nil {
					rows.Close()
					return fmt.Errorf("failed to scan %s name: %w", source.entityType, err)
				}
				rank := fuzzy.RankMatchNormalizedFold(query, name)
				if rank < 0 {
					continue
				}
				results = append(results, SearchResult{
					EntityID:   id,
					EntityType: source.entityType,
					Name:       name,
					Rank:       rank,
				})
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return err
			}
			rows.Close()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Rank < results[j].Rank })
	return results, nil
}
