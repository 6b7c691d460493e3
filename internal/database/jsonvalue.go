// file: internal/database/jsonvalue.go
// version: 1.2.0
// guid: 1d7e9c4a-5f3b-4862-90ad-c2b6e8f1d379

package database

import (
	"database/sql"
	"encoding/json"
	"log"
)

// JSON column codec. Columns that hold JSON-encoded collections are read
// through parseJSONColumn, which never fails: NULL, empty and malformed
// payloads all yield the caller's fallback with a logged warning. Writes
// go through the marshal helpers below.

// parseJSONColumn decodes raw into T, returning fallback when raw is
// NULL, empty, or does not decode into T's shape.
func parseJSONColumn[T any](raw sql.NullString, column string, fallback T) T {
	if !raw.Valid || raw.String == "" {
		return fallback
	}
	var v T
	if err := json.Unmarshal([]byte(raw.String), &v); err != nil {
		log.Printf("warning: column %s holds malformed JSON, using fallback: %v", column, err)
		return fallback
	}
	return v
}

// marshalJSONList serializes a list-shaped field. An empty or nil slice
// serializes to "[]", never to NULL: readers at other layers distinguish
// "saved with zero items" from "never initialized" by the NULL check.
func marshalJSONList[T any](v []T) string {
	if len(v) == 0 {
		return "[]"
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("warning: failed to serialize JSON list, storing empty: %v", err)
		return "[]"
	}
	return string(data)
}

// marshalJSONMap serializes a keyed field, defaulting to "{}".
func marshalJSONMap[K comparable, V any](v map[K]V) string {
	if len(v) == 0 {
		return "{}"
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("warning: failed to serialize JSON map, storing empty: %v", err)
		return "{}"
	}
	return string(data)
}

// marshalJSONValue serializes an optional object-shaped field. Nil maps
// to a NULL column.
func marshalJSONValue(v any) *string {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("warning: failed to serialize JSON value, storing NULL: %v", err)
		return nil
	}
	s := string(data)
	return &s
}

// rawMessageColumn converts an optional raw JSON blob to its column
// value. Empty blobs map to NULL.
func rawMessageColumn(v json.RawMessage) *string {
	if len(v) == 0 {
		return nil
	}
	s := string(v)
	return &s
}

// rawMessageFromColumn reads an optional raw JSON blob back.
func rawMessageFromColumn(raw sql.NullString) json.RawMessage {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	return json.RawMessage(raw.String)
}
