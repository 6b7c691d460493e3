// file: internal/database/cleanup_test.go
// version: 1.1.0
// guid: 8a2d6f4b-1e93-4c70-b5a8-0d7e3c9f6152

package database

import (
	"encoding/json"
	"testing"
)

func TestFilterArrayElements(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`"target"`),
		json.RawMessage(`"other"`),
		json.RawMessage(`{"id":"target","name":"Victim"}`),
		json.RawMessage(`{"id":"keep"}`),
		json.RawMessage(`{"faction_id":"target"}`),
		json.RawMessage(`42`),
	}

	kept := filterArrayElements(items, "id", "target")
	// The bare string and the {"id": ...} object go; the faction_id object
	// survives because the keyed field is "id" here, and the number is
	// left untouched.
	if len(kept) != 4 {
		t.Fatalf("kept %d elements, want 4: %s", len(kept), kept)
	}

	kept = filterArrayElements(items, "faction_id", "target")
	if len(kept) != 4 {
		t.Fatalf("faction_id filter kept %d elements, want 4: %s", len(kept), kept)
	}
	for _, item := range kept {
		if string(item) == `{"faction_id":"target"}` {
			t.Error("faction_id element not filtered")
		}
	}
}

func TestPruneAtPathWildcard(t *testing.T) {
	payload := `[
		{"id":"era1","events":[
			{"id":"ev1","charactersInvolved":["target","other"]},
			{"id":"ev2","charactersInvolved":["other"]}
		]},
		{"id":"era2","events":[
			{"id":"ev3","charactersInvolved":["target"]}
		]}
	]`
	var doc any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		t.Fatal(err)
	}

	changed := pruneAtPath(doc, []string{"*", "events", "*", "charactersInvolved"}, "target")
	if !changed {
		t.Fatal("prune reported no change")
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var eras []struct {
		Events []struct {
			CharactersInvolved []string `json:"charactersInvolved"`
		} `json:"events"`
	}
	if err := json.Unmarshal(encoded, &eras); err != nil {
		t.Fatal(err)
	}
	if got := eras[0].Events[0].CharactersInvolved; len(got) != 1 || got[0] != "other" {
		t.Errorf("era1/ev1 = %v", got)
	}
	if got := eras[1].Events[0].CharactersInvolved; len(got) != 0 {
		t.Errorf("era2/ev3 = %v", got)
	}
}

func TestPruneAtPathShapeMismatch(t *testing.T) {
	var doc any
	if err := json.Unmarshal([]byte(`{"timeline":"not an array"}`), &doc); err != nil {
		t.Fatal(err)
	}
	if pruneAtPath(doc, []string{"timeline", "*", "x"}, "target") {
		t.Error("shape mismatch must be a no-op, not a change")
	}
	if pruneAtPath(doc, []string{"missing"}, "target") {
		t.Error("missing field must be a no-op")
	}
}

func TestClearHolderInTree(t *testing.T) {
	payload := `[
		{"id":"root","title":"Grandmaster","holder_id":"target","children":[
			{"id":"a","title":"Knight","holder_id":"other"},
			{"id":"b","title":"Squire","holder_id":"target"}
		]}
	]`
	var doc any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		t.Fatal(err)
	}

	if !clearHolderInTree(doc, "children", "holder_id", "target") {
		t.Fatal("no change reported")
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var tree []struct {
		HolderID string `json:"holder_id"`
		Children []struct {
			ID       string `json:"id"`
			HolderID string `json:"holder_id"`
		} `json:"children"`
	}
	if err := json.Unmarshal(encoded, &tree); err != nil {
		t.Fatal(err)
	}
	if tree[0].HolderID != "" {
		t.Error("root seat not vacated")
	}
	for _, child := range tree[0].Children {
		switch child.ID {
		case "a":
			if child.HolderID != "other" {
				t.Error("unrelated seat cleared")
			}
		case "b":
			if child.HolderID != "" {
				t.Error("nested seat not vacated")
			}
		}
	}
}
