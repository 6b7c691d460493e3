// file: internal/database/plotarcs_test.go
// version: 1.1.0
// guid: 7c0e5d9a-4b81-4f26-a3d7-90e2c6f1b854

package database

import (
	"testing"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

func TestPlotArcLifecycle(t *testing.T) {
	store := setupTestStore(t)
	book, err := store.CreateBook("Book", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	arc, err := store.CreatePlotArc(book.ID, "The fall of the Order")
	if err != nil {
		t.Fatalf("CreatePlotArc failed: %v", err)
	}
	if arc.Status != "planned" {
		t.Errorf("default status = %q, want planned", arc.Status)
	}
	if arc.OrderIndex != 0 {
		t.Errorf("first arc order_index = %d", arc.OrderIndex)
	}

	status := "active"
	color := "#7b2cbf"
	if err := store.UpdatePlotArc(arc.ID, models.PlotArcPatch{Status: &status, Color: &color}); err != nil {
		t.Fatal(err)
	}

	arcs, err := store.GetPlotArcsByBookID(book.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(arcs) != 1 {
		t.Fatalf("got %d arcs", len(arcs))
	}
	if arcs[0].Status != "active" {
		t.Errorf("status = %q", arcs[0].Status)
	}
	if arcs[0].Name != "The fall of the Order" {
		t.Error("name reset by partial update")
	}
	if arcs[0].Color == nil || *arcs[0].Color != color {
		t.Errorf("color = %v", arcs[0].Color)
	}

	if err := store.DeletePlotArc(arc.ID); err != nil {
		t.Fatal(err)
	}
	if err := store.DeletePlotArc(arc.ID); err != ErrNotFound {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestReorderPlotArcs(t *testing.T) {
	store := setupTestStore(t)
	book, err := store.CreateBook("Book", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, name := range []string{"Setup", "Confrontation", "Resolution"} {
		arc, err := store.CreatePlotArc(book.ID, name)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, arc.ID)
	}

	want := []string{ids[2], ids[0], ids[1]}
	if err := store.ReorderPlotArcs(book.ID, want); err != nil {
		t.Fatalf("ReorderPlotArcs failed: %v", err)
	}

	arcs, err := store.GetPlotArcsByBookID(book.ID)
	if err != nil {
		t.Fatal(err)
	}
	for i, arc := range arcs {
		if arc.ID != want[i] {
			t.Errorf("position %d holds %s, want %s", i, arc.ID, want[i])
		}
	}
}
