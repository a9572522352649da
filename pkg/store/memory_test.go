package store

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/sheetpress/pkg/errors"
	"github.com/matzehuels/sheetpress/pkg/sheet"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, errors.ErrCodeRunNotFound) {
		t.Errorf("Get(missing) = %v, want RUN_NOT_FOUND", err)
	}

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		run := Run{
			ID:        id,
			SheetHash: "h" + id,
			Layout:    sheet.Layout{Widths: []int{100}, Counts: []int{0}},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.Put(ctx, run); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	got, err := s.Get(ctx, "b")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SheetHash != "hb" {
		t.Errorf("run = %+v", got)
	}

	runs, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Errorf("List(2) = %+v, want newest first", runs)
	}

	// Replacing keeps a single entry per ID.
	if err := s.Put(ctx, Run{ID: "a", SheetHash: "updated", CreatedAt: base}); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	all, _ := s.List(ctx, 0)
	if len(all) != 3 {
		t.Errorf("store holds %d runs, want 3", len(all))
	}
	got, _ = s.Get(ctx, "a")
	if got.SheetHash != "updated" {
		t.Errorf("replaced run = %+v", got)
	}
}
