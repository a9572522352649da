package sheet

import (
	"path/filepath"
	"testing"

	"github.com/matzehuels/sheetpress/pkg/errors"
	"github.com/matzehuels/sheetpress/pkg/geom"
)

func sampleLayout() Layout {
	return Layout{
		Title:  "Reference",
		Page:   DefaultPage,
		Counts: []int{2, 1},
		Widths: []int{300, 400},
		Boxes: []Box{
			{BlockID: "a", Column: 1, Rect: geom.Make(36, 36, 300, 100)},
			{BlockID: "b", Column: 1, Rect: geom.Make(36, 148, 300, 60), GoodBreaks: 2},
			{BlockID: "c", Column: 2, Rect: geom.Make(348, 36, 400, 80)},
		},
		Score: 123.5,
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	l := sampleLayout()

	if err := l.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}

	if got.Score != l.Score || got.Columns() != 2 || len(got.Boxes) != 3 {
		t.Errorf("round trip lost data: %+v", got)
	}
	if got.Boxes[1].Rect != l.Boxes[1].Rect || got.Boxes[1].GoodBreaks != 2 {
		t.Errorf("box round trip: %+v", got.Boxes[1])
	}
}

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Layout)
	}{
		{"no columns", func(l *Layout) { l.Widths = nil; l.Counts = nil }},
		{"counts mismatch", func(l *Layout) { l.Counts = []int{3} }},
		{"negative count", func(l *Layout) { l.Counts = []int{-1, 4} }},
		{"zero width", func(l *Layout) { l.Widths[0] = 0 }},
		{"box count mismatch", func(l *Layout) { l.Boxes = l.Boxes[:2] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := sampleLayout()
			tt.mutate(&l)
			if err := l.Validate(); !errors.Is(err, errors.ErrCodeInvalidLayout) {
				t.Errorf("Validate() = %v, want INVALID_LAYOUT", err)
			}
		})
	}
}

func TestLayoutPlaceable(t *testing.T) {
	l := sampleLayout()
	if !l.Placeable() {
		t.Error("sample layout should be placeable")
	}
	l.Boxes[2].Unplaceable = true
	if l.Placeable() {
		t.Error("layout with an unplaceable box should not be placeable")
	}
}
