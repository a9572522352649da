package sheet

import (
	"encoding/json"
	"os"
	"time"

	"github.com/matzehuels/sheetpress/pkg/errors"
	"github.com/matzehuels/sheetpress/pkg/geom"
)

// Layout is the result artifact of a layout run: the chosen column
// structure, the placed boxes and the quality score. It is the canonical
// serialization format used by the CLI, the API and the run store.
type Layout struct {
	RunID     string    `json:"run_id,omitempty" bson:"run_id,omitempty"`
	Title     string    `json:"title,omitempty" bson:"title,omitempty"`
	Page      Page      `json:"page" bson:"page"`
	Counts    []int     `json:"counts" bson:"counts"`
	Widths    []int     `json:"widths" bson:"widths"`
	Boxes     []Box     `json:"boxes" bson:"boxes"`
	Score     float64   `json:"score" bson:"score"`
	Fallback  bool      `json:"fallback,omitempty" bson:"fallback,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

// Box is one placed block.
type Box struct {
	BlockID     string    `json:"block_id" bson:"block_id"`
	Column      int       `json:"column" bson:"column"`
	Rect        geom.Rect `json:"rect" bson:"rect"`
	GoodBreaks  int       `json:"good_breaks,omitempty" bson:"good_breaks,omitempty"`
	BadBreaks   int       `json:"bad_breaks,omitempty" bson:"bad_breaks,omitempty"`
	Unplaceable bool      `json:"unplaceable,omitempty" bson:"unplaceable,omitempty"`
}

// Columns returns the number of columns in the layout.
func (l Layout) Columns() int { return len(l.Widths) }

// Placeable reports whether every box could be placed.
func (l Layout) Placeable() bool {
	for _, b := range l.Boxes {
		if b.Unplaceable {
			return false
		}
	}
	return true
}

// Marshal serializes the layout as indented JSON.
func (l Layout) Marshal() ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes and validates a layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidLayout, err, "parse layout")
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// ReadLayoutFile loads a layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidLayout, err, "read layout %s", path)
	}
	return UnmarshalLayout(data)
}

// WriteFile writes the layout as indented JSON.
func (l Layout) WriteFile(path string) error {
	data, err := l.Marshal()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal layout")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write layout %s", path)
	}
	return nil
}

// Validate checks the structural invariants of the layout.
func (l Layout) Validate() error {
	if len(l.Widths) == 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "layout has no columns")
	}
	if len(l.Counts) != len(l.Widths) {
		return errors.New(errors.ErrCodeInvalidLayout,
			"counts (%d) and widths (%d) disagree on the column count", len(l.Counts), len(l.Widths))
	}
	total := 0
	for i, c := range l.Counts {
		if c < 0 {
			return errors.New(errors.ErrCodeInvalidLayout, "column %d has negative block count", i+1)
		}
		if l.Widths[i] <= 0 {
			return errors.New(errors.ErrCodeInvalidLayout, "column %d has non-positive width", i+1)
		}
		total += c
	}
	if total != len(l.Boxes) {
		return errors.New(errors.ErrCodeInvalidLayout,
			"counts sum to %d but the layout has %d boxes", total, len(l.Boxes))
	}
	return nil
}
