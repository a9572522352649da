// Package sheet holds the document content model, the layout artifact and
// the concrete column-layout optimization problem built on pkg/opt.
package sheet

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/sheetpress/pkg/errors"
	"github.com/matzehuels/sheetpress/pkg/geom"
	"github.com/matzehuels/sheetpress/pkg/placed"
)

// Page is the fixed target geometry, in integer page units. Margin is
// applied on all four sides; Gutter separates columns and stacked boxes.
type Page struct {
	Width  int `json:"width" bson:"width"`
	Height int `json:"height" bson:"height"`
	Margin int `json:"margin,omitempty" bson:"margin,omitempty"`
	Gutter int `json:"gutter,omitempty" bson:"gutter,omitempty"`
}

// DefaultPage is an A4-ish portrait page at 100 units per inch.
var DefaultPage = Page{Width: 830, Height: 1170, Margin: 36, Gutter: 12}

// Content returns the usable area inside the margins.
func (p Page) Content() geom.Rect {
	return geom.Make(p.Margin, p.Margin, p.Width-2*p.Margin, p.Height-2*p.Margin)
}

// Block is one box of sheet content: a title line and body text. Markup is
// already resolved; Text is the plain wrapped content.
type Block struct {
	ID    string `json:"id,omitempty" bson:"id,omitempty"`
	Title string `json:"title,omitempty" bson:"title,omitempty"`
	Text  string `json:"text" bson:"text"`
}

// Content returns the text the measurer wraps: title and body joined so a
// block flows as one paragraph run.
func (b Block) Content() string {
	if b.Title == "" {
		return b.Text
	}
	if b.Text == "" {
		return b.Title
	}
	return b.Title + " " + b.Text
}

// Sheet is a full document: the page it targets and its content blocks, in
// reading order.
type Sheet struct {
	Title  string  `json:"title,omitempty" bson:"title,omitempty"`
	Page   Page    `json:"page" bson:"page"`
	Blocks []Block `json:"blocks" bson:"blocks"`
}

// Renderer measures content into an offered rectangle, reporting the result
// as a placement node. pkg/measure provides the standard implementation.
type Renderer interface {
	Text(text string, bounds geom.Rect) *placed.Node
}

// UnmarshalSheet deserializes and normalizes a sheet: a zero page becomes
// DefaultPage and blocks without an ID get a positional one.
func UnmarshalSheet(data []byte) (Sheet, error) {
	var s Sheet
	if err := json.Unmarshal(data, &s); err != nil {
		return Sheet{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse sheet")
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return Sheet{}, err
	}
	return s, nil
}

// ReadSheetFile loads a sheet from a JSON file.
func ReadSheetFile(path string) (Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sheet{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read sheet %s", path)
	}
	return UnmarshalSheet(data)
}

// Marshal serializes the sheet as indented JSON.
func (s Sheet) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func (s *Sheet) normalize() {
	if s.Page == (Page{}) {
		s.Page = DefaultPage
	}
	for i := range s.Blocks {
		if s.Blocks[i].ID == "" {
			s.Blocks[i].ID = fmt.Sprintf("block-%d", i+1)
		}
	}
}

// Validate checks the structural invariants of the sheet.
func (s Sheet) Validate() error {
	if s.Page.Width <= 0 || s.Page.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "page size %dx%d must be positive", s.Page.Width, s.Page.Height)
	}
	if s.Page.Margin < 0 || s.Page.Gutter < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "page margin and gutter must not be negative")
	}
	if s.Page.Content().IsEmpty() {
		return errors.New(errors.ErrCodeInvalidInput, "margins leave no content area on a %dx%d page", s.Page.Width, s.Page.Height)
	}
	if len(s.Blocks) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "sheet has no blocks")
	}

	seen := make(map[string]bool, len(s.Blocks))
	for i, b := range s.Blocks {
		if b.Content() == "" {
			return errors.New(errors.ErrCodeInvalidInput, "block %d (%s) is empty", i+1, b.ID)
		}
		if seen[b.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate block id %q", b.ID)
		}
		seen[b.ID] = true
	}
	return nil
}
