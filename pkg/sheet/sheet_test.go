package sheet

import (
	"testing"

	"github.com/matzehuels/sheetpress/pkg/errors"
)

func TestUnmarshalSheetNormalizes(t *testing.T) {
	data := []byte(`{
		"title": "Reference",
		"blocks": [
			{"id": "intro", "text": "hello"},
			{"text": "world"}
		]
	}`)

	s, err := UnmarshalSheet(data)
	if err != nil {
		t.Fatalf("UnmarshalSheet: %v", err)
	}
	if s.Page != DefaultPage {
		t.Errorf("page = %+v, want DefaultPage", s.Page)
	}
	if s.Blocks[0].ID != "intro" {
		t.Errorf("explicit id = %q", s.Blocks[0].ID)
	}
	if s.Blocks[1].ID != "block-2" {
		t.Errorf("generated id = %q, want block-2", s.Blocks[1].ID)
	}
}

func TestSheetValidate(t *testing.T) {
	valid := Sheet{
		Page:   DefaultPage,
		Blocks: []Block{{ID: "a", Text: "x"}, {ID: "b", Text: "y"}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid sheet rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Sheet)
	}{
		{"zero page", func(s *Sheet) { s.Page = Page{} }},
		{"margins eat the page", func(s *Sheet) { s.Page = Page{Width: 100, Height: 100, Margin: 50} }},
		{"negative gutter", func(s *Sheet) { s.Page.Gutter = -1 }},
		{"no blocks", func(s *Sheet) { s.Blocks = nil }},
		{"empty block", func(s *Sheet) { s.Blocks[1].Text = "" }},
		{"duplicate ids", func(s *Sheet) { s.Blocks[1].ID = "a" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Sheet{
				Page:   valid.Page,
				Blocks: []Block{{ID: "a", Text: "x"}, {ID: "b", Text: "y"}},
			}
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Validate() = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestBlockContent(t *testing.T) {
	tests := []struct {
		block Block
		want  string
	}{
		{Block{Title: "Moves", Text: "run jump"}, "Moves run jump"},
		{Block{Text: "plain"}, "plain"},
		{Block{Title: "only"}, "only"},
	}
	for _, tt := range tests {
		if got := tt.block.Content(); got != tt.want {
			t.Errorf("Content(%+v) = %q, want %q", tt.block, got, tt.want)
		}
	}
}
