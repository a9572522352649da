package sheet

import (
	"reflect"
	"testing"

	"github.com/matzehuels/sheetpress/pkg/config"
	"github.com/matzehuels/sheetpress/pkg/errors"
	"github.com/matzehuels/sheetpress/pkg/measure"
	"github.com/matzehuels/sheetpress/pkg/opt"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Metrics = measure.Metrics{CharWidth: 10, SpaceWidth: 10, LineHeight: 10}
	return cfg
}

func testSheet(blocks ...Block) Sheet {
	return Sheet{
		Page:   Page{Width: 420, Height: 400, Margin: 10},
		Blocks: blocks,
	}
}

func testProblem(t *testing.T, s Sheet, columns int) *ColumnsProblem {
	t.Helper()
	cfg := testConfig()
	p, err := NewColumnsProblem(s, measure.New(cfg.Metrics), cfg, columns)
	if err != nil {
		t.Fatalf("NewColumnsProblem: %v", err)
	}
	return p
}

func sixBlocks() Sheet {
	blocks := make([]Block, 6)
	for i := range blocks {
		blocks[i] = Block{Text: "text"}
	}
	s := testSheet(blocks...)
	s.normalize()
	return s
}

func TestNewColumnsProblemRejects(t *testing.T) {
	cfg := testConfig()
	s := sixBlocks()

	if _, err := NewColumnsProblem(s, measure.New(cfg.Metrics), cfg, 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("zero columns: err = %v", err)
	}
	if _, err := NewColumnsProblem(s, measure.New(cfg.Metrics), cfg, 7); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("more columns than blocks: err = %v", err)
	}
}

func TestAllocate(t *testing.T) {
	p := testProblem(t, sixBlocks(), 3)

	tests := []struct {
		name   string
		shares []int
		want   []int
	}{
		{"all zero means even", []int{0, 0, 0}, []int{2, 2, 2}},
		{"equal shares", []int{4, 4, 4}, []int{2, 2, 2}},
		{"weighted", []int{2, 1, 1}, []int{3, 2, 1}},
		{"single column takes all", []int{1, 0, 0}, []int{6, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Allocate(tt.shares)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Allocate(%v) = %v, want %v", tt.shares, got, tt.want)
			}
			sum := 0
			for _, c := range got {
				sum += c
			}
			if sum != 6 {
				t.Errorf("allocation sums to %d, want 6", sum)
			}
		})
	}
}

func TestValidityError(t *testing.T) {
	p := testProblem(t, sixBlocks(), 2)
	// Content width is 400.
	low := p.Stage2Params(nil).Low

	if err := p.ValidityError(opt.NewParams([]int{200, 200}, low, 400)); err != 0 {
		t.Errorf("exact fit: err = %v, want 0", err)
	}
	if err := p.ValidityError(opt.NewParams([]int{300, 200}, low, 400)); err != 0.25 {
		t.Errorf("overflow by 100/400: err = %v, want 0.25", err)
	}
	if err := p.ValidityError(opt.NewParams([]int{low - 10, 200}, low, 400)); err != 10.0/400 {
		t.Errorf("under minimum: err = %v, want %v", err, 10.0/400)
	}
}

func TestValidityErrorMonotonic(t *testing.T) {
	p := testProblem(t, sixBlocks(), 2)
	low := p.Stage2Params(nil).Low

	last := -1.0
	for _, w := range []int{400, 450, 500, 600} {
		err := p.ValidityError(opt.NewParams([]int{w, 200}, low, 600))
		if err <= last {
			t.Errorf("ValidityError at width %d = %v, not increasing past %v", w, err, last)
		}
		last = err
	}
}

func TestPlaceBuildsLayout(t *testing.T) {
	s := testSheet(
		Block{ID: "a", Text: "alpha beta gamma"},
		Block{ID: "b", Text: "delta"},
		Block{ID: "c", Text: "epsilon zeta"},
	)
	p := testProblem(t, s, 2)

	root, layout := p.Place([]int{2, 1}, []int{200, 200})
	if root == nil {
		t.Fatal("no placement tree")
	}
	if err := layout.Validate(); err != nil {
		t.Fatalf("layout invalid: %v", err)
	}
	if !reflect.DeepEqual(layout.Counts, []int{2, 1}) {
		t.Errorf("counts = %v", layout.Counts)
	}
	if len(layout.Boxes) != 3 {
		t.Fatalf("boxes = %d, want 3", len(layout.Boxes))
	}
	if layout.Boxes[0].Column != 1 || layout.Boxes[1].Column != 1 || layout.Boxes[2].Column != 2 {
		t.Errorf("column assignment: %+v", layout.Boxes)
	}
	if !layout.Placeable() {
		t.Error("all blocks fit, layout should be placeable")
	}
	if layout.Boxes[1].Rect.Top <= layout.Boxes[0].Rect.Bottom-1 {
		t.Errorf("second box (%v) should stack below the first (%v)",
			layout.Boxes[1].Rect, layout.Boxes[0].Rect)
	}
}

func TestScoreUnplaceableDominates(t *testing.T) {
	s := Sheet{
		Page:   Page{Width: 120, Height: 40, Margin: 10},
		Blocks: []Block{{ID: "a", Text: "far too much text to ever fit in such a tiny page body"}},
	}
	p := testProblem(t, s, 1)

	score := p.Score([]int{1}, []int{100})
	if score < p.cfg.Penalties.Validity {
		t.Errorf("score = %v, unplaceable content must dominate the validity scale", score)
	}
}

func TestDefaultLayoutFallback(t *testing.T) {
	p := testProblem(t, sixBlocks(), 3)

	root, layout := p.DefaultLayout()
	if root == nil {
		t.Fatal("no placement tree")
	}
	if !layout.Fallback {
		t.Error("default layout must be marked as fallback")
	}
	if !reflect.DeepEqual(layout.Counts, []int{2, 2, 2}) {
		t.Errorf("counts = %v, want even split", layout.Counts)
	}
	if err := layout.Validate(); err != nil {
		t.Errorf("layout invalid: %v", err)
	}
}

func TestOptimizeEndToEnd(t *testing.T) {
	s := testSheet(
		Block{ID: "a", Text: "one two three four five six seven"},
		Block{ID: "b", Text: "small"},
		Block{ID: "c", Text: "medium sized block"},
		Block{ID: "d", Text: "another medium block"},
	)
	p := testProblem(t, s, 2)

	run := func() (*opt.Result, Layout) {
		res, err := opt.New(p).Run(p.InitialParams())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if res.Stage2.Values == nil {
			t.Fatal("no feasible widths found for a sheet that plainly fits")
		}
		_, layout := p.Place(res.Stage1.Values, res.Stage2.Values)
		return res, layout
	}

	res, layout := run()
	if res.Score >= config.Default().Penalties.Validity {
		t.Errorf("score = %v, expected a feasible layout below the gate penalty", res.Score)
	}
	if err := layout.Validate(); err != nil {
		t.Fatalf("layout invalid: %v", err)
	}
	if !layout.Placeable() {
		t.Error("optimized layout should place every block")
	}

	res2, layout2 := run()
	if res.Score != res2.Score ||
		!reflect.DeepEqual(layout.Counts, layout2.Counts) ||
		!reflect.DeepEqual(layout.Widths, layout2.Widths) {
		t.Error("two identical optimizations disagree")
	}
}
