package placed

import (
	"testing"

	"github.com/matzehuels/sheetpress/pkg/geom"
)

// fitted builds a leaf whose requested rectangle is set explicitly and
// whose unused width is forced, mirroring how a renderer reports fit.
func fitted(r geom.Rect, unused int) *Node {
	n := NewLeaf(r, r)
	n.UnusedWidth = unused
	return n
}

func TestGroupUnusedWidth(t *testing.T) {
	bounds := geom.Rect{Left: 100, Top: 100, Right: 200, Bottom: 200}

	a := fitted(geom.Rect{Left: 130, Top: 100, Right: 170, Bottom: 200}, 17)
	b := fitted(geom.Rect{Left: 180, Top: 100, Right: 190, Bottom: 200}, 2)
	c := fitted(geom.Rect{Left: 100, Top: 100, Right: 190, Bottom: 200}, 2)

	tests := []struct {
		name  string
		group []*Node
		want  int
	}{
		{name: "single centered child", group: []*Node{a}, want: 30 + 30 + 17},
		{name: "two children with gaps", group: []*Node{a, b}, want: 30 + 10 + 10 + 17 + 2},
		{name: "nearly full child", group: []*Node{c}, want: 10 + 2},
		{name: "covered by widest", group: []*Node{a, c}, want: 10 + 2},
		{name: "all three", group: []*Node{a, b, c}, want: 10 + 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GroupUnusedWidth(tt.group, bounds); got != tt.want {
				t.Errorf("GroupUnusedWidth = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGroupUnusedWidthTakesTightestBand(t *testing.T) {
	bounds := geom.Make(0, 0, 100, 100)

	// Upper band leaves 60 uncovered, lower band only 10.
	upper := fitted(geom.Make(0, 0, 40, 40), 0)
	lower := fitted(geom.Make(0, 50, 90, 40), 0)

	if got := GroupUnusedWidth([]*Node{upper, lower}, bounds); got != 10 {
		t.Errorf("GroupUnusedWidth = %d, want 10 (tightest band)", got)
	}
}

func TestNewGroupExactFit(t *testing.T) {
	// Two side-by-side children with zero unused width filling the bounds
	// exactly: the group has no unused width either.
	left := fitted(geom.Make(0, 0, 50, 100), 0)
	right := fitted(geom.Make(50, 0, 50, 100), 0)

	g := NewGroup([]*Node{left, right}, geom.Make(0, 0, 100, 100))
	if g.UnusedWidth != 0 {
		t.Errorf("UnusedWidth = %d, want 0", g.UnusedWidth)
	}
	if g.Actual != geom.Make(0, 0, 100, 100) {
		t.Errorf("Actual = %+v", g.Actual)
	}
}

func TestNewGroupCenteredSlack(t *testing.T) {
	// One child occupying 40 of a 100-wide bounds: the group's unused
	// width is the bounds width minus the occupied span.
	child := NewLeaf(geom.Make(20, 0, 60, 100), geom.Make(20, 0, 40, 100))

	g := NewGroup([]*Node{child}, geom.Make(0, 0, 100, 100))
	if g.UnusedWidth != 60 {
		t.Errorf("UnusedWidth = %d, want 60", g.UnusedWidth)
	}
}

func TestNewGroupOverflow(t *testing.T) {
	// Children wider than the requested bounds: unused width is the raw
	// (negative) deficit and the banded scan is skipped.
	wide := fitted(geom.Make(0, 0, 150, 50), 0)
	wide.Actual = geom.Make(0, 0, 150, 50)

	g := NewGroup([]*Node{wide}, geom.Make(0, 0, 100, 50))
	if g.UnusedWidth != -50 {
		t.Errorf("UnusedWidth = %d, want -50", g.UnusedWidth)
	}
}

func TestNewGroupSumsBreaks(t *testing.T) {
	a := fitted(geom.Make(0, 0, 50, 20), 0)
	a.GoodBreaks, a.BadBreaks = 2, 1
	b := fitted(geom.Make(0, 20, 50, 20), 0)
	b.GoodBreaks, b.BadBreaks = 1, 3

	g := NewGroup([]*Node{a, b}, geom.Make(0, 0, 50, 40))
	if g.GoodBreaks != 3 || g.BadBreaks != 4 {
		t.Errorf("breaks = (%d, %d), want (3, 4)", g.GoodBreaks, g.BadBreaks)
	}
}

func TestNewGroupDropsNilChildren(t *testing.T) {
	a := fitted(geom.Make(0, 0, 50, 20), 0)

	g := NewGroup([]*Node{nil, a, nil}, geom.Make(0, 0, 50, 20))
	if len(g.Children) != 1 {
		t.Errorf("children = %d, want 1", len(g.Children))
	}

	if NewGroup([]*Node{nil}, geom.Make(0, 0, 50, 20)) != nil {
		t.Error("group with no children should be nil")
	}
}
