package placed

import (
	"slices"

	"github.com/matzehuels/sheetpress/pkg/geom"
)

// NewGroup creates a group node owning the given children. Nil children are
// dropped; a group with no remaining children is nil.
//
// The group's actual rectangle is the union of the children's actual
// rectangles, its break counts are sums over children, and its unused width
// is either the raw deficit (when the children overflow the requested
// width) or the banded scan of [GroupUnusedWidth]. Children are notified of
// the final size via ParentSized.
func NewGroup(children []*Node, requested geom.Rect) *Node {
	kids := make([]*Node, 0, len(children))
	for _, c := range children {
		if c != nil {
			kids = append(kids, c)
		}
	}
	if len(kids) == 0 {
		return nil
	}

	actuals := make([]geom.Rect, len(kids))
	for i, c := range kids {
		actuals[i] = c.Actual
	}

	n := &Node{
		Requested: requested,
		Actual:    geom.Union(actuals),
		Children:  kids,
	}
	for _, c := range kids {
		n.GoodBreaks += c.GoodBreaks
		n.BadBreaks += c.BadBreaks
	}

	// If there is not enough room, that is all that matters.
	if requested.Width() < n.Actual.Width() {
		n.UnusedWidth = requested.Width() - n.Actual.Width()
	} else {
		n.UnusedWidth = GroupUnusedWidth(kids, requested)
	}

	for _, c := range kids {
		c.ParentSized(requested)
	}
	return n
}

// GroupUnusedWidth measures the horizontal slack of a group the way a
// reader sees it: children are sorted by the tops of their requested
// rectangles and scanned downward in bands of vertically overlapping
// items. Each band's slack is the width left uncovered by the band
// members' footprints, and the tightest band dominates.
func GroupUnusedWidth(children []*Node, bounds geom.Rect) int {
	items := slices.Clone(children)
	slices.SortStableFunc(items, func(a, b *Node) int {
		if a.Requested.Top != b.Requested.Top {
			return a.Requested.Top - b.Requested.Top
		}
		return a.Requested.Left - b.Requested.Left
	})

	unused := bounds.Width()

	idx := 0
	for idx < len(items) {
		// Accumulate the band of items overlapping the current one.
		start := idx
		lower := items[idx].Requested.Bottom
		idx++
		for idx < len(items) && items[idx].Requested.Top < lower {
			idx++
		}
		unused = min(unused, unusedHorizontalStrip(items[start:idx], bounds))
	}

	return unused
}

// unusedHorizontalStrip counts the columns of bounds not covered by any
// item's footprint. A footprint is the item's requested rectangle with half
// its unused width trimmed from each side: items are assumed centered in
// their own leftover space.
func unusedHorizontalStrip(band []*Node, bounds geom.Rect) int {
	width := bounds.Width()
	if width <= 0 {
		return 0
	}

	used := make([]bool, width)
	for _, c := range band {
		d := c.UnusedWidth
		left := c.Requested.Left + d/2 - bounds.Left
		right := c.Requested.Right - d + d/2 - bounds.Left
		for i := max(left, 0); i < min(right, width); i++ {
			used[i] = true
		}
	}

	unused := 0
	for _, u := range used {
		if !u {
			unused++
		}
	}
	return unused
}
