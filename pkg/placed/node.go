package placed

import (
	"fmt"

	"github.com/matzehuels/sheetpress/pkg/geom"
)

// DefaultUnplaceablePenalty is the base badness for content that could not
// be placed at all. It must dominate validity penalties and any realistic
// score; pkg/config validates the ordering and can override the value.
const DefaultUnplaceablePenalty = 1e9

// Node is one placed piece of content. Leaves are produced by a renderer;
// groups are built with [NewGroup] and own their children exclusively.
type Node struct {
	// Requested is the rectangle the content was offered.
	Requested geom.Rect

	// Actual is the rectangle the content consumed.
	Actual geom.Rect

	// GoodBreaks counts line breaks at natural wrap points.
	GoodBreaks int

	// BadBreaks counts forced breaks (mid-word splits and similar).
	BadBreaks int

	// UnusedWidth is the signed horizontal fit: positive values are slack,
	// negative values are overflow past the requested width.
	UnusedWidth int

	// InternalVariance is the spread of unused space across internal
	// columns or cells, set by renderers for table-like content.
	InternalVariance int

	// Children makes this node a group when non-empty.
	Children []*Node

	// SizedHook, when set, is invoked by ParentSized after the enclosing
	// group finalizes its size. Renderers use it for metrics that depend
	// on the parent's final bounds (e.g. stretch allowances for images).
	SizedHook func(n *Node, bounds geom.Rect)

	// unplaceablePenalty > 0 marks the unplaceable sentinel.
	unplaceablePenalty float64
}

// NewLeaf creates a leaf node for content offered requested and measured at
// actual. UnusedWidth starts as the difference in widths; renderers adjust
// the break and variance fields afterwards.
func NewLeaf(requested, actual geom.Rect) *Node {
	return &Node{
		Requested:   requested,
		Actual:      actual,
		UnusedWidth: requested.Width() - actual.Width(),
	}
}

// NewUnplaceable creates the sentinel node for content that could not be
// placed inside requested at all. The penalty is the dominating badness
// base (normally [DefaultUnplaceablePenalty]); larger holes score worse
// because the requested area is subtracted from it.
func NewUnplaceable(requested geom.Rect, penalty float64) *Node {
	return &Node{
		Requested:          requested,
		Actual:             requested,
		unplaceablePenalty: penalty,
	}
}

// Unplaceable reports whether the node is the could-not-place sentinel.
func (n *Node) Unplaceable() bool { return n.unplaceablePenalty > 0 }

// IsGroup reports whether the node owns children.
func (n *Node) IsGroup() bool { return len(n.Children) > 0 }

// Move translates the node and its subtree by (dx, dy). Both the requested
// and actual rectangles move, so fit measurements are unaffected.
func (n *Node) Move(dx, dy int) {
	n.Requested = n.Requested.Move(dx, dy)
	n.Actual = n.Actual.Move(dx, dy)
	for _, c := range n.Children {
		c.Move(dx, dy)
	}
}

// ParentSized notifies the node that its parent's size is final. Groups
// propagate top-down: with a single child the outer bounds pass straight
// through (the child should fill what the group fills), with several
// children each child sees the group's own requested bounds.
func (n *Node) ParentSized(bounds geom.Rect) {
	if n.SizedHook != nil {
		n.SizedHook(n, bounds)
	}
	for _, c := range n.Children {
		if len(n.Children) > 1 {
			c.ParentSized(n.Requested)
		} else {
			c.ParentSized(bounds)
		}
	}
}

// ErrorFromBreaks is the weighted badness of line and word breaks. Bad
// breaks normally carry a much heavier weight; good breaks may carry a
// small positive weight since no break at all is preferable when it fits.
func (n *Node) ErrorFromBreaks(badWeight, goodWeight float64) float64 {
	return badWeight*float64(n.BadBreaks) + goodWeight*float64(n.GoodBreaks)
}

// ErrorFromSize is the weighted badness of the horizontal fit. Overflow is
// charged at badWeight per unit, slack at goodWeight per unit. For the
// unplaceable sentinel it returns the dominating penalty minus the offered
// area: still worse than any real layout, but offering a bigger box scores
// slightly better, which steers the search toward boxes large enough to fit.
func (n *Node) ErrorFromSize(badWeight, goodWeight float64) float64 {
	if n.Unplaceable() {
		return n.unplaceablePenalty - float64(n.Actual.Area())
	}
	if n.UnusedWidth < 0 {
		return float64(-n.UnusedWidth) * badWeight
	}
	return float64(n.UnusedWidth) * goodWeight
}

// ErrorFromVariance is the weighted badness of uneven internal slack.
func (n *Node) ErrorFromVariance(weight float64) float64 {
	return weight * float64(n.InternalVariance)
}

func (n *Node) String() string {
	if n.IsGroup() {
		return fmt.Sprintf("Group(%dx%d: %d children)", n.Actual.Width(), n.Actual.Height(), len(n.Children))
	}
	if n.Unplaceable() {
		return fmt.Sprintf("Unplaceable(%dx%d)", n.Actual.Width(), n.Actual.Height())
	}
	return fmt.Sprintf("Leaf(%dx%d)", n.Actual.Width(), n.Actual.Height())
}
