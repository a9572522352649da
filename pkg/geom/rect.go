// Package geom provides the integer rectangle type used throughout layout
// and placement. Coordinates are top-down page units: Top < Bottom, and one
// unit corresponds to one pixel of occupancy granularity in the placement
// quality model.
package geom

// Rect is an axis-aligned rectangle in top-down page coordinates.
// The zero value is an empty rectangle at the origin.
type Rect struct {
	Left   int `json:"left" bson:"left"`
	Top    int `json:"top" bson:"top"`
	Right  int `json:"right" bson:"right"`
	Bottom int `json:"bottom" bson:"bottom"`
}

// Make creates a rectangle from its left/top corner and size.
func Make(left, top, width, height int) Rect {
	return Rect{Left: left, Top: top, Right: left + width, Bottom: top + height}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Area returns the area of the rectangle.
func (r Rect) Area() int { return r.Width() * r.Height() }

// IsEmpty returns true if the rectangle has no positive extent.
func (r Rect) IsEmpty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Move returns the rectangle translated by (dx, dy).
func (r Rect) Move(dx, dy int) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Resize returns a rectangle with the same left/top corner and the given size.
func (r Rect) Resize(width, height int) Rect {
	return Make(r.Left, r.Top, width, height)
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		Left:   min(r.Left, other.Left),
		Top:    min(r.Top, other.Top),
		Right:  max(r.Right, other.Right),
		Bottom: max(r.Bottom, other.Bottom),
	}
}

// Inset returns the rectangle shrunk by the margin on all sides.
func (r Rect) Inset(margin int) Rect {
	return Rect{Left: r.Left + margin, Top: r.Top + margin, Right: r.Right - margin, Bottom: r.Bottom - margin}
}

// Union returns the smallest rectangle containing all the given rectangles.
// Returns the zero rectangle when rects is empty.
func Union(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	u := rects[0]
	for _, r := range rects[1:] {
		u = u.Union(r)
	}
	return u
}
