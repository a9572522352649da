// Package measure turns text into placement nodes using fixed font metrics.
//
// The measurer is a pure function of its inputs: the same text, metrics and
// bounds always produce the same node. Layout results and cache entries both
// rely on that.
package measure

import (
	"strings"

	"github.com/matzehuels/sheetpress/pkg/geom"
	"github.com/matzehuels/sheetpress/pkg/placed"
)

// Metrics are the fixed per-glyph dimensions used for wrapping, in the same
// integer pixel units as the page geometry.
type Metrics struct {
	CharWidth  int `toml:"char_width" json:"char_width"`
	SpaceWidth int `toml:"space_width" json:"space_width"`
	LineHeight int `toml:"line_height" json:"line_height"`
}

// DefaultMetrics approximates a 12pt monospace face.
var DefaultMetrics = Metrics{CharWidth: 7, SpaceWidth: 4, LineHeight: 16}

func (m Metrics) withDefaults() Metrics {
	if m.CharWidth <= 0 {
		m.CharWidth = DefaultMetrics.CharWidth
	}
	if m.SpaceWidth <= 0 {
		m.SpaceWidth = DefaultMetrics.SpaceWidth
	}
	if m.LineHeight <= 0 {
		m.LineHeight = DefaultMetrics.LineHeight
	}
	return m
}

// Measurer wraps text greedily into a bounding box and reports the result as
// a placement node: actual extent, break counts and placeability.
type Measurer struct {
	Metrics Metrics

	// Penalty is the badness base for unplaceable content. Zero means
	// placed.DefaultUnplaceablePenalty.
	Penalty float64
}

// New creates a measurer; zero metric fields fall back to DefaultMetrics.
func New(m Metrics) *Measurer {
	return &Measurer{Metrics: m.withDefaults(), Penalty: placed.DefaultUnplaceablePenalty}
}

func (r *Measurer) penalty() float64 {
	if r.Penalty > 0 {
		return r.Penalty
	}
	return placed.DefaultUnplaceablePenalty
}

// Text wraps text into bounds. Line breaks taken at spaces count as good
// breaks; splits forced mid-word count as bad breaks. When not even a single
// character or line fits, or the wrapped text runs past the bottom of the
// box, the content is unplaceable at these bounds.
func (r *Measurer) Text(text string, bounds geom.Rect) *placed.Node {
	m := r.Metrics.withDefaults()

	maxWidth := bounds.Width()
	if maxWidth < m.CharWidth || bounds.Height() < m.LineHeight {
		return placed.NewUnplaceable(bounds, r.penalty())
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return placed.NewLeaf(bounds, geom.Make(bounds.Left, bounds.Top, 0, 0))
	}

	perLine := maxWidth / m.CharWidth
	var lineWidth, widest, good, bad int
	lines := 1

	for _, word := range words {
		runes := []rune(word)
		wordWidth := len(runes) * m.CharWidth

		if wordWidth > maxWidth {
			// Word wider than the box: force splits at the character grid.
			if lineWidth > 0 {
				widest = max(widest, lineWidth)
				good++
				lines++
			}
			for len(runes) > perLine {
				widest = max(widest, perLine*m.CharWidth)
				runes = runes[perLine:]
				bad++
				lines++
			}
			lineWidth = len(runes) * m.CharWidth
			continue
		}

		need := wordWidth
		if lineWidth > 0 {
			need += m.SpaceWidth
		}
		if lineWidth+need > maxWidth {
			widest = max(widest, lineWidth)
			good++
			lines++
			lineWidth = wordWidth
		} else {
			lineWidth += need
		}
	}
	widest = max(widest, lineWidth)

	height := lines * m.LineHeight
	if height > bounds.Height() {
		return placed.NewUnplaceable(bounds, r.penalty())
	}

	n := placed.NewLeaf(bounds, geom.Make(bounds.Left, bounds.Top, widest, height))
	n.GoodBreaks = good
	n.BadBreaks = bad
	return n
}
