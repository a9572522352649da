package sheet

import (
	"slices"
	"sort"
	"time"

	"github.com/matzehuels/sheetpress/pkg/config"
	"github.com/matzehuels/sheetpress/pkg/errors"
	"github.com/matzehuels/sheetpress/pkg/geom"
	"github.com/matzehuels/sheetpress/pkg/opt"
	"github.com/matzehuels/sheetpress/pkg/placed"
)

// minColumnChars is the narrowest sensible column, in character widths.
const minColumnChars = 4

// ColumnsProblem is the concrete two-stage layout problem: stage 1 chooses
// how many blocks each column receives, stage 2 chooses the column widths.
// It implements opt.Problem; scoring renders the candidate with the
// configured renderer and sums the weighted placement errors over the tree.
type ColumnsProblem struct {
	sheet   Sheet
	render  Renderer
	cfg     config.Config
	columns int
}

// NewColumnsProblem validates the inputs and builds the problem.
func NewColumnsProblem(s Sheet, r Renderer, cfg config.Config, columns int) (*ColumnsProblem, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if columns < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "column count %d must be at least 1", columns)
	}
	if columns > len(s.Blocks) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"%d columns for %d blocks: every column needs at least one candidate block", columns, len(s.Blocks))
	}
	return &ColumnsProblem{sheet: s, render: r, cfg: cfg, columns: columns}, nil
}

// Columns returns the column count of the problem.
func (p *ColumnsProblem) Columns() int { return p.columns }

// InitialParams is the even-allocation starting point for the stage-1
// search: one share per column, all equal.
func (p *ColumnsProblem) InitialParams() opt.Params {
	shares := make([]int, p.columns)
	for i := range shares {
		shares[i] = 1
	}
	return opt.NewParams(shares, 0, len(p.sheet.Blocks))
}

// Allocate turns stage-1 shares into per-column block counts that sum to
// the number of blocks, using largest-remainder rounding. All-zero shares
// mean an even split. Ties resolve by column index, keeping the allocation
// deterministic.
func (p *ColumnsProblem) Allocate(shares []int) []int {
	n := len(p.sheet.Blocks)
	counts := make([]int, p.columns)

	total := 0
	for _, s := range shares {
		if s > 0 {
			total += s
		}
	}
	if total == 0 {
		for i := range counts {
			counts[i] = n / p.columns
			if i < n%p.columns {
				counts[i]++
			}
		}
		return counts
	}

	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, p.columns)
	assigned := 0
	for i := range counts {
		s := 0
		if i < len(shares) && shares[i] > 0 {
			s = shares[i]
		}
		quota := float64(s*n) / float64(total)
		counts[i] = int(quota)
		assigned += counts[i]
		rems[i] = rem{idx: i, frac: quota - float64(counts[i])}
	}

	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; i < n-assigned; i++ {
		counts[rems[i%len(rems)].idx]++
	}
	return counts
}

// Stage2Params derives the initial width guess for a coarse trial: the
// content width split evenly after gutters, bounded below by the narrowest
// legible column.
func (p *ColumnsProblem) Stage2Params(stage1 []int) opt.Params {
	avail := p.sheet.Page.Content().Width()
	low := minColumnChars * p.cfg.Metrics.CharWidth
	high := avail
	if high < low {
		high = low
	}

	widths := make([]int, p.columns)
	w := (avail - p.sheet.Page.Gutter*(p.columns-1)) / p.columns
	for i := range widths {
		widths[i] = w
	}
	return opt.NewParams(widths, low, high)
}

// ValidityError measures how far a width tuple is from structural legality:
// the total span past the content width plus any per-column deficit below
// the minimum, both normalized by the content width.
func (p *ColumnsProblem) ValidityError(params opt.Params) float64 {
	avail := float64(p.sheet.Page.Content().Width())
	if avail <= 0 {
		return 1
	}

	total := p.sheet.Page.Gutter * (p.columns - 1)
	err := 0.0
	for _, w := range params.Values {
		total += w
		if w < params.Low {
			err += float64(params.Low-w) / avail
		}
	}
	if over := float64(total) - avail; over > 0 {
		err += over / avail
	}
	return err
}

// Score renders the candidate and sums its weighted placement errors.
func (p *ColumnsProblem) Score(stage1, stage2 []int) float64 {
	root, _ := p.build(p.Allocate(stage1), stage2)
	if root == nil {
		return p.cfg.Penalties.Unplaceable
	}
	return p.treeError(root)
}

// Place renders the candidate and packages it as the layout artifact.
// The returned tree is the scored placement, useful for inspection.
func (p *ColumnsProblem) Place(stage1, stage2 []int) (*placed.Node, Layout) {
	counts := p.Allocate(stage1)
	root, boxes := p.build(counts, stage2)

	score := p.cfg.Penalties.Unplaceable
	if root != nil {
		score = p.treeError(root)
	}
	return root, Layout{
		Title:     p.sheet.Title,
		Page:      p.sheet.Page,
		Counts:    counts,
		Widths:    slices.Clone(stage2),
		Boxes:     boxes,
		Score:     score,
		CreatedAt: time.Now().UTC(),
	}
}

// DefaultLayout is the unoptimized fallback: an even block allocation over
// even column widths. Used when the optimization itself fails.
func (p *ColumnsProblem) DefaultLayout() (*placed.Node, Layout) {
	root, layout := p.Place(make([]int, p.columns), p.Stage2Params(nil).Values)
	layout.Fallback = true
	return root, layout
}

// build lays the blocks out: columns left to right, blocks stacked top-down
// inside each column, every block offered the rest of its column. Offered
// rectangles shrink to the consumed height once measured, so the band scan
// of the quality model sees the real stacking.
func (p *ColumnsProblem) build(counts, widths []int) (*placed.Node, []Box) {
	content := p.sheet.Page.Content()
	gutter := p.sheet.Page.Gutter

	var cols []*placed.Node
	var boxes []Box
	x := content.Left
	next := 0

	for c := 0; c < p.columns; c++ {
		w := widths[c]
		colRect := geom.Make(x, content.Top, w, content.Height())

		var kids []*placed.Node
		y := content.Top
		for i := 0; i < counts[c]; i++ {
			b := p.sheet.Blocks[next]
			next++

			offered := geom.Rect{Left: x, Top: y, Right: x + w, Bottom: content.Bottom}
			n := p.render.Text(b.Content(), offered)
			if !n.Unplaceable() {
				n.Requested = n.Requested.Resize(w, n.Actual.Height())
			}
			kids = append(kids, n)
			boxes = append(boxes, Box{
				BlockID:     b.ID,
				Column:      c + 1,
				Rect:        n.Actual,
				GoodBreaks:  n.GoodBreaks,
				BadBreaks:   n.BadBreaks,
				Unplaceable: n.Unplaceable(),
			})
			y = n.Requested.Bottom + gutter
		}

		if g := placed.NewGroup(kids, colRect); g != nil {
			cols = append(cols, g)
		}
		x += w + gutter
	}

	root := placed.NewGroup(cols, content)
	if root != nil && len(cols) > 1 {
		lo, hi := cols[0].UnusedWidth, cols[0].UnusedWidth
		for _, g := range cols[1:] {
			lo = min(lo, g.UnusedWidth)
			hi = max(hi, g.UnusedWidth)
		}
		root.InternalVariance = hi - lo
	}
	return root, boxes
}

// treeError sums the weighted error contributions over the tree: size at
// every level, breaks once at the leaves (groups aggregate the same counts),
// variance wherever a renderer or the column build set it.
func (p *ColumnsProblem) treeError(n *placed.Node) float64 {
	w := p.cfg.Weights
	e := n.ErrorFromSize(w.Overflow, w.Slack) + n.ErrorFromVariance(w.Variance)
	if !n.IsGroup() {
		e += n.ErrorFromBreaks(w.BadBreak, w.GoodBreak)
	}
	for _, c := range n.Children {
		e += p.treeError(c)
	}
	return e
}
