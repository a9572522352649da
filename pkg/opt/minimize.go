package opt

import (
	"math"
	"slices"
)

// MinimizeOptions tunes the bounded derivative-free minimizer.
type MinimizeOptions struct {
	// Grid is the number of intervals in the per-axis coarse scan.
	Grid int

	// Tol is the convergence tolerance in normalized coordinates.
	Tol float64

	// MaxSweeps bounds the number of full coordinate sweeps.
	MaxSweeps int
}

// Default minimizer settings. The objective is a step function of the
// decoded integers, so a fine tolerance buys nothing beyond the plateau
// width; these values converge in a handful of sweeps on real layouts.
const (
	DefaultGrid      = 8
	DefaultTol       = 1e-3
	DefaultMaxSweeps = 24
)

// withDefaults fills unset options.
func (o MinimizeOptions) withDefaults() MinimizeOptions {
	if o.Grid <= 0 {
		o.Grid = DefaultGrid
	}
	if o.Tol <= 0 {
		o.Tol = DefaultTol
	}
	if o.MaxSweeps <= 0 {
		o.MaxSweeps = DefaultMaxSweeps
	}
	return o
}

// Minimize searches the unit box [0,1]^n for a minimum of f starting from
// x0, using coordinate descent: each axis in turn is scanned on a coarse
// grid and the best cell refined by golden-section search. The procedure is
// fully deterministic and tolerant of plateaus and ties.
//
// It returns the best point found, its value, and whether the search
// converged (successive sweeps stopped improving within MaxSweeps). The
// returned point is always one that f was actually evaluated at.
func Minimize(f func([]float64) float64, x0 []float64, opts MinimizeOptions) (float64, []float64, bool) {
	opts = opts.withDefaults()

	x := slices.Clone(x0)
	for i, v := range x {
		x[i] = math.Max(0, math.Min(1, v))
	}
	fx := f(x)

	for sweep := 0; sweep < opts.MaxSweeps; sweep++ {
		prev := fx
		moved := 0.0

		for i := range x {
			xi, fi := lineMinimize(f, x, i, opts)
			if fi < fx {
				moved = math.Max(moved, math.Abs(xi-x[i]))
				x[i] = xi
				fx = fi
			}
		}

		if prev-fx <= opts.Tol*(math.Abs(prev)+opts.Tol) && moved <= opts.Tol {
			return fx, x, true
		}
	}

	return fx, x, false
}

// lineMinimize minimizes f along axis i with the other coordinates fixed.
// It scans Grid+1 evenly spaced points plus the current coordinate, then
// refines the best cell's neighborhood by golden-section search.
func lineMinimize(f func([]float64) float64, x []float64, i int, opts MinimizeOptions) (float64, float64) {
	eval := func(t float64) float64 {
		old := x[i]
		x[i] = t
		v := f(x)
		x[i] = old
		return v
	}

	bestT := x[i]
	bestF := eval(bestT)
	for j := 0; j <= opts.Grid; j++ {
		t := float64(j) / float64(opts.Grid)
		if v := eval(t); v < bestF {
			bestT, bestF = t, v
		}
	}

	cell := 1 / float64(opts.Grid)
	a := math.Max(0, bestT-cell)
	b := math.Min(1, bestT+cell)
	t, v := goldenSection(eval, a, b, opts.Tol)
	if v < bestF {
		bestT, bestF = t, v
	}

	return bestT, bestF
}

// invphi is 1/φ, the golden-section interval reduction ratio.
var invphi = (math.Sqrt(5) - 1) / 2

// goldenSection performs golden-section search for a minimum of f on
// [a, b], shrinking the interval to tol. Ties resolve toward the lower end,
// keeping the search deterministic on plateaus.
func goldenSection(f func(float64) float64, a, b, tol float64) (float64, float64) {
	c := b - invphi*(b-a)
	d := a + invphi*(b-a)
	fc, fd := f(c), f(d)

	for b-a > tol {
		if fc <= fd {
			b, d, fd = d, c, fc
			c = b - invphi*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + invphi*(b-a)
			fd = f(d)
		}
	}

	if fc <= fd {
		return c, fc
	}
	return d, fd
}
