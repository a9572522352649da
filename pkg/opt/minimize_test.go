package opt

import (
	"math"
	"testing"
)

func TestMinimizeQuadratic(t *testing.T) {
	f := func(x []float64) float64 {
		return (x[0]-0.7)*(x[0]-0.7) + (x[1]-0.2)*(x[1]-0.2)
	}

	fmin, x, ok := Minimize(f, []float64{0.5, 0.5}, MinimizeOptions{})
	if !ok {
		t.Fatal("minimizer should converge on a smooth quadratic")
	}
	if math.Abs(x[0]-0.7) > 0.01 || math.Abs(x[1]-0.2) > 0.01 {
		t.Errorf("minimum at %v, want near (0.7, 0.2)", x)
	}
	if fmin > 1e-3 {
		t.Errorf("fmin = %v, want near 0", fmin)
	}
}

func TestMinimizeRespectsBounds(t *testing.T) {
	// Unconstrained minimum at -1, outside the unit box.
	f := func(x []float64) float64 { return (x[0] + 1) * (x[0] + 1) }

	_, x, ok := Minimize(f, []float64{0.9}, MinimizeOptions{})
	if !ok {
		t.Fatal("minimizer should converge")
	}
	if x[0] < 0 || x[0] > 1 {
		t.Errorf("x = %v escaped the unit box", x[0])
	}
	if x[0] > 0.01 {
		t.Errorf("x = %v, want the boundary 0", x[0])
	}
}

func TestMinimizePlateau(t *testing.T) {
	// Step function of the decoded integer: flat plateaus with ties, the
	// shape layout objectives actually have.
	f := func(x []float64) float64 {
		v := math.Round(x[0] * 10)
		return math.Abs(v - 7)
	}

	fmin, x, ok := Minimize(f, []float64{0}, MinimizeOptions{})
	if !ok {
		t.Fatal("minimizer should converge on plateaus")
	}
	if fmin != 0 {
		t.Errorf("fmin = %v, want 0", fmin)
	}
	if got := math.Round(x[0] * 10); got != 7 {
		t.Errorf("decoded minimum = %v, want 7", got)
	}
}

func TestMinimizeDeterministic(t *testing.T) {
	f := func(x []float64) float64 {
		return math.Sin(9*x[0]) + (x[1]-0.3)*(x[1]-0.3)
	}

	f1, x1, ok1 := Minimize(f, []float64{0.2, 0.8}, MinimizeOptions{})
	f2, x2, ok2 := Minimize(f, []float64{0.2, 0.8}, MinimizeOptions{})

	if ok1 != ok2 || f1 != f2 || x1[0] != x2[0] || x1[1] != x2[1] {
		t.Errorf("two identical runs disagree: (%v, %v, %v) vs (%v, %v, %v)", f1, x1, ok1, f2, x2, ok2)
	}
}

func TestMinimizeReportsFailure(t *testing.T) {
	// Pathological objective that keeps improving on every evaluation;
	// sweeps never stop improving, so the minimizer must give up and
	// report failure rather than loop forever.
	count := 0
	f := func(x []float64) float64 {
		count++
		return -float64(count)
	}

	_, _, ok := Minimize(f, []float64{0.5}, MinimizeOptions{MaxSweeps: 5})
	if ok {
		t.Error("minimizer should report failure when sweeps never settle")
	}
}
