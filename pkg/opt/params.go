package opt

import (
	"math"

	"github.com/matzehuels/sheetpress/pkg/errors"
)

// Params is an ordered tuple of integer layout parameters sharing one
// inclusive [Low, High] bound. Params values are immutable by convention:
// they are re-created, never mutated, when parameters change.
type Params struct {
	Values []int
	Low    int
	High   int
}

// NewParams creates a parameter tuple with shared bounds.
func NewParams(values []int, low, high int) Params {
	return Params{Values: values, Low: low, High: high}
}

// Len returns the number of parameter axes.
func (p Params) Len() int { return len(p.Values) }

// ToFraction maps an integer in [low, high] onto [0, 1]. A degenerate axis
// (low == high) contributes no search signal and maps to 0.5 by convention.
// Inverted bounds are a fatal input error, never silently corrected.
func ToFraction(x, low, high int) (float64, error) {
	if low > high {
		return 0, errors.New(errors.ErrCodeInvalidBounds, "inverted bounds [%d, %d]", low, high)
	}
	if low == high {
		return 0.5, nil
	}
	return float64(x-low) / float64(high-low), nil
}

// FromFraction maps a fraction in [0, 1] back onto the nearest integer in
// [low, high]. A degenerate axis always decodes to low.
func FromFraction(f float64, low, high int) (int, error) {
	if low > high {
		return 0, errors.New(errors.ErrCodeInvalidBounds, "inverted bounds [%d, %d]", low, high)
	}
	if low == high {
		return low, nil
	}
	return low + int(math.Round(f*float64(high-low))), nil
}

// Fractions converts the tuple to normalized coordinates element-wise.
func (p Params) Fractions() ([]float64, error) {
	fracs := make([]float64, len(p.Values))
	for i, v := range p.Values {
		f, err := ToFraction(v, p.Low, p.High)
		if err != nil {
			return nil, err
		}
		fracs[i] = f
	}
	return fracs, nil
}

// WithFractions decodes normalized coordinates against the tuple's bounds,
// producing a fresh Params with the same bounds.
func (p Params) WithFractions(fracs []float64) (Params, error) {
	values, err := decodeFractions(fracs, p.Low, p.High)
	if err != nil {
		return Params{}, err
	}
	return Params{Values: values, Low: p.Low, High: p.High}, nil
}

// decodeFractions maps normalized coordinates to integers element-wise.
func decodeFractions(fracs []float64, low, high int) ([]int, error) {
	values := make([]int, len(fracs))
	for i, f := range fracs {
		v, err := FromFraction(f, low, high)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
