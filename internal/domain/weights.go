package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// WeightSet holds the user-controlled multiplier for each factor.
type WeightSet struct {
	Income       float64 `json:"income" yaml:"income"`
	Unemployment float64 `json:"unemployment" yaml:"unemployment"`
	Cost         float64 `json:"cost" yaml:"cost"`
}

// DefaultWeights returns the dashboard's initial slider positions.
func DefaultWeights() WeightSet {
	return WeightSet{Income: 0.4, Unemployment: 0.3, Cost: 0.3}
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	return w.Income + w.Unemployment + w.Cost
}

// Validate checks that every weight is finite and non-negative.
func (w WeightSet) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"income", w.Income},
		{"unemployment", w.Unemployment},
		{"cost", w.Cost},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s weight is not finite", ErrInvalidWeights, f.name)
		}
		if f.v < 0 {
			return fmt.Errorf("%w: %s weight %g is negative", ErrInvalidWeights, f.name, f.v)
		}
	}
	return nil
}

// Normalized rescales the weights to sum to 1, which bounds scores to [0,1].
// All-zero weights cannot be rescaled and return ErrInvalidWeights.
func (w WeightSet) Normalized() (WeightSet, error) {
	if err := w.Validate(); err != nil {
		return WeightSet{}, err
	}
	total := w.Sum()
	if total == 0 {
		return WeightSet{}, fmt.Errorf("%w: weights sum to zero", ErrInvalidWeights)
	}
	return WeightSet{
		Income:       w.Income / total,
		Unemployment: w.Unemployment / total,
		Cost:         w.Cost / total,
	}, nil
}

// String formats the weights as "income,unemployment,cost".
func (w WeightSet) String() string {
	return fmt.Sprintf("%g,%g,%g", w.Income, w.Unemployment, w.Cost)
}

// ParseWeightSet parses "income,unemployment,cost", e.g. "0.4,0.3,0.3".
func ParseWeightSet(s string) (WeightSet, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return WeightSet{}, fmt.Errorf("%w: want 3 comma-separated values, got %q", ErrInvalidWeights, s)
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return WeightSet{}, fmt.Errorf("%w: %q: %w", ErrInvalidWeights, p, err)
		}
		vals[i] = v
	}
	w := WeightSet{Income: vals[0], Unemployment: vals[1], Cost: vals[2]}
	if err := w.Validate(); err != nil {
		return WeightSet{}, err
	}
	return w, nil
}
