package domain

import (
	"fmt"
	"math"
)

// DegenerateMidpoint is the normalized value assigned to every county when all
// raw values of a factor are equal.
const DegenerateMidpoint = 0.5

// Normalize min-max scales values onto [0,1]. The county holding the minimum
// maps to exactly 0 and the maximum to exactly 1. If every value is equal the
// result is DegenerateMidpoint for every county. Negative values are scaled
// like any other.
func Normalize(values FactorValues) (FactorValues, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, id := range sortedKeys(values) {
		v := values[id]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: county %s: %v", ErrInvalidValue, id, v)
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make(FactorValues, len(values))
	if hi == lo {
		for id := range values {
			out[id] = DegenerateMidpoint
		}
		return out, nil
	}

	span := hi - lo
	if math.IsInf(span, 0) {
		// The range overflows float64; halve both sides.
		span = hi/2 - lo/2
		for id, v := range values {
			out[id] = (v/2 - lo/2) / span
		}
		return out, nil
	}
	for id, v := range values {
		out[id] = (v - lo) / span
	}
	return out, nil
}

// NormalizeFactors validates that raw covers every county in counties for all
// three kinds, then normalizes each kind across exactly those counties. Raw
// entries for counties outside the list are ignored.
func NormalizeFactors(raw FactorSet, counties []string) (FactorSet, error) {
	if len(counties) == 0 {
		return FactorSet{}, ErrNoData
	}
	if err := raw.Validate(counties); err != nil {
		return FactorSet{}, err
	}

	scoped := raw.Restrict(counties)
	var out FactorSet
	for _, k := range FactorKinds() {
		norm, err := Normalize(scoped.Values(k))
		if err != nil {
			return FactorSet{}, fmt.Errorf("normalize %s: %w", k, err)
		}
		switch k {
		case Income:
			out.Income = norm
		case Unemployment:
			out.Unemployment = norm
		case CostOfLiving:
			out.CostOfLiving = norm
		}
	}
	return out, nil
}
