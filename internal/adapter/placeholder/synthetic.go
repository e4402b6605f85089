package placeholder

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/couchcryptid/county-resilience-service/internal/domain"
)

// Synthetic value ranges.
const (
	MinUnemployment = 2.5
	MaxUnemployment = 8.5
	MinCostIndex    = 80.0
	MaxCostIndex    = 120.0
)

// Synthetic generates stable stand-in values for every registered county.
// The same FIPS code always yields the same numbers.
type Synthetic struct{}

// Placeholders implements domain.PlaceholderProvider.
func (Synthetic) Placeholders(_ context.Context) (domain.FactorValues, domain.FactorValues, error) {
	unemployment := make(domain.FactorValues)
	cost := make(domain.FactorValues)
	for _, id := range domain.CountyIDs() {
		u, c := SyntheticValues(id)
		unemployment[id] = u
		cost[id] = c
	}
	return unemployment, cost, nil
}

// SyntheticValues returns the unemployment rate and cost-of-living index
// derived from a county FIPS code, rounded to one decimal.
func SyntheticValues(fips string) (unemployment, cost float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fips))
	sum := h.Sum(nil)

	a := float64(binary.BigEndian.Uint32(sum[:4])) / math.MaxUint32
	b := float64(binary.BigEndian.Uint32(sum[4:])) / math.MaxUint32

	unemployment = round1(MinUnemployment + a*(MaxUnemployment-MinUnemployment))
	cost = round1(MinCostIndex + b*(MaxCostIndex-MinCostIndex))
	return unemployment, cost
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
