package domain

import "context"

// IncomeProvider supplies median household income per county.
type IncomeProvider interface {
	// MedianIncome returns income keyed by county FIPS. Counties the source
	// has no usable value for are left out of the map.
	MedianIncome(ctx context.Context) (FactorValues, error)
}

// PlaceholderProvider supplies the factors that have no live source yet.
type PlaceholderProvider interface {
	// Placeholders returns unemployment rate (percent) and cost-of-living
	// index keyed by county FIPS.
	Placeholders(ctx context.Context) (unemployment, cost FactorValues, err error)
}
