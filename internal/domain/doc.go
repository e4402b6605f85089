// Package domain models county-level financial resilience for North Carolina.
//
// # Factors
//
// Each of the 100 counties carries three raw factors:
//
//	Income        median household income in dollars (Census ACS B19013_001E)
//	Unemployment  unemployment rate in percent (placeholder values)
//	CostOfLiving  cost-of-living index, 100 = state average (placeholder values)
//
// Counties are keyed by their 5-digit FIPS code ("37183" is Wake). The registry
// is fixed; see [Counties].
//
// # Normalization
//
// Every factor kind is min-max scaled across the county set onto [0,1]:
//
//	norm = (value - min) / (max - min)
//
// When every county reports the same value the range is degenerate and every
// county normalizes to 0.5 rather than favoring one of them. See [Normalize].
//
// # Scoring
//
// The resilience score combines the normalized factors with a user-supplied
// [WeightSet]:
//
//	score = wIncome*income + wUnemployment*(1-unemployment) + wCost*(1-cost)
//
// Higher income raises the score; higher unemployment or cost lowers it. Weights
// are not required to sum to 1, so the score is only bounded to [0,1] when the
// caller normalizes them first ([WeightSet.Normalized]). See [Score].
//
// # Advisory tags
//
// Normalized factors past fixed thresholds produce advisory tags used for the
// dashboard's insight text:
//
//	Income:       > 0.75 strong income     | < 0.4 low income
//	Unemployment: < 0.3  very low          | > 0.7 high
//	Cost:         < 0.4  affordable        | > 0.75 high
//
// Everything in this package is a pure function of its inputs.
package domain
