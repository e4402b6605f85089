package domain

import (
	"fmt"
	"sort"
)

// ScoredCounty is one row of an evaluation: raw and normalized factors, the
// resilience score, and the county's position in the ranking.
type ScoredCounty struct {
	County
	Raw        FactorBreakdown `json:"raw"`
	Normalized FactorBreakdown `json:"normalized"`
	Score      float64         `json:"score"`
	Rank       int             `json:"rank"`
	Tags       []AdvisoryTag   `json:"tags"`
}

// Insight returns the advisory sentence for the county.
func (c ScoredCounty) Insight() string {
	return Insight(c.Tags)
}

// Result is a full evaluation under one WeightSet, ordered by rank.
type Result struct {
	Weights  WeightSet      `json:"weights"`
	Counties []ScoredCounty `json:"counties"`
}

// Evaluate scores every county and ranks them. raw supplies the values shown
// in the breakdown; norm must already be normalized over the same counties.
func Evaluate(counties []County, raw, norm FactorSet, w WeightSet) (Result, error) {
	scores, err := ScoreFactors(norm, w)
	if err != nil {
		return Result{}, err
	}

	rows := make([]ScoredCounty, 0, len(counties))
	for _, c := range counties {
		s, ok := scores[c.FIPS]
		if !ok {
			return Result{}, &MissingFactorError{County: c.FIPS, Kind: Income}
		}
		nb := norm.Breakdown(c.FIPS)
		rows = append(rows, ScoredCounty{
			County:     c,
			Raw:        raw.Breakdown(c.FIPS),
			Normalized: nb,
			Score:      s,
			Tags:       Advise(nb),
		})
	}
	if len(rows) != len(scores) {
		return Result{}, fmt.Errorf("scored %d counties but %d were requested", len(scores), len(rows))
	}

	Rank(rows)
	return Result{Weights: w, Counties: rows}, nil
}

// Rank orders rows by descending score and assigns 1-based ranks. Ties are
// broken by county name, then FIPS, so the order is stable across calls.
func Rank(rows []ScoredCounty) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].FIPS < rows[j].FIPS
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

// Find returns the row for a county FIPS code.
func (r Result) Find(fips string) (ScoredCounty, bool) {
	for _, c := range r.Counties {
		if c.FIPS == fips {
			return c, true
		}
	}
	return ScoredCounty{}, false
}

// Top returns the n most resilient counties, best first.
func (r Result) Top(n int) []ScoredCounty {
	n = clampCount(n, len(r.Counties))
	out := make([]ScoredCounty, n)
	copy(out, r.Counties[:n])
	return out
}

// Bottom returns the n least resilient counties, worst first.
func (r Result) Bottom(n int) []ScoredCounty {
	n = clampCount(n, len(r.Counties))
	out := make([]ScoredCounty, 0, n)
	for i := len(r.Counties) - 1; i >= len(r.Counties)-n; i-- {
		out = append(out, r.Counties[i])
	}
	return out
}

// Scores returns the county → score mapping.
func (r Result) Scores() map[string]float64 {
	out := make(map[string]float64, len(r.Counties))
	for _, c := range r.Counties {
		out[c.FIPS] = c.Score
	}
	return out
}

func clampCount(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}
