package domain

import "strings"

// AdvisoryTag flags a normalized factor that crossed a threshold.
type AdvisoryTag string

const (
	TagStrongIncome        AdvisoryTag = "strong_income"
	TagLowIncome           AdvisoryTag = "low_income"
	TagVeryLowUnemployment AdvisoryTag = "very_low_unemployment"
	TagHighUnemployment    AdvisoryTag = "high_unemployment"
	TagAffordableCost      AdvisoryTag = "affordable_cost"
	TagHighCost            AdvisoryTag = "high_cost"
)

var tagPhrases = map[AdvisoryTag]string{
	TagStrongIncome:        "strong income levels",
	TagLowIncome:           "low income levels",
	TagVeryLowUnemployment: "very low unemployment",
	TagHighUnemployment:    "high unemployment",
	TagAffordableCost:      "affordable cost of living",
	TagHighCost:            "high cost of living",
}

// Phrase returns the text used for t in insight sentences.
func (t AdvisoryTag) Phrase() string {
	if p, ok := tagPhrases[t]; ok {
		return p
	}
	return string(t)
}

type adviceRule struct {
	kind      FactorKind
	above     bool
	threshold float64
	tag       AdvisoryTag
}

// adviceRules are checked in order; at most one rule fires per factor kind.
var adviceRules = []adviceRule{
	{Income, true, 0.75, TagStrongIncome},
	{Income, false, 0.4, TagLowIncome},
	{Unemployment, false, 0.3, TagVeryLowUnemployment},
	{Unemployment, true, 0.7, TagHighUnemployment},
	{CostOfLiving, false, 0.4, TagAffordableCost},
	{CostOfLiving, true, 0.75, TagHighCost},
}

// Advise returns the advisory tags for a county's normalized factors.
func Advise(norm FactorBreakdown) []AdvisoryTag {
	tags := []AdvisoryTag{}
	fired := make(map[FactorKind]bool, 3)
	for _, r := range adviceRules {
		if fired[r.kind] {
			continue
		}
		v := breakdownValue(norm, r.kind)
		if (r.above && v > r.threshold) || (!r.above && v < r.threshold) {
			tags = append(tags, r.tag)
			fired[r.kind] = true
		}
	}
	return tags
}

// Insight renders tags as a single sentence for the dashboard sidebar.
func Insight(tags []AdvisoryTag) string {
	if len(tags) == 0 {
		return "This county has balanced factors across income, unemployment, and cost."
	}
	phrases := make([]string, len(tags))
	for i, t := range tags {
		phrases[i] = t.Phrase()
	}

	var body string
	switch len(phrases) {
	case 1:
		body = phrases[0]
	case 2:
		body = phrases[0] + " and " + phrases[1]
	default:
		body = strings.Join(phrases[:len(phrases)-1], ", ") + ", and " + phrases[len(phrases)-1]
	}
	return "This score reflects " + body + "."
}

func breakdownValue(b FactorBreakdown, k FactorKind) float64 {
	switch k {
	case Income:
		return b.Income
	case Unemployment:
		return b.Unemployment
	default:
		return b.CostOfLiving
	}
}
