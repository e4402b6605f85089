package domain

// FactorKind names one of the three scoring inputs.
type FactorKind string

const (
	Income       FactorKind = "income"
	Unemployment FactorKind = "unemployment"
	CostOfLiving FactorKind = "cost_of_living"
)

// FactorKinds returns every factor kind in scoring order.
func FactorKinds() []FactorKind {
	return []FactorKind{Income, Unemployment, CostOfLiving}
}

// Label returns a human-readable name for the factor kind.
func (k FactorKind) Label() string {
	switch k {
	case Income:
		return "Median Income"
	case Unemployment:
		return "Unemployment Rate"
	case CostOfLiving:
		return "Cost of Living Index"
	default:
		return string(k)
	}
}

// FactorValues maps county FIPS codes to a value of a single factor kind.
type FactorValues map[string]float64

// Clone returns a copy of v.
func (v FactorValues) Clone() FactorValues {
	out := make(FactorValues, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// FactorSet groups the values of all three factor kinds.
type FactorSet struct {
	Income       FactorValues `json:"income"`
	Unemployment FactorValues `json:"unemployment"`
	CostOfLiving FactorValues `json:"cost_of_living"`
}

// Values returns the map for kind k, or nil for an unknown kind.
func (s FactorSet) Values(k FactorKind) FactorValues {
	switch k {
	case Income:
		return s.Income
	case Unemployment:
		return s.Unemployment
	case CostOfLiving:
		return s.CostOfLiving
	default:
		return nil
	}
}

// Breakdown returns all three values for a county. Missing values are zero.
func (s FactorSet) Breakdown(county string) FactorBreakdown {
	return FactorBreakdown{
		Income:       s.Income[county],
		Unemployment: s.Unemployment[county],
		CostOfLiving: s.CostOfLiving[county],
	}
}

// Validate checks that every county in counties has a value for every kind.
// The first gap found, in counties order then kind order, is returned as a
// *MissingFactorError.
func (s FactorSet) Validate(counties []string) error {
	for _, id := range counties {
		if err := s.checkCounty(id); err != nil {
			return err
		}
	}
	return nil
}

// Partition splits counties into those with all three factors and the gaps
// found for the rest.
func (s FactorSet) Partition(counties []string) (complete []string, missing []*MissingFactorError) {
	for _, id := range counties {
		if err := s.checkCounty(id); err != nil {
			missing = append(missing, err)
			continue
		}
		complete = append(complete, id)
	}
	return complete, missing
}

func (s FactorSet) checkCounty(id string) *MissingFactorError {
	for _, k := range FactorKinds() {
		if _, ok := s.Values(k)[id]; !ok {
			return &MissingFactorError{County: id, Kind: k}
		}
	}
	return nil
}

// Restrict returns a copy of s containing only the given counties.
func (s FactorSet) Restrict(counties []string) FactorSet {
	out := FactorSet{
		Income:       make(FactorValues, len(counties)),
		Unemployment: make(FactorValues, len(counties)),
		CostOfLiving: make(FactorValues, len(counties)),
	}
	for _, id := range counties {
		for _, k := range FactorKinds() {
			if v, ok := s.Values(k)[id]; ok {
				out.Values(k)[id] = v
			}
		}
	}
	return out
}

// FactorBreakdown holds one county's value for each factor kind.
type FactorBreakdown struct {
	Income       float64 `json:"income"`
	Unemployment float64 `json:"unemployment"`
	CostOfLiving float64 `json:"cost_of_living"`
}
