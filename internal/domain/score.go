package domain

// Score combines normalized income, unemployment, and cost maps into one
// resilience score per county:
//
//	score = w.Income*income + w.Unemployment*(1-unemployment) + w.Cost*(1-cost)
//
// The three maps must cover exactly the same counties; otherwise a
// *KeySetMismatchError is returned and no scores are produced.
func Score(income, unemployment, cost FactorValues, w WeightSet) (map[string]float64, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := checkKeySets(income, unemployment, cost); err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(income))
	for id, in := range income {
		scores[id] = w.Income*in + w.Unemployment*(1-unemployment[id]) + w.Cost*(1-cost[id])
	}
	return scores, nil
}

// ScoreFactors is Score over a normalized FactorSet.
func ScoreFactors(norm FactorSet, w WeightSet) (map[string]float64, error) {
	return Score(norm.Income, norm.Unemployment, norm.CostOfLiving, w)
}

func checkKeySets(income, unemployment, cost FactorValues) error {
	maps := []struct {
		kind FactorKind
		vals FactorValues
	}{
		{Income, income},
		{Unemployment, unemployment},
		{CostOfLiving, cost},
	}
	for _, a := range maps {
		for _, id := range sortedKeys(a.vals) {
			for _, b := range maps {
				if _, ok := b.vals[id]; !ok {
					return &KeySetMismatchError{County: id, Present: a.kind, Absent: b.kind}
				}
			}
		}
	}
	return nil
}
