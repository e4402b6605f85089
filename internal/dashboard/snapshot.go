package dashboard

import (
	"time"

	"github.com/couchcryptid/county-resilience-service/internal/domain"
)

// Snapshot is one refresh worth of county data: the raw factor values and
// their normalized form. A snapshot is immutable once published.
type Snapshot struct {
	ID         string           `json:"id"`
	FetchedAt  time.Time        `json:"fetched_at"`
	Counties   []domain.County  `json:"counties"`
	Raw        domain.FactorSet `json:"raw"`
	Normalized domain.FactorSet `json:"normalized"`
	// Omitted lists counties left out for missing factors.
	Omitted []string `json:"omitted,omitempty"`
}

// Evaluate scores the snapshot under w. Weights are used as given.
func (s *Snapshot) Evaluate(w domain.WeightSet) (Evaluation, error) {
	result, err := domain.Evaluate(s.Counties, s.Raw, s.Normalized, w)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{SnapshotID: s.ID, FetchedAt: s.FetchedAt, Result: result}, nil
}

// Evaluation is a scored, ranked result tied to the snapshot it came from.
type Evaluation struct {
	SnapshotID string    `json:"snapshot_id"`
	FetchedAt  time.Time `json:"fetched_at"`
	domain.Result
}
