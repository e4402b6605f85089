package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsForTesting_Usable(t *testing.T) {
	m := NewMetricsForTesting()
	m.Refreshes.WithLabelValues("success").Inc()
	m.CensusCache.WithLabelValues("hit").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CensusCache.WithLabelValues("hit")))
}
