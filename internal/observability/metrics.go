package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "county_resilience"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Refresh metrics.
	Refreshes       *prometheus.CounterVec // labels: outcome={success,error}
	RefreshDuration prometheus.Histogram
	LastRefresh     prometheus.Gauge
	CountiesScored  prometheus.Gauge
	CountiesOmitted prometheus.Counter
	ServiceRunning  prometheus.Gauge

	// Census API metrics.
	CensusRequests    *prometheus.CounterVec // labels: outcome={success,error}
	CensusCache       *prometheus.CounterVec // labels: result={hit,miss,expired}
	CensusAPIDuration prometheus.Histogram

	// Scoring and output metrics.
	Evaluations      *prometheus.CounterVec // labels: outcome={success,error}
	PublishedResults *prometheus.CounterVec // labels: sink, outcome={success,error}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.Refreshes,
		m.RefreshDuration,
		m.LastRefresh,
		m.CountiesScored,
		m.CountiesOmitted,
		m.ServiceRunning,
		m.CensusRequests,
		m.CensusCache,
		m.CensusAPIDuration,
		m.Evaluations,
		m.PublishedResults,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}

	return &Metrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      help("Data refresh attempts by outcome."),
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      help("Duration of a fetch-normalize refresh cycle."),
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_refresh_timestamp_seconds",
			Help:      help("Unix time of the last successful refresh."),
		}),
		CountiesScored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "counties_scored",
			Help:      help("Counties in the current snapshot."),
		}),
		CountiesOmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counties_omitted_total",
			Help:      help("Counties dropped from a snapshot for missing factors."),
		}),
		ServiceRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresher_running",
			Help:      help("1 when the refresh loop is active, 0 when shut down."),
		}),
		CensusRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "census_requests_total",
			Help:      help("Census API requests by outcome."),
		}, []string{"outcome"}),
		CensusCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "census_cache_total",
			Help:      help("Census response cache lookups by result."),
		}, []string{"result"}),
		CensusAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "census_api_duration_seconds",
			Help:      help("Census API request duration in seconds."),
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      help("Score evaluations by outcome."),
		}, []string{"outcome"}),
		PublishedResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_results_total",
			Help:      help("Scored results handed to output sinks, by sink and outcome."),
		}, []string{"sink", "outcome"}),
	}
}
