package census

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/county-resilience-service/internal/domain"
	"github.com/couchcryptid/county-resilience-service/internal/observability"
)

// CachedProvider wraps an income provider and holds its last result until a
// fixed TTL elapses or Invalidate is called.
type CachedProvider struct {
	inner   domain.IncomeProvider
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu      sync.Mutex
	value   domain.FactorValues
	expires time.Time
}

// NewCachedProvider creates a cache decorator around an income provider.
func NewCachedProvider(inner domain.IncomeProvider, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

// MedianIncome returns the cached result when fresh, otherwise fetches.
func (c *CachedProvider) MedianIncome(ctx context.Context) (domain.FactorValues, error) {
	now := c.clock.Now()

	c.mu.Lock()
	switch {
	case c.value == nil:
		c.metrics.CensusCache.WithLabelValues("miss").Inc()
	case now.Before(c.expires):
		v := c.value.Clone()
		c.mu.Unlock()
		c.metrics.CensusCache.WithLabelValues("hit").Inc()
		return v, nil
	default:
		c.metrics.CensusCache.WithLabelValues("expired").Inc()
	}
	c.mu.Unlock()

	values, err := c.inner.MedianIncome(ctx)
	if err != nil {
		return nil, err
	}
	// Empty results are not cached so the next refresh retries.
	if len(values) > 0 {
		c.mu.Lock()
		c.value = values.Clone()
		c.expires = now.Add(c.ttl)
		c.mu.Unlock()
	}
	return values, nil
}

// Invalidate drops the cached result so the next call fetches.
func (c *CachedProvider) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
	c.expires = time.Time{}
}
