package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/county-resilience-service/internal/domain"
	"github.com/couchcryptid/county-resilience-service/internal/observability"
)

// ErrNotReady is returned while no snapshot has been loaded.
var ErrNotReady = errors.New("no county data loaded yet")

// Publisher receives the default-weight evaluation after every successful refresh.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, eval Evaluation) error
}

// Options tune the refresh loop and scoring defaults.
type Options struct {
	DefaultWeights  domain.WeightSet
	RefreshInterval time.Duration
	// AllowPartial omits counties with missing factors instead of failing the refresh.
	AllowPartial bool
	// Invalidate, when set, drops cached upstream data before a manual or
	// triggered refresh.
	Invalidate func()
}

// Service owns the current snapshot and keeps it fresh.
type Service struct {
	income       domain.IncomeProvider
	placeholders domain.PlaceholderProvider
	publishers   []Publisher
	opts         Options
	clock        clockwork.Clock
	logger       *slog.Logger
	metrics      *observability.Metrics

	snapshot  atomic.Pointer[Snapshot]
	refreshMu sync.Mutex
	trigger   chan struct{}
}

// New creates a Service. Publishers may be empty.
func New(income domain.IncomeProvider, placeholders domain.PlaceholderProvider, opts Options, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, publishers ...Publisher) *Service {
	return &Service{
		income:       income,
		placeholders: placeholders,
		publishers:   publishers,
		opts:         opts,
		clock:        clock,
		logger:       logger,
		metrics:      metrics,
		trigger:      make(chan struct{}, 1),
	}
}

// CheckReadiness returns nil once a snapshot has been loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.snapshot.Load() == nil {
		return ErrNotReady
	}
	return nil
}

// Current returns the latest snapshot, or nil before the first refresh.
func (s *Service) Current() *Snapshot {
	return s.snapshot.Load()
}

// DefaultWeights returns the configured default weights.
func (s *Service) DefaultWeights() domain.WeightSet {
	return s.opts.DefaultWeights
}

// Evaluate scores the current snapshot. With normalize set the weights are
// rescaled to sum to 1 first, bounding scores to [0,1].
func (s *Service) Evaluate(w domain.WeightSet, normalize bool) (Evaluation, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return Evaluation{}, ErrNotReady
	}

	var err error
	if normalize {
		w, err = w.Normalized()
	} else {
		err = w.Validate()
	}
	if err != nil {
		s.metrics.Evaluations.WithLabelValues("error").Inc()
		return Evaluation{}, err
	}

	eval, err := snap.Evaluate(w)
	if err != nil {
		s.metrics.Evaluations.WithLabelValues("error").Inc()
		return Evaluation{}, err
	}
	s.metrics.Evaluations.WithLabelValues("success").Inc()
	return eval, nil
}

// Trigger requests an out-of-cycle refresh from Run. It never blocks; a
// request made while one is pending is coalesced.
func (s *Service) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Refresh drops cached upstream data, then fetches every factor, normalizes,
// and swaps in a new snapshot. On error the previous snapshot stays in place.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	if s.opts.Invalidate != nil {
		s.opts.Invalidate()
	}
	return s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) (*Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := s.clock.Now()
	snap, err := s.buildSnapshot(ctx)
	s.metrics.RefreshDuration.Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.Refreshes.WithLabelValues("error").Inc()
		return nil, err
	}

	s.snapshot.Store(snap)
	s.metrics.Refreshes.WithLabelValues("success").Inc()
	s.metrics.LastRefresh.Set(float64(snap.FetchedAt.Unix()))
	s.metrics.CountiesScored.Set(float64(len(snap.Counties)))
	s.logger.Info("county data refreshed",
		"snapshot_id", snap.ID,
		"counties", len(snap.Counties),
		"omitted", len(snap.Omitted),
	)

	s.publish(ctx, snap)
	return snap, nil
}

func (s *Service) buildSnapshot(ctx context.Context) (*Snapshot, error) {
	income, err := s.income.MedianIncome(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch income: %w", err)
	}
	unemployment, cost, err := s.placeholders.Placeholders(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch placeholders: %w", err)
	}

	raw := domain.FactorSet{Income: income, Unemployment: unemployment, CostOfLiving: cost}
	complete, missing := raw.Partition(domain.CountyIDs())
	if len(missing) > 0 {
		if !s.opts.AllowPartial {
			return nil, fmt.Errorf("refresh: %w", missing[0])
		}
		for _, m := range missing {
			s.logger.Warn("county omitted", "county", m.County, "missing", string(m.Kind))
		}
		s.metrics.CountiesOmitted.Add(float64(len(missing)))
	}
	if len(complete) == 0 {
		return nil, fmt.Errorf("refresh: %w", domain.ErrNoData)
	}

	norm, err := domain.NormalizeFactors(raw, complete)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	counties := make([]domain.County, 0, len(complete))
	for _, id := range complete {
		c, err := domain.LookupCounty(id)
		if err != nil {
			return nil, err
		}
		counties = append(counties, c)
	}

	snap := &Snapshot{
		ID:         uuid.NewString(),
		FetchedAt:  s.clock.Now().UTC(),
		Counties:   counties,
		Raw:        raw.Restrict(complete),
		Normalized: norm,
	}
	for _, m := range missing {
		snap.Omitted = append(snap.Omitted, m.County)
	}
	return snap, nil
}

// publish sends the default-weight evaluation to every publisher. Failures
// are logged and counted but do not fail the refresh.
func (s *Service) publish(ctx context.Context, snap *Snapshot) {
	if len(s.publishers) == 0 {
		return
	}
	w, err := s.opts.DefaultWeights.Normalized()
	if err != nil {
		s.logger.Error("default weights unusable, skipping publish", "error", err)
		return
	}
	eval, err := snap.Evaluate(w)
	if err != nil {
		s.logger.Error("evaluate for publish failed", "error", err, "snapshot_id", snap.ID)
		return
	}

	for _, p := range s.publishers {
		if err := p.Publish(ctx, eval); err != nil {
			s.metrics.PublishedResults.WithLabelValues(p.Name(), "error").Inc()
			s.logger.Error("publish failed", "sink", p.Name(), "snapshot_id", snap.ID, "error", err)
			continue
		}
		s.metrics.PublishedResults.WithLabelValues(p.Name(), "success").Inc()
	}
}

// Run loads the first snapshot, retrying with exponential backoff, then
// refreshes on every interval tick or Trigger until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("refresher started", "interval", s.opts.RefreshInterval)
	s.metrics.ServiceRunning.Set(1)
	defer s.metrics.ServiceRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		_, err := s.refresh(ctx)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			s.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		}
		s.logger.Error("initial refresh failed", "error", err, "retry_in", backoff)
		if !s.sleepWithContext(ctx, backoff) {
			s.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}

	ticker := s.clock.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			s.logRefreshError(ctx, s.refresh)
		case <-s.trigger:
			s.logRefreshError(ctx, s.Refresh)
		}
	}
}

func (s *Service) logRefreshError(ctx context.Context, refresh func(context.Context) (*Snapshot, error)) {
	if _, err := refresh(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("refresh failed, keeping previous snapshot", "error", err)
	}
}

// sleepWithContext mirrors retry.SleepWithContext on the injected clock.
func (s *Service) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := s.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
