package news

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/deusflow/headlines/internal/cache"
	"github.com/deusflow/headlines/internal/logger"
	"github.com/deusflow/headlines/internal/metrics"
)

// Result is a category's full item list and where it came from.
type Result struct {
	Items     []Item
	Cached    bool
	UpdatedAt time.Time
}

// Service serves category items from the cache and runs the aggregation
// pipeline on a miss. Each category has its own cache entry.
type Service struct {
	agg          *Aggregator
	cache        *cache.Store[[]Item]
	metrics      *metrics.Metrics
	group        singleflight.Group
	singleFlight bool
}

type ServiceOption func(*Service)

// WithSingleFlight collapses concurrent misses for one category into a single pipeline run.
func WithSingleFlight(enabled bool) ServiceOption {
	return func(s *Service) {
		s.singleFlight = enabled
	}
}

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(agg *Aggregator, store *cache.Store[[]Item], opts ...ServiceOption) *Service {
	s := &Service{
		agg:          agg,
		cache:        store,
		metrics:      metrics.Global,
		singleFlight: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Items returns the category's items. With fresh set the cache read is skipped,
// but the new result is still written back.
func (s *Service) Items(ctx context.Context, cat Category, fresh bool) (Result, error) {
	if !fresh {
		if entry, ok := s.cache.Read(cat.Name); ok {
			s.metrics.IncrementCacheHits()
			logger.Debug("cache hit", "category", cat.Name, "items", len(entry.Value))
			return Result{Items: entry.Value, Cached: true, UpdatedAt: entry.CapturedAt}, nil
		}
		s.metrics.IncrementCacheMisses()
	}

	entry, err := s.refresh(ctx, cat)
	if err != nil {
		return Result{}, err
	}
	return Result{Items: entry.Value, Cached: false, UpdatedAt: entry.CapturedAt}, nil
}

func (s *Service) refresh(ctx context.Context, cat Category) (cache.Entry[[]Item], error) {
	// Fetches run to completion even if the requesting client goes away.
	ctx = context.WithoutCancel(ctx)

	run := func() (cache.Entry[[]Item], error) {
		logger.Info("aggregating category", "category", cat.Name, "sources", len(cat.Sources))
		items, err := s.agg.Aggregate(ctx, cat.Sources, cat.PerSource)
		if err != nil {
			return cache.Entry[[]Item]{}, fmt.Errorf("category %s: %w", cat.Name, err)
		}
		return s.cache.Write(cat.Name, items), nil
	}

	if !s.singleFlight {
		return run()
	}

	v, err, shared := s.group.Do(cat.Name, func() (interface{}, error) {
		return run()
	})
	if err != nil {
		return cache.Entry[[]Item]{}, err
	}
	if shared {
		logger.Debug("joined in-flight aggregation", "category", cat.Name)
	}
	return v.(cache.Entry[[]Item]), nil
}

// Snapshot returns every category's currently valid cache entry.
func (s *Service) Snapshot() map[string]cache.Entry[[]Item] {
	return s.cache.Snapshot()
}
