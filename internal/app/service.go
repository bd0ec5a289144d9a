// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/petfolk/podium/internal/adapters/repository"
	"github.com/petfolk/podium/internal/config"
	"github.com/petfolk/podium/internal/demo"
	"github.com/petfolk/podium/internal/domain/leaderboard"
	"github.com/petfolk/podium/internal/domain/popularity"
	"github.com/petfolk/podium/pkg/logger"
	"github.com/petfolk/podium/pkg/metrics"
)

// Service implements the API dependencies for the analytics engine. It
// owns the activity store reader, the leaderboard aggregator, and the
// popularity cache; one instance is constructed at startup and shared by
// all request handlers.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Reader
	agg      *leaderboard.Aggregator
	cache    *popularity.Cache
	memStore *repository.MemoryStore
	pgStore  *repository.PostgresStore

	// Configuration
	storeBackend  string
	postgresDSN   string
	queryTimeout  time.Duration
	popularityTTL time.Duration
	demoSeed      bool
	now           func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithStoreBackend selects the activity store backend.
func WithStoreBackend(backend string) Option {
	return func(s *Service) {
		if backend != "" {
			s.storeBackend = backend
		}
	}
}

// WithPostgresDSN sets the connection string for the postgres backend.
func WithPostgresDSN(dsn string) Option {
	return func(s *Service) {
		s.postgresDSN = dsn
	}
}

// WithQueryTimeout bounds each activity store query.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.queryTimeout = d
		}
	}
}

// WithPopularityTTL sets the popularity snapshot freshness window.
func WithPopularityTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.popularityTTL = d
		}
	}
}

// WithDemoSeed populates the memory store with generated activity at
// startup.
func WithDemoSeed(enabled bool) Option {
	return func(s *Service) {
		s.demoSeed = enabled
	}
}

// WithReader injects a pre-built activity store reader, bypassing backend
// construction. Used by tests.
func WithReader(r repository.Reader) Option {
	return func(s *Service) {
		s.store = r
	}
}

// WithClock overrides the engine clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeBackend:  config.StoreMemory,
		queryTimeout:  5 * time.Second,
		popularityTTL: popularity.DefaultTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting analytics service...")

	if s.store == nil {
		switch s.storeBackend {
		case config.StorePostgres:
			pg, err := repository.NewPostgresStore(ctx, s.postgresDSN,
				repository.WithQueryTimeout(s.queryTimeout),
			)
			if err != nil {
				return fmt.Errorf("open activity store: %w", err)
			}
			s.pgStore = pg
			s.store = repository.NewBreakerReader(pg)
			s.logger.Info(ctx, "using postgres activity store")
		default:
			s.memStore = repository.NewMemoryStore()
			s.store = s.memStore
			s.logger.Info(ctx, "using in-memory activity store")
		}
	}

	if s.demoSeed && s.memStore != nil {
		if err := demo.Seed(ctx, s.memStore, s.now()); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		s.logger.Info(ctx, "seeded demo activity data")
	}

	s.agg = leaderboard.New(s.store)
	scorer := popularity.NewScorer(s.store, popularity.WithNow(s.now))
	s.cache = popularity.NewCache(scorer,
		popularity.WithTTL(s.popularityTTL),
		popularity.WithClock(s.now),
	)

	s.started = true
	s.logger.Info(ctx, "analytics service started",
		logger.String("store", s.storeBackend),
		logger.Duration("popularityTTL", s.popularityTTL),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping analytics service...")

	if s.pgStore != nil {
		if err := s.pgStore.Close(); err != nil {
			s.logger.Warn(ctx, "closing activity store failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "analytics service stopped")
}

// GlobalLeaderboard ranks contestants across all games. Always recomputed
// from source data so fresh score assignments show up immediately.
func (s *Service) GlobalLeaderboard(ctx context.Context, filterDate *time.Time) ([]leaderboard.Row, error) {
	metrics.RecordLeaderboardQuery()
	start := time.Now()
	rows, err := s.agg.Global(ctx, filterDate)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordLeaderboardError()
		return nil, err
	}
	return rows, nil
}

// GameLeaderboard ranks contestants within one game.
func (s *Service) GameLeaderboard(ctx context.Context, gameID int64, filterDate *time.Time) ([]leaderboard.Row, error) {
	metrics.RecordLeaderboardQuery()
	start := time.Now()
	rows, err := s.agg.Game(ctx, gameID, filterDate)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordLeaderboardError()
		return nil, err
	}
	return rows, nil
}

// Popularity returns the cached popularity snapshot, recomputing when
// stale.
func (s *Service) Popularity(ctx context.Context) ([]popularity.Result, error) {
	return s.cache.Get(ctx)
}

// InvalidatePopularity forces the next popularity read to recompute.
func (s *Service) InvalidatePopularity() {
	s.cache.Invalidate()
}

// MemoryStore exposes the in-memory store's mutator surface when the
// memory backend is active; nil otherwise. Used by tests and local tools.
func (s *Service) MemoryStore() *repository.MemoryStore {
	return s.memStore
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":                s.started,
		"store_backend":          s.storeBackend,
		"popularity_ttl_seconds": int(s.popularityTTL.Seconds()),
	}

	if s.started {
		if at := s.cache.ComputedAt(); !at.IsZero() {
			stats["popularity_computed_at"] = at.UTC().Format(time.RFC3339)
		}
	}
	return stats
}

// UpdateMetrics refreshes gauges derived from service state. Called
// periodically from a background updater.
func (s *Service) UpdateMetrics() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return
	}
	if at := s.cache.ComputedAt(); !at.IsZero() {
		metrics.UpdatePopularitySnapshotAge(s.now().Sub(at).Seconds())
	}
}
