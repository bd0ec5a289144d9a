package popularity

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petfolk/podium/pkg/metrics"
)

// DefaultTTL is the snapshot freshness window.
const DefaultTTL = 300 * time.Second

// Computer produces a full set of popularity results.
type Computer interface {
	ComputeAll(ctx context.Context) ([]Result, error)
}

// snapshot is an immutable published computation. It is replaced wholesale
// via the atomic pointer, never patched, so readers can never observe a
// half-updated pairing of timestamp and results.
type snapshot struct {
	computedAt time.Time
	results    []Result
}

// flight tracks one in-progress recomputation.
type flight struct {
	done    chan struct{}
	results []Result
	err     error
}

// CacheOption applies a configuration option to the Cache.
type CacheOption func(*Cache)

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the cache clock.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// Cache holds the most recent popularity snapshot and coordinates
// recomputation across concurrent callers. Exactly one recomputation runs
// per staleness episode: the first caller to find the snapshot stale
// becomes the leader and computes outside the lock; callers arriving while
// the leader is in flight are served the last-known snapshot, or block for
// the fresh result when nothing has ever been computed.
type Cache struct {
	computer Computer
	ttl      time.Duration
	now      func() time.Time

	snap atomic.Pointer[snapshot]

	mu       sync.Mutex // guards inflight
	inflight *flight
}

// NewCache creates a Cache over computer. One instance is constructed at
// service startup and shared by all request handlers.
func NewCache(computer Computer, opts ...CacheOption) *Cache {
	c := &Cache{
		computer: computer,
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached popularity results, recomputing when stale.
// Within the freshness window every caller observes the identical
// published snapshot; callers must treat the returned slice as read-only.
func (c *Cache) Get(ctx context.Context) ([]Result, error) {
	if s := c.fresh(); s != nil {
		metrics.RecordPopularityCacheHit()
		return s.results, nil
	}
	metrics.RecordPopularityCacheMiss()

	c.mu.Lock()
	// Another caller may have published while we waited for the lock.
	if s := c.fresh(); s != nil {
		c.mu.Unlock()
		return s.results, nil
	}
	if fl := c.inflight; fl != nil {
		c.mu.Unlock()
		// A recomputation is already running: serve the last-known
		// snapshot if any, otherwise wait for the leader's result.
		if s := c.snap.Load(); s != nil {
			metrics.RecordPopularityServedStale()
			return s.results, nil
		}
		select {
		case <-fl.done:
		case <-ctx.Done():
			return nil, fmt.Errorf("await popularity recompute: %w", ctx.Err())
		}
		if fl.err != nil {
			return nil, fl.err
		}
		return fl.results, nil
	}
	fl := &flight{done: make(chan struct{})}
	c.inflight = fl
	c.mu.Unlock()

	// Leader path. The store query runs outside the lock so leaderboard
	// reads and stale-serving callers proceed unimpeded.
	start := time.Now()
	results, err := c.computer.ComputeAll(ctx)
	metrics.RecordPopularityRecomputeDuration(float64(time.Since(start).Milliseconds()))

	c.mu.Lock()
	c.inflight = nil
	if err == nil {
		c.snap.Store(&snapshot{computedAt: c.now(), results: results})
		metrics.UpdatePopularityGamesScored(len(results))
	}
	c.mu.Unlock()

	if err != nil {
		fl.err = fmt.Errorf("recompute popularity: %w", err)
	} else {
		fl.results = results
	}
	close(fl.done)

	if err != nil {
		// Recompute failed: keep and serve the previous snapshot if one
		// exists, and only propagate when nothing was ever computed.
		if s := c.snap.Load(); s != nil {
			metrics.RecordPopularityServedStale()
			return s.results, nil
		}
		return nil, fl.err
	}
	return results, nil
}

// Invalidate forces the next Get to recompute while keeping the current
// results available for degraded serving.
func (c *Cache) Invalidate() {
	if s := c.snap.Load(); s != nil {
		c.snap.Store(&snapshot{results: s.results})
	}
}

// ComputedAt reports when the current snapshot was published; the zero
// time means no snapshot exists or it was invalidated.
func (c *Cache) ComputedAt() time.Time {
	if s := c.snap.Load(); s != nil {
		return s.computedAt
	}
	return time.Time{}
}

// fresh returns the snapshot while it is inside the freshness window.
func (c *Cache) fresh() *snapshot {
	s := c.snap.Load()
	if s == nil || s.computedAt.IsZero() {
		return nil
	}
	if c.now().Sub(s.computedAt) >= c.ttl {
		return nil
	}
	return s
}
