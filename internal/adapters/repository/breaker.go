package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/petfolk/podium/internal/domain/model"
	"github.com/petfolk/podium/pkg/metrics"
)

// Breaker trip thresholds. A store that keeps failing is given a cooldown
// instead of being hammered by every popularity recomputation.
const (
	breakerFailureThreshold = 5
	breakerCooldown         = 30 * time.Second
)

// BreakerReader wraps a Reader with a circuit breaker. While the breaker is
// open, queries fail fast with ErrStoreUnavailable so the popularity cache
// degrades to its last snapshot instead of stalling on a dead store.
type BreakerReader struct {
	inner    Reader
	sessions *gobreaker.CircuitBreaker[[]model.Session]
	games    *gobreaker.CircuitBreaker[[]model.Game]
	names    *gobreaker.CircuitBreaker[map[int64]string]
}

// NewBreakerReader wraps inner with per-query circuit breakers.
func NewBreakerReader(inner Reader) *BreakerReader {
	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:    name,
			Timeout: breakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailureThreshold
			},
		}
	}
	return &BreakerReader{
		inner:    inner,
		sessions: gobreaker.NewCircuitBreaker[[]model.Session](settings("store.sessions")),
		games:    gobreaker.NewCircuitBreaker[[]model.Game](settings("store.games")),
		names:    gobreaker.NewCircuitBreaker[map[int64]string](settings("store.contestant_names")),
	}
}

// Sessions returns sessions matching filter.
func (b *BreakerReader) Sessions(ctx context.Context, filter SessionFilter) ([]model.Session, error) {
	out, err := b.sessions.Execute(func() ([]model.Session, error) {
		return b.inner.Sessions(ctx, filter)
	})
	if err != nil {
		return nil, breakerErr(err)
	}
	return out, nil
}

// Games returns all known games.
func (b *BreakerReader) Games(ctx context.Context) ([]model.Game, error) {
	out, err := b.games.Execute(func() ([]model.Game, error) {
		return b.inner.Games(ctx)
	})
	if err != nil {
		return nil, breakerErr(err)
	}
	return out, nil
}

// ContestantNames resolves contestant ids to display names.
func (b *BreakerReader) ContestantNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	out, err := b.names.Execute(func() (map[int64]string, error) {
		return b.inner.ContestantNames(ctx, ids)
	})
	if err != nil {
		return nil, breakerErr(err)
	}
	return out, nil
}

// breakerErr maps breaker-open states onto the store sentinel so callers
// handle a tripped breaker like any other store outage.
func breakerErr(err error) error {
	metrics.RecordStoreError()
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
