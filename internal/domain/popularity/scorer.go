// Package popularity computes composite, cross-game-normalized popularity
// scores from session and game activity, and caches them behind a
// freshness window.
package popularity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/petfolk/podium/internal/adapters/repository"
	"github.com/petfolk/podium/internal/domain/model"
)

// Signal weights. They sum to exactly 1.00, so the composite always lies
// in [0, 1].
const (
	weightDailyPlayers  = 0.30 // w1: distinct contestants yesterday
	weightLivePlayers   = 0.20 // w2: currently active sessions
	weightUpvotes       = 0.25 // w3: total upvotes
	weightMaxDuration   = 0.15 // w4: longest finished session yesterday
	weightDailySessions = 0.10 // w5: session count yesterday

	scoreDecimals = 4
)

// Components carries the raw, un-normalized signal values per game so a
// score can be explained after the fact.
type Components struct {
	W1 int     `json:"w1"` // distinct contestants with a session started yesterday
	W2 int     `json:"w2"` // sessions active right now
	W3 int64   `json:"w3"` // upvotes
	W4 float64 `json:"w4"` // max finished-session duration yesterday, seconds
	W5 int     `json:"w5"` // sessions started yesterday
}

// Result is one game's composite popularity score with its breakdown.
type Result struct {
	GameID     int64      `json:"game_id"`
	Score      float64    `json:"score"`
	Components Components `json:"components"`
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithNow overrides the clock, pinning the "yesterday" reference window.
func WithNow(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// Scorer computes popularity scores for every known game. Three of the
// five signals use a frozen "yesterday" window to smooth short-term noise;
// only the live-session gauge reacts instantly.
type Scorer struct {
	store repository.Reader
	now   func() time.Time
}

// NewScorer creates a Scorer over store.
func NewScorer(store repository.Reader, opts ...Option) *Scorer {
	s := &Scorer{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeAll scores every known game. Results are ordered by game id so a
// cached snapshot is stable across reads. No games yields an empty slice.
func (s *Scorer) ComputeAll(ctx context.Context) ([]Result, error) {
	games, err := s.store.Games(ctx)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	if len(games) == 0 {
		return []Result{}, nil
	}

	yesterday := model.Yesterday(s.now())

	daily, err := s.store.Sessions(ctx, repository.SessionFilter{StartedOn: &yesterday})
	if err != nil {
		return nil, fmt.Errorf("load yesterday's sessions: %w", err)
	}
	active, err := s.store.Sessions(ctx, repository.SessionFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("load active sessions: %w", err)
	}

	raw := make(map[int64]*Components, len(games))
	for _, g := range games {
		raw[g.ID] = &Components{W3: g.Upvotes}
	}

	players := make(map[int64]map[int64]struct{}) // gameID -> distinct contestants yesterday
	for _, sess := range daily {
		c, ok := raw[sess.GameID]
		if !ok {
			continue
		}
		c.W5++
		if players[sess.GameID] == nil {
			players[sess.GameID] = make(map[int64]struct{})
		}
		players[sess.GameID][sess.ContestantID] = struct{}{}
		if !sess.Active() {
			if d := sess.Duration().Seconds(); d > c.W4 {
				c.W4 = d
			}
		}
	}
	for gameID, set := range players {
		raw[gameID].W1 = len(set)
	}
	for _, sess := range active {
		if c, ok := raw[sess.GameID]; ok {
			c.W2++
		}
	}

	// Per-dimension maxima across all games. A dimension whose max is 0
	// normalizes to 0 for every game rather than dividing by zero.
	var maxW1, maxW2, maxW5 int
	var maxW3 int64
	var maxW4 float64
	for _, c := range raw {
		maxW1 = max(maxW1, c.W1)
		maxW2 = max(maxW2, c.W2)
		maxW3 = max(maxW3, c.W3)
		maxW4 = math.Max(maxW4, c.W4)
		maxW5 = max(maxW5, c.W5)
	}

	results := make([]Result, 0, len(games))
	for _, g := range games {
		c := raw[g.ID]
		score := weightDailyPlayers*normInt(c.W1, maxW1) +
			weightLivePlayers*normInt(c.W2, maxW2) +
			weightUpvotes*normInt64(c.W3, maxW3) +
			weightMaxDuration*normFloat(c.W4, maxW4) +
			weightDailySessions*normInt(c.W5, maxW5)

		results = append(results, Result{
			GameID:     g.ID,
			Score:      round(score, scoreDecimals),
			Components: *c,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].GameID < results[j].GameID })
	return results, nil
}

func normInt(v, max int) float64 {
	if max == 0 {
		return 0
	}
	return float64(v) / float64(max)
}

func normInt64(v, max int64) float64 {
	if max == 0 {
		return 0
	}
	return float64(v) / float64(max)
}

func normFloat(v, max float64) float64 {
	if max == 0 {
		return 0
	}
	return v / max
}

func round(v float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(v*shift) / shift
}
