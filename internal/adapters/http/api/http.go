// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/petfolk/podium/internal/domain/leaderboard"
	"github.com/petfolk/podium/internal/domain/popularity"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// GlobalLeaderboard ranks contestants across all games, optionally
	// restricted to sessions started on one UTC calendar date.
	GlobalLeaderboard(ctx context.Context, filterDate *time.Time) ([]leaderboard.Row, error)

	// GameLeaderboard ranks contestants within one game.
	GameLeaderboard(ctx context.Context, gameID int64, filterDate *time.Time) ([]leaderboard.Row, error)

	// Popularity returns the cached popularity snapshot, recomputing when
	// stale.
	Popularity(ctx context.Context) ([]popularity.Result, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	popularityHandler  *PopularityHandler
	limiter            *ipRateLimiter
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithRateLimit enables per-IP rate limiting on the read endpoints.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 && burst > 0 {
			s.limiter = newIPRateLimiter(rps, burst)
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		leaderboardHandler: NewLeaderboardHandler(deps),
		popularityHandler:  NewPopularityHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(RequestIDMiddleware)
	if s.limiter != nil {
		r.Use(s.limiter.middleware)
	}

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGlobal, "leaderboard"))
	r.Get("/leaderboard/{gameID}", MetricsMiddleware(s.leaderboardHandler.HandleGame, "leaderboard_game"))
	r.Get("/popularity", MetricsMiddleware(s.popularityHandler.HandleGet, "popularity"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// parseDateParam reads the optional ?date=YYYY-MM-DD query parameter. A
// missing parameter yields (nil, nil); an unparseable one is a client
// error, never a best-effort pass-through.
func parseDateParam(r *http.Request) (*time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
	if err != nil {
		return nil, ErrBadDate
	}
	return &d, nil
}
