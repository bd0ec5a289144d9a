package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/petfolk/podium/internal/domain/leaderboard"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	GlobalLeaderboard(ctx context.Context, filterDate *time.Time) ([]leaderboard.Row, error)
	GameLeaderboard(ctx context.Context, gameID int64, filterDate *time.Time) ([]leaderboard.Row, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// globalEntry is one row of the global leaderboard response.
type globalEntry struct {
	ContestantName string `json:"contestant_name"`
	TotalScore     int64  `json:"total_score"`
}

// gameEntry is one row of the per-game leaderboard response.
type gameEntry struct {
	ContestantName string `json:"contestant_name"`
	Score          int64  `json:"score"`
}

type globalLeaderboardResponse struct {
	Leaderboard []globalEntry `json:"leaderboard"`
}

type gameLeaderboardResponse struct {
	Leaderboard []gameEntry `json:"leaderboard"`
}

// HandleGlobal handles GET /leaderboard?date=YYYY-MM-DD requests.
func (h *LeaderboardHandler) HandleGlobal(w http.ResponseWriter, r *http.Request) {
	filterDate, err := parseDateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_date", err)
		return
	}

	rows, err := h.deps.GlobalLeaderboard(r.Context(), filterDate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	entries := make([]globalEntry, len(rows))
	for i, row := range rows {
		entries[i] = globalEntry{ContestantName: row.ContestantName, TotalScore: row.TotalScore}
	}
	writeJSON(w, http.StatusOK, globalLeaderboardResponse{Leaderboard: entries})
}

// HandleGame handles GET /leaderboard/{gameID}?date=YYYY-MM-DD requests.
func (h *LeaderboardHandler) HandleGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_game_id", ErrBadGameID)
		return
	}

	filterDate, err := parseDateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_date", err)
		return
	}

	rows, err := h.deps.GameLeaderboard(r.Context(), gameID, filterDate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	entries := make([]gameEntry, len(rows))
	for i, row := range rows {
		entries[i] = gameEntry{ContestantName: row.ContestantName, Score: row.TotalScore}
	}
	writeJSON(w, http.StatusOK, gameLeaderboardResponse{Leaderboard: entries})
}
