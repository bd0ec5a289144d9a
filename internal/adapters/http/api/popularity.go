package api

import (
	"context"
	"net/http"

	"github.com/petfolk/podium/internal/domain/popularity"
)

// PopularityDependencies defines the interface for popularity reads.
type PopularityDependencies interface {
	Popularity(ctx context.Context) ([]popularity.Result, error)
}

// PopularityHandler handles popularity snapshot requests.
type PopularityHandler struct {
	deps PopularityDependencies
}

// NewPopularityHandler creates a new popularity handler.
func NewPopularityHandler(deps PopularityDependencies) *PopularityHandler {
	return &PopularityHandler{deps: deps}
}

type popularityResponse struct {
	Popularity []popularity.Result `json:"popularity"`
}

// HandleGet handles GET /popularity requests. The cache layer underneath
// serves a stale snapshot when recomputation fails, so an error here means
// no snapshot has ever been computed.
func (h *PopularityHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	results, err := h.deps.Popularity(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if results == nil {
		results = []popularity.Result{}
	}
	writeJSON(w, http.StatusOK, popularityResponse{Popularity: results})
}
