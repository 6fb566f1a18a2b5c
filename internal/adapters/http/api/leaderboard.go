package api

import (
	"net/http"
	"strconv"
)

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps     Race
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps Race, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N. Without a limit
// every row is returned.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	n := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if v > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		n = v
	}
	snap, ok := h.deps.Leaderboard(n)
	if !ok {
		writeError(w, http.StatusNotFound, "no_run", ErrNoRun)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
