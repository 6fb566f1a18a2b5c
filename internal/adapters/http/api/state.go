package api

import "net/http"

// StateHandler serves the read-only race views.
type StateHandler struct {
	deps Race
}

// NewStateHandler creates a new state handler.
func NewStateHandler(deps Race) *StateHandler {
	return &StateHandler{deps: deps}
}

// HandleState handles GET /state with the HUD status.
func (h *StateHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.HUD())
}

// HandleRun handles GET /run.
func (h *StateHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	run, ok := h.deps.CurrentRun()
	if !ok {
		writeError(w, http.StatusNotFound, "no_run", ErrNoRun)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HandleExtendOffer handles GET /extend-offer.
func (h *StateHandler) HandleExtendOffer(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ExtendOffer())
}
