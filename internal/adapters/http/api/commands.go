package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// levelRequest is the body of POST /enter-main and POST /level-win.
type levelRequest struct {
	Level      int    `json:"level"`
	InTutorial bool   `json:"in_tutorial"`
	LocalNow   string `json:"local_now,omitempty"`
}

func (l levelRequest) validate() error {
	if l.Level < 0 {
		return errors.New("level must not be negative")
	}
	if strings.TrimSpace(l.LocalNow) != "" {
		if _, err := time.Parse(time.RFC3339, l.LocalNow); err != nil {
			return errors.New("invalid local_now; must be RFC3339")
		}
	}
	return nil
}

type ackResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

type stepResponse struct {
	BotID  string `json:"bot_id"`
	Gained int    `json:"gained"`
}

// CommandsHandler handles the state-changing routes.
type CommandsHandler struct {
	race  Race
	debug Debug
	clock func() time.Time
}

// NewCommandsHandler creates a new commands handler.
func NewCommandsHandler(race Race, debug Debug, clock func() time.Time) *CommandsHandler {
	if clock == nil {
		clock = time.Now
	}
	return &CommandsHandler{race: race, debug: debug, clock: clock}
}

func (h *CommandsHandler) ack(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, ackResponse{Status: "ok", State: h.race.HUD().State})
}

// decodeLevel reads a level request; an empty body means level 0 now.
func (h *CommandsHandler) decodeLevel(w http.ResponseWriter, r *http.Request) (levelRequest, time.Time, bool) {
	var req levelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return req, time.Time{}, false
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return req, time.Time{}, false
	}
	now := h.clock()
	if req.LocalNow != "" {
		now, _ = time.Parse(time.RFC3339, req.LocalNow)
	}
	return req, now, true
}

// HandleEnterMain handles POST /enter-main.
func (h *CommandsHandler) HandleEnterMain(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	req, now, ok := h.decodeLevel(w, r)
	if !ok {
		return
	}
	h.race.OnEnterMain(r.Context(), req.Level, req.InTutorial, now)
	h.ack(w)
}

// HandleLevelWin handles POST /level-win.
func (h *CommandsHandler) HandleLevelWin(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	req, now, ok := h.decodeLevel(w, r)
	if !ok {
		return
	}
	h.race.OnLevelWin(r.Context(), req.Level, req.InTutorial, now)
	h.ack(w)
}

// HandleJoin handles POST /join.
func (h *CommandsHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if err := h.race.Join(r.Context()); err != nil {
		writeCommandError(w, err)
		return
	}
	h.ack(w)
}

// HandleSearchingFinished handles POST /searching/finish and returns the
// new run.
func (h *CommandsHandler) HandleSearchingFinished(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	run, err := h.race.ConfirmSearchingFinished(r.Context())
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

// HandleClaim handles POST /claim.
func (h *CommandsHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	res, err := h.race.Claim(r.Context())
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleExtend handles POST /extend.
func (h *CommandsHandler) HandleExtend(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if err := h.race.Extend1H(r.Context()); err != nil {
		writeCommandError(w, err)
		return
	}
	h.ack(w)
}

// HandleDeclineExtend handles POST /extend/decline.
func (h *CommandsHandler) HandleDeclineExtend(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if err := h.race.DeclineExtend(r.Context()); err != nil {
		writeCommandError(w, err)
		return
	}
	h.ack(w)
}

// HandleForceFinalize handles POST /debug/finalize.
func (h *CommandsHandler) HandleForceFinalize(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if err := h.debug.ForceFinalize(r.Context()); err != nil {
		writeCommandError(w, err)
		return
	}
	h.ack(w)
}

// HandleClearRun handles POST /debug/clear.
func (h *CommandsHandler) HandleClearRun(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	h.debug.ClearCurrentRun(r.Context())
	h.ack(w)
}

// HandleStepBot handles POST /debug/step-bot?bot=ID.
func (h *CommandsHandler) HandleStepBot(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("bot"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing bot", ErrBadRequest))
		return
	}
	gained, err := h.debug.DebugStepBot(r.Context(), id)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stepResponse{BotID: id, Gained: gained})
}

// HandleReset handles POST /debug/reset.
func (h *CommandsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	h.debug.ResetProgress(r.Context())
	h.ack(w)
}
