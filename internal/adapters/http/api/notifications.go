package api

import (
	"net/http"
	"strconv"

	"github.com/okian/ghostrace/internal/domain/model"
)

// NotificationsHandler drains the notification buffer.
type NotificationsHandler struct {
	source   NotificationSource
	maxLimit int
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(source NotificationSource, maxLimit int) *NotificationsHandler {
	return &NotificationsHandler{source: source, maxLimit: maxLimit}
}

// HandleDrain handles GET /notifications?max=N. Returned notifications are
// removed from the buffer.
func (h *NotificationsHandler) HandleDrain(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if h.source == nil {
		writeJSON(w, http.StatusOK, []model.Notification{})
		return
	}
	n := h.maxLimit
	if s := r.URL.Query().Get("max"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		n = min(v, h.maxLimit)
	}
	out := h.source.Drain(n)
	if out == nil {
		out = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, out)
}
