// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	service "github.com/okian/ghostrace/internal/app"
	"github.com/okian/ghostrace/internal/domain/model"
)

// Race is the command and query surface the handlers drive.
type Race interface {
	OnEnterMain(ctx context.Context, level int, inTutorial bool, localNow time.Time)
	OnLevelWin(ctx context.Context, level int, inTutorial bool, localNow time.Time)
	Join(ctx context.Context) error
	ConfirmSearchingFinished(ctx context.Context) (model.Run, error)
	Claim(ctx context.Context) (service.ClaimResult, error)
	Extend1H(ctx context.Context) error
	DeclineExtend(ctx context.Context) error

	HUD() service.HUDStatus
	CurrentRun() (model.Run, bool)
	Leaderboard(limit int) (service.LeaderboardSnapshot, bool)
	ExtendOffer() service.ExtendOffer
}

// Debug exposes the test-only commands.
type Debug interface {
	ForceFinalize(ctx context.Context) error
	ClearCurrentRun(ctx context.Context)
	DebugStepBot(ctx context.Context, botID string) (int, error)
	ResetProgress(ctx context.Context)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Race
	Debug
	StatsProvider
}

// NotificationSource hands out buffered notifications.
type NotificationSource interface {
	Drain(max int) []model.Notification
}

// Server wires HTTP routes for the race API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	stateHandler         *StateHandler
	leaderboardHandler   *LeaderboardHandler
	commandsHandler      *CommandsHandler
	notificationsHandler *NotificationsHandler
	debug                bool
}

// Option configures the Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxLimit int
	clock    func() time.Time
	debug    bool
}

// WithMaxLimit caps the leaderboard and notification page size.
func WithMaxLimit(n int) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// WithClock sets the clock used when a request carries no local time.
func WithClock(clock func() time.Time) Option {
	return func(o *serverOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithDebugRoutes enables the /debug routes.
func WithDebugRoutes(enabled bool) Option {
	return func(o *serverOptions) { o.debug = enabled }
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, notes NotificationSource, opts ...Option) *Server {
	o := serverOptions{maxLimit: 50, clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(deps),
		stateHandler:         NewStateHandler(deps),
		leaderboardHandler:   NewLeaderboardHandler(deps, o.maxLimit),
		commandsHandler:      NewCommandsHandler(deps, deps, o.clock),
		notificationsHandler: NewNotificationsHandler(notes, o.maxLimit),
		debug:                o.debug,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/state", MetricsMiddleware(s.stateHandler.HandleState, "state"))
	mux.HandleFunc("/run", MetricsMiddleware(s.stateHandler.HandleRun, "run"))
	mux.HandleFunc("/extend-offer", MetricsMiddleware(s.stateHandler.HandleExtendOffer, "extend_offer"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/notifications", MetricsMiddleware(s.notificationsHandler.HandleDrain, "notifications"))

	c := s.commandsHandler
	mux.HandleFunc("/enter-main", MetricsMiddleware(c.HandleEnterMain, "enter_main"))
	mux.HandleFunc("/level-win", MetricsMiddleware(c.HandleLevelWin, "level_win"))
	mux.HandleFunc("/join", MetricsMiddleware(c.HandleJoin, "join"))
	mux.HandleFunc("/searching/finish", MetricsMiddleware(c.HandleSearchingFinished, "searching_finish"))
	mux.HandleFunc("/claim", MetricsMiddleware(c.HandleClaim, "claim"))
	mux.HandleFunc("/extend", MetricsMiddleware(c.HandleExtend, "extend"))
	mux.HandleFunc("/extend/decline", MetricsMiddleware(c.HandleDeclineExtend, "extend_decline"))

	if !s.debug {
		return
	}
	mux.HandleFunc("/debug/finalize", MetricsMiddleware(c.HandleForceFinalize, "debug_finalize"))
	mux.HandleFunc("/debug/clear", MetricsMiddleware(c.HandleClearRun, "debug_clear"))
	mux.HandleFunc("/debug/step-bot", MetricsMiddleware(c.HandleStepBot, "debug_step_bot"))
	mux.HandleFunc("/debug/reset", MetricsMiddleware(c.HandleReset, "debug_reset"))
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

// writeCommandError maps a service error: rejections are 409 with the
// reason as code.
func writeCommandError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrRejected) {
		writeError(w, http.StatusConflict, service.ReasonOf(err), err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
