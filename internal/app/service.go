// Package service is the race lifecycle orchestrator. It owns the current
// run and the save record and coordinates the scheduler, ghost simulator,
// roster builder and state machine behind one command surface.
//
// The service is organized in sections: config and state (this file),
// eligibility, bots, lifecycle, hud, rewards, debug and notify.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/ghostrace/internal/adapters/repository"
	"github.com/okian/ghostrace/internal/config"
	"github.com/okian/ghostrace/internal/domain/fsm"
	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/internal/domain/popup"
	"github.com/okian/ghostrace/pkg/logger"
	"github.com/okian/ghostrace/pkg/metrics"
)

const playerID = "player"

// Service implements the race event command surface.
type Service struct {
	mu sync.Mutex

	// Collaborators
	store   repository.Store
	granter RewardGranter
	ads     AdWatcher
	wallet  Wallet
	clock   func() time.Time
	loc     *time.Location
	rng     *rand.Rand

	// Configuration
	configs    []model.EventConfig
	pool       model.BotPool
	playerName string

	// State
	initialized bool
	machine     *fsm.Machine
	save        model.Save
	popups      popup.Tracker
	playerLevel int
	inTutorial  bool
	pending     []model.Notification

	busMu       sync.RWMutex
	subscribers map[int]func(model.Notification)
	nextSubID   int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used by commands without an explicit time.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the player's local time zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithRewardGranter sets the host reward callback.
func WithRewardGranter(g RewardGranter) Option {
	return func(s *Service) { s.granter = g }
}

// WithAdWatcher sets the host ad callback used by ad-paid extensions.
func WithAdWatcher(a AdWatcher) Option {
	return func(s *Service) { s.ads = a }
}

// WithWallet sets the host currency callback used by coin-paid extensions.
func WithWallet(w Wallet) Option {
	return func(s *Service) { s.wallet = w }
}

// WithSeed makes roster building reproducible.
func WithSeed(seed int64) Option {
	return func(s *Service) { s.rng = rand.New(rand.NewSource(seed)) } //nolint:gosec // gameplay randomness
}

// WithPlayerName sets the display name of the player row.
func WithPlayerName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.playerName = name
		}
	}
}

// New constructs a Service. It must be initialized before use.
func New(opts ...Option) *Service {
	s := &Service{
		clock:       time.Now,
		loc:         time.Local,
		playerName:  "You",
		subscribers: make(map[int]func(model.Notification)),
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // gameplay randomness
	}
	return s
}

// Initialize loads the save through store and restores the flow. A nil store
// keeps the save in memory. An unreadable save is discarded and replaced by
// a clean idle one; an interrupted search is rolled back to idle.
func (s *Service) Initialize(ctx context.Context, configs []model.EventConfig, store repository.Store, initialLevel int, inTutorial bool, pool model.BotPool) error {
	if err := config.ValidateEvents(configs); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if store == nil {
		store = repository.NewMemoryStore()
	}

	s.mu.Lock()
	if s.machine != nil {
		s.machine.Close()
	}
	s.configs = append([]model.EventConfig(nil), configs...)
	s.store = store
	s.pool = pool
	s.playerLevel = initialLevel
	s.inTutorial = inTutorial
	s.pending = nil

	save := s.loadSave(ctx)
	s.save = save
	s.popups = popup.NewTracker(save.SeenPopupTypes)
	state := s.recover(ctx)

	s.machine = fsm.New(state)
	s.machine.OnChange(s.onStateChange)
	s.save.LastFlowState = state
	metrics.UpdateState(int(state))
	s.initialized = true

	now := s.now()
	s.expireClaimed(ctx, now)
	s.checkTimeUp(ctx, now)
	s.refreshEligibility(ctx, now.In(s.loc), false)
	s.persist(ctx)
	s.note(ctx, "race service initialized",
		logger.String("state", s.machine.State().String()),
		logger.Int("config_cursor", s.save.ConfigCursor),
		logger.Int("bots", len(pool.Bots)),
	)
	s.emitRun()
	s.unlockAndFlush()
	return nil
}

func (s *Service) loadSave(ctx context.Context) model.Save {
	save, err := s.store.Load(ctx)
	switch {
	case err == nil:
		return save
	case errors.Is(err, repository.ErrNotFound):
		return model.NewSave()
	case errors.Is(err, repository.ErrCorrupt):
		s.logger.Warn(ctx, "save corrupt, starting clean", logger.Error(err))
		return model.NewSave()
	default:
		s.logger.Error(ctx, "save unreadable, starting clean", logger.Error(err))
		return model.NewSave()
	}
}

// recover fixes the loaded save and returns the state to resume in.
func (s *Service) recover(ctx context.Context) model.State {
	sv := &s.save
	if sv.ConfigCursor < 0 || sv.ConfigCursor >= len(s.configs) {
		s.logger.Warn(ctx, "config cursor out of range, clamping", logger.Int("cursor", sv.ConfigCursor))
		sv.ConfigCursor = clampInt(sv.ConfigCursor, 0, len(s.configs)-1)
	}
	if sv.CurrentRun != nil && !sv.CurrentRun.Valid() {
		s.logger.Warn(ctx, "discarding invalid run", logger.String("run_id", sv.CurrentRun.ID))
		sv.CurrentRun = nil
	}

	switch {
	case sv.LastFlowState == model.StateSearching:
		s.logger.Info(ctx, "search was interrupted, rolling back to idle")
		sv.CurrentRun = nil
		sv.SearchingStartUTC = 0
		return model.StateIdle
	case sv.CurrentRun == nil:
		return model.StateIdle
	case sv.CurrentRun.IsFinalized:
		return model.StateEnded
	case sv.LastFlowState == model.StateExtendOffer:
		return model.StateExtendOffer
	default:
		return model.StateInRace
	}
}

// Close drops every subscriber and listener. The service can be initialized
// again afterwards.
func (s *Service) Close() {
	s.mu.Lock()
	if s.machine != nil {
		s.machine.Close()
	}
	s.initialized = false
	s.pending = nil
	s.mu.Unlock()

	s.busMu.Lock()
	s.subscribers = make(map[int]func(model.Notification))
	s.busMu.Unlock()
}

// lock acquires the service lock and panics when uninitialized.
func (s *Service) lock() {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		panic(ErrNotInitialized)
	}
}

func (s *Service) now() time.Time {
	return s.clock()
}

func (s *Service) config() model.EventConfig {
	return s.configs[clampInt(s.save.ConfigCursor, 0, len(s.configs)-1)]
}

// runConfig returns the config a run was created with.
func (s *Service) runConfig(run *model.Run) model.EventConfig {
	if run == nil {
		return s.config()
	}
	return s.configs[clampInt(run.ConfigIndex, 0, len(s.configs)-1)]
}

// setState moves the machine and logs an illegal transition instead of
// failing the command.
func (s *Service) setState(ctx context.Context, to model.State) bool {
	changed, err := s.machine.Set(to)
	if err != nil {
		s.logger.Error(ctx, "state transition refused", logger.Error(err))
		return false
	}
	return changed
}

func (s *Service) onStateChange(from, to model.State) {
	s.save.LastFlowState = to
	metrics.UpdateState(int(to))
	s.pending = append(s.pending, model.Notification{Kind: model.KindStateChanged, From: from, To: to})
}

// persist writes the save. Failures are logged and counted; the in-memory
// state stays authoritative.
func (s *Service) persist(ctx context.Context) {
	start := time.Now()
	s.save.SeenPopupTypes = s.popups.IDs()
	err := s.store.Save(ctx, s.save)
	metrics.RecordSaveLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordSaveFailure()
		s.logger.Error(ctx, "save failed", logger.Error(err))
	}
}

// commit ends a mutating command: persist, then publish the run.
func (s *Service) commit(ctx context.Context) {
	s.persist(ctx)
	s.emitRun()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]any{
		"initialized": s.initialized,
		"configs":     len(s.configs),
		"bots":        len(s.pool.Bots),
	}
	if !s.initialized {
		return stats
	}
	stats["state"] = s.machine.State().String()
	stats["configCursor"] = s.save.ConfigCursor
	stats["playerLevel"] = s.playerLevel
	if run := s.save.CurrentRun; run != nil {
		stats["runId"] = run.ID
		stats["opponents"] = len(run.Opponents)
		stats["finalized"] = run.IsFinalized
	}
	s.busMu.RLock()
	stats["subscribers"] = len(s.subscribers)
	s.busMu.RUnlock()
	return stats
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
