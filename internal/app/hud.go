package service

import (
	"time"

	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/internal/domain/schedule"
	"github.com/okian/ghostrace/internal/domain/standings"
)

// LeaderboardSnapshot is a read-only view of the current standings.
type LeaderboardSnapshot struct {
	RunID          string               `json:"run_id"`
	GoalLevels     int                  `json:"goal_levels"`
	Rows           []standings.Standing `json:"rows"`
	PlayerRank     int                  `json:"player_rank"`
	PlayerFinished bool                 `json:"player_finished"`
	IsFinalized    bool                 `json:"is_finalized"`
}

// ExtendOffer describes the extension the player may buy.
type ExtendOffer struct {
	Available bool          `json:"available"`
	PayType   model.PayType `json:"pay_type"`
	Cost      int           `json:"cost"`
	Hours     int           `json:"hours"`
}

// NoExtendOffer is returned when no extension can be bought.
var NoExtendOffer = ExtendOffer{PayType: model.PayNone}

// HUDStatus is everything the host needs to draw the event widget.
type HUDStatus struct {
	State            string      `json:"state"`
	ConfigID         string      `json:"config_id"`
	ConfigCursor     int         `json:"config_cursor"`
	HasRun           bool        `json:"has_run"`
	RunID            string      `json:"run_id,omitempty"`
	SecondsRemaining int64       `json:"seconds_remaining"`
	PlayerLevels     int         `json:"player_levels"`
	GoalLevels       int         `json:"goal_levels"`
	Rank             int         `json:"rank"`
	PlayersPerRace   int         `json:"players_per_race"`
	IsFinalized      bool        `json:"is_finalized"`
	HasClaimed       bool        `json:"has_claimed"`
	CanClaim         bool        `json:"can_claim"`
	CanJoin          bool        `json:"can_join"`
	Offer            ExtendOffer `json:"extend_offer"`

	WindowID                 int       `json:"window_id"`
	NextResetLocal           time.Time `json:"next_reset_local"`
	CooldownRemainingSeconds int64     `json:"cooldown_remaining_seconds"`
	GapRemainingSeconds      int64     `json:"gap_remaining_seconds"`
	IneligibleReason         string    `json:"ineligible_reason,omitempty"`
}

// State returns the current flow state.
func (s *Service) State() model.State {
	s.lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// CurrentRun returns a copy of the current run.
func (s *Service) CurrentRun() (model.Run, bool) {
	s.lock()
	defer s.mu.Unlock()
	if s.save.CurrentRun == nil {
		return model.Run{}, false
	}
	return *s.save.CurrentRun.Clone(), true
}

// Leaderboard returns the standings of the current run, truncated to limit
// rows when limit > 0. Queries never advance the simulation.
func (s *Service) Leaderboard(limit int) (LeaderboardSnapshot, bool) {
	s.lock()
	defer s.mu.Unlock()
	run := s.save.CurrentRun
	if run == nil {
		return LeaderboardSnapshot{}, false
	}
	return snapshotOf(run, limit), true
}

func snapshotOf(run *model.Run, limit int) LeaderboardSnapshot {
	rows := standings.Compute(run.Participants(), run.GoalLevels)
	snap := LeaderboardSnapshot{
		RunID:          run.ID,
		GoalLevels:     run.GoalLevels,
		PlayerRank:     standings.RankOf(rows, playerID),
		PlayerFinished: run.PlayerReachedGoal(),
		IsFinalized:    run.IsFinalized,
	}
	if run.IsFinalized && run.FinalRank > 0 {
		snap.PlayerRank = run.FinalRank
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	snap.Rows = rows
	return snap
}

// ExtendOffer returns the open extension offer, or NoExtendOffer.
func (s *Service) ExtendOffer() ExtendOffer {
	s.lock()
	defer s.mu.Unlock()
	return s.offerFor(s.save.CurrentRun)
}

func (s *Service) offerFor(run *model.Run) ExtendOffer {
	if !s.extendAvailable(run) {
		return NoExtendOffer
	}
	p := s.runConfig(run).Extend
	hours := p.Hours
	if hours <= 0 {
		hours = 1
	}
	return ExtendOffer{Available: true, PayType: p.PayType, Cost: p.Cost, Hours: hours}
}

// HUD returns the widget status at the service clock.
func (s *Service) HUD() HUDStatus {
	s.lock()
	defer s.mu.Unlock()

	now := s.now()
	local := now.In(s.loc)
	cfg := s.config()
	state := s.machine.State()

	h := HUDStatus{
		State:                    state.String(),
		ConfigID:                 cfg.ID,
		ConfigCursor:             s.save.ConfigCursor,
		WindowID:                 schedule.WindowID(local, cfg.ResetHourLocal),
		NextResetLocal:           schedule.NextResetLocal(local, cfg.ResetHourLocal),
		CooldownRemainingSeconds: schedule.CooldownRemaining(local, s.save.LastJoinLocalUnixSeconds, cfg.EntryCooldownHours),
		GapRemainingSeconds:      s.gapRemaining(local, cfg),
		Offer:                    NoExtendOffer,
	}

	run := s.save.CurrentRun
	if run != nil && !run.HasClaimed {
		h.IneligibleReason = IneligibleRunPending
	} else {
		h.IneligibleReason = s.ineligibleReason(local, cfg)
		h.CanJoin = h.IneligibleReason == "" && state != model.StateSearching
	}
	if run == nil {
		return h
	}

	snap := snapshotOf(run, 0)
	h.HasRun = true
	h.RunID = run.ID
	h.PlayerLevels = run.Player.LevelsCompleted
	h.GoalLevels = run.GoalLevels
	h.PlayersPerRace = run.PlayersPerRace
	h.Rank = snap.PlayerRank
	h.IsFinalized = run.IsFinalized
	h.HasClaimed = run.HasClaimed
	h.CanClaim = s.claimGuard(run) == ""
	if left := run.EndUTC - now.Unix(); left > 0 && !run.IsFinalized {
		h.SecondsRemaining = left
	}
	if state == model.StateExtendOffer {
		h.Offer = s.offerFor(run)
	}
	return h
}
