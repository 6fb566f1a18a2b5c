package service

import (
	"context"
	"time"

	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/internal/domain/schedule"
	"github.com/okian/ghostrace/pkg/logger"
)

// Ineligibility reasons reported by the HUD.
const (
	IneligibleDisabled   = "disabled"
	IneligibleLevel      = "level_too_low"
	IneligibleTutorial   = "in_tutorial"
	IneligibleCooldown   = "entry_cooldown"
	IneligibleGap        = "next_round_gap"
	IneligibleRunPending = "run_pending"
)

// EntryPayload accompanies the entry popup.
type EntryPayload struct {
	ConfigID       string `json:"config_id"`
	GoalLevels     int    `json:"goal_levels"`
	RaceMinutes    int    `json:"race_minutes"`
	PlayersPerRace int    `json:"players_per_race"`
	WindowID       int    `json:"window_id"`
}

// OnEnterMain is called when the player lands on the main screen. It
// catches the race up to localNow and may request the intro and entry
// popups.
func (s *Service) OnEnterMain(ctx context.Context, playerLevel int, inTutorial bool, localNow time.Time) {
	s.lock()
	defer s.unlockAndFlush()

	s.playerLevel = playerLevel
	s.inTutorial = inTutorial
	s.expireClaimed(ctx, localNow)
	s.checkTimeUp(ctx, localNow)
	s.refreshEligibility(ctx, localNow.In(s.loc), true)
	s.commit(ctx)
}

// OnLevelWin records a won game level. While racing it counts toward the
// goal; reaching the goal finalizes the run at once.
func (s *Service) OnLevelWin(ctx context.Context, newLevel int, inTutorial bool, localNow time.Time) {
	s.lock()
	defer s.unlockAndFlush()

	s.playerLevel = newLevel
	s.inTutorial = inTutorial
	s.expireClaimed(ctx, localNow)
	s.checkTimeUp(ctx, localNow)

	if run := s.save.CurrentRun; run != nil && !run.IsFinalized && s.machine.State() == model.StateInRace && !run.Player.HasFinished {
		nowUTC := localNow.Unix()
		run.Player.LevelsCompleted++
		run.Player.LastUpdateUTC = nowUTC
		s.logger.Debug(ctx, "player level counted",
			logger.String("run_id", run.ID),
			logger.Int("levels", run.Player.LevelsCompleted),
			logger.Int("goal", run.GoalLevels),
		)
		if run.PlayerReachedGoal() {
			run.Player.HasFinished = true
			run.Player.FinishedUTC = nowUTC
			s.finalize(ctx, localNow, reasonGoalReached)
		}
	}

	s.refreshEligibility(ctx, localNow.In(s.loc), true)
	s.commit(ctx)
}

// refreshEligibility moves between Disabled, Idle and Eligible. It never
// touches a state that owns a run.
func (s *Service) refreshEligibility(ctx context.Context, local time.Time, showPopups bool) {
	cfg := s.config()
	state := s.machine.State()

	if !cfg.Enabled {
		if state == model.StateIdle || state == model.StateEligible {
			s.setState(ctx, model.StateDisabled)
		}
		return
	}
	if state == model.StateDisabled {
		s.setState(ctx, model.StateIdle)
		state = model.StateIdle
	}
	if state != model.StateIdle && state != model.StateEligible {
		return
	}

	if reason := s.ineligibleReason(local, cfg); reason != "" {
		if s.setState(ctx, model.StateIdle) {
			s.logger.Debug(ctx, "player not eligible", logger.String("reason", reason))
		}
		return
	}
	s.setState(ctx, model.StateEligible)
	if !showPopups {
		return
	}

	s.requestPopup(ctx, model.PopupIntro, cfg.ID, true)
	snap := schedule.Evaluate(local, cfg.ResetHourLocal, cfg.EntryCooldownHours, s.save.LastJoinLocalUnixSeconds, s.save.LastEntryShownWindowID)
	if !snap.HasShownEntryThisWindow {
		s.save.LastEntryShownWindowID = snap.WindowID
		s.requestPopup(ctx, model.PopupEntry, EntryPayload{
			ConfigID:       cfg.ID,
			GoalLevels:     cfg.GoalLevels,
			RaceMinutes:    cfg.RaceMinutes,
			PlayersPerRace: cfg.PlayersPerRace,
			WindowID:       snap.WindowID,
		}, false)
	}
}

// ineligibleReason returns "" when the player may join under cfg.
func (s *Service) ineligibleReason(local time.Time, cfg model.EventConfig) string {
	switch {
	case !cfg.Enabled:
		return IneligibleDisabled
	case s.playerLevel < cfg.MinPlayerLevel:
		return IneligibleLevel
	case cfg.BlockDuringTutorial && s.inTutorial:
		return IneligibleTutorial
	case schedule.IsInEntryCooldown(local, s.save.LastJoinLocalUnixSeconds, cfg.EntryCooldownHours):
		return IneligibleCooldown
	case s.gapRemaining(local, cfg) > 0:
		return IneligibleGap
	}
	return ""
}

// gapRemaining returns the seconds left before a new round may start after
// the last claim. A daily reset clears the gap, so the wait never runs past
// the end of the window the claim happened in.
func (s *Service) gapRemaining(local time.Time, cfg model.EventConfig) int64 {
	base := s.save.LastRoundBaseUTC
	gap := schedule.EvaluateGapFromBaseUTC(local, base, cfg.NextRoundGapMinutes, cfg.ResetHourLocal)
	if gap.RemainingSeconds == 0 {
		return 0
	}
	baseLocal := time.Unix(base, 0).In(local.Location())
	if schedule.WindowID(baseLocal, cfg.ResetHourLocal) != schedule.WindowID(local, cfg.ResetHourLocal) {
		return 0
	}
	if gap.OverflowsReset {
		return int64(schedule.NextResetLocal(local, cfg.ResetHourLocal).Sub(local).Seconds())
	}
	return gap.RemainingSeconds
}
