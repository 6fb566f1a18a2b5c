package service

import (
	"context"
	"time"

	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/internal/domain/standings"
	"github.com/okian/ghostrace/pkg/logger"
	"github.com/okian/ghostrace/pkg/metrics"
)

// Finalize reasons.
const (
	reasonGoalReached = "goal_reached"
	reasonTimeUp      = "time_up"
	reasonDeclined    = "declined"
	reasonForced      = "forced"
)

// Command names used in rejections and metrics.
const (
	cmdJoin     = "join"
	cmdConfirm  = "confirm_searching"
	cmdClaim    = "claim"
	cmdExtend   = "extend"
	cmdDecline  = "decline_extend"
	cmdFinalize = "force_finalize"
	cmdStepBot  = "step_bot"
)

// ResultPayload accompanies the result popup.
type ResultPayload struct {
	RunID    string               `json:"run_id"`
	Rank     int                  `json:"rank"`
	WinnerID string               `json:"winner_id"`
	Reason   string               `json:"reason"`
	Rows     []standings.Standing `json:"rows"`
}

// SearchingPayload accompanies the searching popup.
type SearchingPayload struct {
	ConfigID       string `json:"config_id"`
	PlayersPerRace int    `json:"players_per_race"`
	StartUTC       int64  `json:"start_utc"`
}

// Advance catches the current run up to the clock: bots progress, an
// expired race finalizes or opens the extend offer, and a claimed run past
// its retention is cleared. It is the periodic tick target.
func (s *Service) Advance(ctx context.Context) {
	s.AdvanceTo(ctx, s.now())
}

// AdvanceTo is Advance at an explicit instant. Calling it again with the
// same instant changes nothing.
func (s *Service) AdvanceTo(ctx context.Context, now time.Time) {
	s.lock()
	defer s.unlockAndFlush()

	changed := s.expireClaimed(ctx, now)
	if s.checkTimeUp(ctx, now) {
		changed = true
	}
	if changed {
		s.commit(ctx)
	}
}

// checkTimeUp simulates the bots and closes the race when it is over.
// Reports whether anything changed.
func (s *Service) checkTimeUp(ctx context.Context, now time.Time) bool {
	run := s.save.CurrentRun
	if run == nil || run.IsFinalized {
		return false
	}
	state := s.machine.State()
	if state != model.StateInRace {
		// The offer freezes the race at its end.
		return false
	}

	nowUTC := now.Unix()
	changed := s.simulate(ctx, run, min(nowUTC, run.EndUTC))
	if run.PlayerReachedGoal() {
		s.finalize(ctx, now, reasonGoalReached)
		return true
	}
	if nowUTC < run.EndUTC {
		return changed
	}
	if s.extendAvailable(run) {
		s.setState(ctx, model.StateExtendOffer)
		s.requestPopup(ctx, model.PopupExtendOffer, s.offerFor(run), true)
		s.note(ctx, "race time up, extension offered", logger.String("run_id", run.ID))
		return true
	}
	s.finalize(ctx, now, reasonTimeUp)
	return true
}

// finalize freezes standings and moves to Ended.
func (s *Service) finalize(ctx context.Context, now time.Time, reason string) {
	run := s.save.CurrentRun
	rows := standings.Compute(run.Participants(), run.GoalLevels)
	run.IsFinalized = true
	run.FinalizedUTC = now.Unix()
	run.FinalRank = standings.RankOf(rows, playerID)
	if len(rows) > 0 {
		run.WinnerID = rows[0].ParticipantID
	}
	s.setState(ctx, model.StateEnded)
	s.requestPopup(ctx, model.PopupResult, ResultPayload{
		RunID:    run.ID,
		Rank:     run.FinalRank,
		WinnerID: run.WinnerID,
		Reason:   reason,
		Rows:     rows,
	}, true)
	metrics.RecordRunFinalized(reason)
	s.note(ctx, "run finalized",
		logger.String("run_id", run.ID),
		logger.String("reason", reason),
		logger.Int("rank", run.FinalRank),
		logger.String("winner", run.WinnerID),
	)
}

// expireClaimed clears a claimed run once its retention passed.
func (s *Service) expireClaimed(ctx context.Context, now time.Time) bool {
	run := s.save.CurrentRun
	if run == nil || !run.HasClaimed {
		return false
	}
	keep := int64(s.runConfig(run).KeepClaimedRunHours) * 3600
	if now.Unix() < run.ClaimedUTC+keep {
		return false
	}
	s.clearRun(ctx, "retention_expired")
	s.refreshEligibility(ctx, now.In(s.loc), false)
	return true
}

// clearRun drops the current run and returns to Idle.
func (s *Service) clearRun(ctx context.Context, reason string) {
	if run := s.save.CurrentRun; run != nil {
		s.note(ctx, "run cleared", logger.String("run_id", run.ID), logger.String("reason", reason))
	}
	s.save.CurrentRun = nil
	s.save.SearchingStartUTC = 0
	s.setState(ctx, model.StateIdle)
}

// Join starts matchmaking. A claimed run kept for display is cleared first.
func (s *Service) Join(ctx context.Context) error {
	s.lock()
	defer s.unlockAndFlush()

	now := s.now()
	changed := s.expireClaimed(ctx, now)
	if s.checkTimeUp(ctx, now) {
		changed = true
	}

	if run := s.save.CurrentRun; run != nil {
		if !run.HasClaimed {
			if changed {
				s.commit(ctx)
			}
			return s.reject(ctx, cmdJoin, ReasonRunActive)
		}
		s.clearRun(ctx, "rejoin")
		changed = true
	}

	local := now.In(s.loc)
	s.refreshEligibility(ctx, local, false)
	if s.machine.State() != model.StateEligible {
		if changed {
			s.commit(ctx)
		}
		s.logger.Debug(ctx, "join refused", logger.String("why", s.ineligibleReason(local, s.config())))
		return s.reject(ctx, cmdJoin, ReasonNotEligible)
	}

	cfg := s.config()
	s.setState(ctx, model.StateSearching)
	s.save.SearchingStartUTC = now.Unix()
	s.save.LastJoinLocalUnixSeconds = now.Unix()
	s.requestPopup(ctx, model.PopupSearching, SearchingPayload{
		ConfigID:       cfg.ID,
		PlayersPerRace: cfg.PlayersPerRace,
		StartUTC:       now.Unix(),
	}, false)
	s.note(ctx, "player joined", logger.String("config", cfg.ID))
	s.commit(ctx)
	return nil
}

// ConfirmSearchingFinished ends matchmaking: the roster is built and the
// race starts now.
func (s *Service) ConfirmSearchingFinished(ctx context.Context) (model.Run, error) {
	s.lock()
	defer s.unlockAndFlush()

	if s.machine.State() != model.StateSearching {
		return model.Run{}, s.reject(ctx, cmdConfirm, ReasonWrongState)
	}
	run := s.createRun(ctx, s.now())
	s.save.SearchingStartUTC = 0
	s.setState(ctx, model.StateInRace)
	s.commit(ctx)
	return *run.Clone(), nil
}

// claimGuard returns the rejection reason of a claim, or "".
func (s *Service) claimGuard(run *model.Run) string {
	switch {
	case run == nil:
		return ReasonNoRun
	case run.HasClaimed:
		return ReasonAlreadyClaimed
	case !run.IsFinalized:
		return ReasonNotFinalized
	case s.machine.State() != model.StateEnded:
		return ReasonWrongState
	case run.FinalRank <= 0:
		return ReasonNotRanked
	}
	return ""
}

// Claim collects the reward of a finalized run exactly once. The run is
// marked claimed before the host grants the reward, so a failed grant is
// never retried.
func (s *Service) Claim(ctx context.Context) (ClaimResult, error) {
	s.lock()
	now := s.now()
	changed := s.checkTimeUp(ctx, now)

	run := s.save.CurrentRun
	if reason := s.claimGuard(run); reason != "" {
		if changed {
			s.commit(ctx)
		}
		err := s.reject(ctx, cmdClaim, reason)
		s.unlockAndFlush()
		return ClaimResult{}, err
	}

	cfg := s.runConfig(run)
	run.HasClaimed = true
	run.ClaimedRank = run.FinalRank
	run.ClaimedWinnerID = run.WinnerID
	run.ClaimedUTC = now.Unix()
	s.save.LastRoundBaseUTC = now.Unix()

	res := ClaimResult{RunID: run.ID, Rank: run.FinalRank, WinnerID: run.WinnerID}
	res.Reward, res.HasReward = cfg.RewardForRank(run.FinalRank)
	if run.PlayerReachedGoal() && s.save.ConfigCursor < len(s.configs)-1 {
		s.save.ConfigCursor++
		res.Advanced = true
	}

	s.requestPopup(ctx, model.PopupClaimed, res, true)
	metrics.RecordClaim()
	s.note(ctx, "reward claimed",
		logger.String("run_id", run.ID),
		logger.Int("rank", res.Rank),
		logger.Int("coins", res.Reward.Coins),
		logger.Bool("advanced", res.Advanced),
	)
	s.expireClaimed(ctx, now)
	s.commit(ctx)
	s.unlockAndFlush()

	s.grant(ctx, &res)
	return res, nil
}

// extendAvailable reports whether run may still be extended.
func (s *Service) extendAvailable(run *model.Run) bool {
	return s.extendGuard(run, false) == ""
}

// extendGuard returns the rejection reason of an extension, or "".
// withState also requires the offer to be open.
func (s *Service) extendGuard(run *model.Run, withState bool) string {
	switch {
	case run == nil:
		return ReasonNoRun
	case !s.runConfig(run).Extend.Allowed:
		return ReasonExtendNotAllowed
	case run.IsFinalized:
		return ReasonAlreadyFinalized
	case run.HasExtended:
		return ReasonAlreadyExtended
	case run.PlayerReachedGoal():
		return ReasonPlayerFinished
	case withState && s.machine.State() != model.StateExtendOffer:
		return ReasonWrongState
	}
	return ""
}

// Extend1H accepts the open extend offer. Payment runs outside the lock;
// the offer is re-checked afterwards and the run extended from the moment
// of acceptance. Bots are paused for the time the offer stayed open.
func (s *Service) Extend1H(ctx context.Context) error {
	s.lock()
	run := s.save.CurrentRun
	if reason := s.extendGuard(run, true); reason != "" {
		err := s.reject(ctx, cmdExtend, reason)
		s.unlockAndFlush()
		return err
	}
	policy := s.runConfig(run).Extend
	runID := run.ID
	s.unlockAndFlush()

	paid, reason := s.pay(ctx, policy)

	s.lock()
	defer s.unlockAndFlush()
	if !paid {
		return s.reject(ctx, cmdExtend, reason)
	}

	run = s.save.CurrentRun
	if s.extendGuard(run, true) != "" || run.ID != runID {
		s.logger.Error(ctx, "extension paid but offer no longer open", logger.String("run_id", runID))
		return s.reject(ctx, cmdExtend, ReasonRunChanged)
	}

	accept := s.now().Unix()
	hours := policy.Hours
	if hours <= 0 {
		hours = 1
	}
	if pause := accept - run.EndUTC; pause > 0 {
		for i := range run.Opponents {
			p := &run.Opponents[i]
			if p.HasFinished || p.LastUpdateUTC <= 0 {
				continue
			}
			p.LastUpdateUTC += pause
			p.StuckUntilUTC = 0
		}
	}
	run.OriginalEndUTC = run.EndUTC
	run.ExtendedEndUTC = accept + int64(hours)*3600
	run.EndUTC = run.ExtendedEndUTC
	run.HasExtended = true
	s.setState(ctx, model.StateInRace)

	metrics.RecordExtend(string(policy.PayType))
	s.note(ctx, "race extended",
		logger.String("run_id", run.ID),
		logger.Int("hours", hours),
		logger.String("pay_type", string(policy.PayType)),
	)
	s.commit(ctx)
	return nil
}

// DeclineExtend closes the open offer and finalizes the run.
func (s *Service) DeclineExtend(ctx context.Context) error {
	s.lock()
	defer s.unlockAndFlush()

	run := s.save.CurrentRun
	switch {
	case run == nil:
		return s.reject(ctx, cmdDecline, ReasonNoRun)
	case s.machine.State() != model.StateExtendOffer:
		return s.reject(ctx, cmdDecline, ReasonWrongState)
	}
	metrics.RecordExtendDeclined()
	s.finalize(ctx, s.now(), reasonDeclined)
	s.commit(ctx)
	return nil
}
