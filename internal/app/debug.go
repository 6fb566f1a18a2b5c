package service

import (
	"context"

	"github.com/okian/ghostrace/internal/domain/ghost"
	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/internal/domain/popup"
	"github.com/okian/ghostrace/pkg/logger"
)

// ForceFinalize ends the running race now.
func (s *Service) ForceFinalize(ctx context.Context) error {
	s.lock()
	defer s.unlockAndFlush()

	run := s.save.CurrentRun
	switch {
	case run == nil:
		return s.reject(ctx, cmdFinalize, ReasonNoRun)
	case run.IsFinalized:
		return s.reject(ctx, cmdFinalize, ReasonAlreadyFinalized)
	}
	now := s.now()
	if s.machine.State() == model.StateInRace {
		s.simulate(ctx, run, min(now.Unix(), run.EndUTC))
	}
	s.finalize(ctx, now, reasonForced)
	s.commit(ctx)
	return nil
}

// ClearCurrentRun drops the current run, or an ongoing search, and returns
// to the idle flow.
func (s *Service) ClearCurrentRun(ctx context.Context) {
	s.lock()
	defer s.unlockAndFlush()

	if s.save.CurrentRun == nil && s.machine.State() != model.StateSearching {
		return
	}
	s.clearRun(ctx, "debug")
	s.refreshEligibility(ctx, s.now().In(s.loc), false)
	s.commit(ctx)
}

// DebugStepBot advances one bot by its level durations, ignoring sleep and
// stuck windows. Returns the levels gained.
func (s *Service) DebugStepBot(ctx context.Context, botID string) (int, error) {
	s.lock()
	defer s.unlockAndFlush()

	run := s.save.CurrentRun
	switch {
	case run == nil:
		return 0, s.reject(ctx, cmdStepBot, ReasonNoRun)
	case run.IsFinalized:
		return 0, s.reject(ctx, cmdStepBot, ReasonAlreadyFinalized)
	}
	for i := range run.Opponents {
		p := &run.Opponents[i]
		if p.ID != botID {
			continue
		}
		gained := ghost.Step(p, ghost.NewGenerator(run.ID, p.ID), run.GoalLevels, min(s.now().Unix(), run.EndUTC))
		s.logger.Debug(ctx, "bot stepped", logger.String("bot", botID), logger.Int("gained", gained))
		s.commit(ctx)
		return gained, nil
	}
	return 0, s.reject(ctx, cmdStepBot, ReasonUnknownBot)
}

// ResetProgress wipes the save: cursor, cooldowns, popups and run.
func (s *Service) ResetProgress(ctx context.Context) {
	s.lock()
	defer s.unlockAndFlush()

	s.save = model.NewSave()
	s.popups = popup.NewTracker(nil)
	s.machine.Force(model.StateIdle)
	s.save.LastFlowState = model.StateIdle
	s.note(ctx, "progress reset")
	s.refreshEligibility(ctx, s.now().In(s.loc), false)
	s.commit(ctx)
}
