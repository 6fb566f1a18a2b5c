package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ghostrace/internal/domain/ghost"
	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/internal/domain/roster"
	"github.com/okian/ghostrace/pkg/logger"
	"github.com/okian/ghostrace/pkg/metrics"
)

// createRun builds the roster for the current config and installs a fresh
// run starting at now.
func (s *Service) createRun(ctx context.Context, now time.Time) *model.Run {
	cfg := s.config()
	nowUTC := now.Unix()

	res := roster.Build(roster.Request{
		Pool:           s.pool.Bots,
		PlayerLevel:    s.playerLevel,
		Composition:    cfg.Composition,
		PlayersPerRace: cfg.PlayersPerRace,
		GoalLevels:     cfg.GoalLevels,
		NowUTC:         nowUTC,
	}, s.rng)
	if res.Short() {
		metrics.RecordRosterShortfall(res.Shortfall)
		s.warn(ctx, res.Warning(), logger.Int("player_level", s.playerLevel))
	}
	if res.ClosestMatch {
		s.logger.Debug(ctx, "no bot covers player level, using closest", logger.Int("player_level", s.playerLevel))
	}

	run := &model.Run{
		ID:             uuid.NewString(),
		ConfigIndex:    s.save.ConfigCursor,
		StartUTC:       nowUTC,
		EndUTC:         nowUTC + int64(cfg.RaceMinutes)*60,
		GoalLevels:     cfg.GoalLevels,
		PlayersPerRace: cfg.PlayersPerRace,
		Player: model.Participant{
			ID:            playerID,
			DisplayName:   s.playerName,
			LastUpdateUTC: nowUTC,
		},
		Opponents: res.Opponents,
	}
	s.save.CurrentRun = run

	for _, p := range []model.PopupType{model.PopupExtendOffer, model.PopupResult, model.PopupClaimed} {
		s.popups.Unrecord(ctx, p)
	}
	metrics.RecordRunStarted()
	s.note(ctx, "run started",
		logger.String("run_id", run.ID),
		logger.String("config", cfg.ID),
		logger.Int("opponents", len(run.Opponents)),
		logger.Int("goal", run.GoalLevels),
	)
	return run
}

// simulate advances the bots of run to targetUTC.
func (s *Service) simulate(ctx context.Context, run *model.Run, targetUTC int64) bool {
	res := ghost.Advance(run, targetUTC)
	if res.LevelsGained == 0 {
		return false
	}
	metrics.RecordSimulation(res.LevelsGained)
	for _, id := range res.Finished {
		s.logger.Debug(ctx, "bot finished", logger.String("run_id", run.ID), logger.String("bot", id))
	}
	return true
}
