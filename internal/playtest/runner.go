package playtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	service "github.com/okian/ghostrace/internal/app"
	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

type levelBody struct {
	Level int `json:"level"`
}

// Run plays one race: enter main, join, win levels, settle the race, read
// the leaderboard, claim and verify.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg, stats, log.Printf)

	logger.Get().Info(ctx, "starting race play session",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("level", cfg.Level),
		logger.Int("levelWins", cfg.LevelWins),
		logger.Bool("finalize", cfg.Finalize))

	if err := c.do(ctx, "GET", "/healthz", nil, nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	if err := c.do(ctx, "POST", "/enter-main", levelBody{Level: cfg.Level}, nil); err != nil {
		return stats, err
	}

	run, err := startOrResume(ctx, c)
	if err != nil {
		return stats, err
	}
	stats.RunID = run.ID
	stats.Opponents = len(run.Opponents)

	if err := race(ctx, c, cfg, stats); err != nil {
		return stats, err
	}
	if err := settle(ctx, c, cfg, stats); err != nil {
		return stats, err
	}

	var board service.LeaderboardSnapshot
	if err := c.do(ctx, "GET", "/leaderboard", nil, &board); err != nil {
		return stats, err
	}
	stats.FinalRank = board.PlayerRank
	if err := verifyLeaderboard(board); err != nil {
		return stats, fmt.Errorf("leaderboard verification failed: %w", err)
	}
	displayBoard(board, cfg.Verbose)

	var res service.ClaimResult
	if err := c.do(ctx, "POST", "/claim", nil, &res); err != nil {
		return stats, err
	}
	stats.ClaimedRank = res.Rank
	stats.RewardCoins = res.Reward.Coins
	if err := verifyClaim(board, res); err != nil {
		return stats, fmt.Errorf("claim verification failed: %w", err)
	}

	var hud service.HUDStatus
	if err := c.do(ctx, "GET", "/state", nil, &hud); err == nil {
		stats.FinalStateHUD = hud.State
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if cfg.OutputFile != "" {
		if err := saveReport(cfg.OutputFile, stats); err != nil {
			logger.Get().Warn(ctx, "failed to save report", logger.Error(err))
		}
	}
	return stats, nil
}

// startOrResume joins a new race, or picks up the one already running.
func startOrResume(ctx context.Context, c *client) (model.Run, error) {
	var hud service.HUDStatus
	if err := c.do(ctx, "GET", "/state", nil, &hud); err != nil {
		return model.Run{}, err
	}

	var run model.Run
	switch hud.State {
	case "in_race", "extend_offer":
		err := c.do(ctx, "GET", "/run", nil, &run)
		return run, err
	case "searching":
	default:
		if hud.HasRun && !hud.HasClaimed {
			return run, fmt.Errorf("an unclaimed run is pending in state %s", hud.State)
		}
		if err := c.do(ctx, "POST", "/join", nil, nil); err != nil {
			return run, fmt.Errorf("join (%s): %w", hud.IneligibleReason, err)
		}
	}
	err := c.do(ctx, "POST", "/searching/finish", nil, &run)
	return run, err
}

// race reports level wins until the race leaves in_race or the budget runs out.
func race(ctx context.Context, c *client, cfg *Config, stats *Stats) error {
	for i := 0; i < cfg.LevelWins; i++ {
		var hud service.HUDStatus
		if err := c.do(ctx, "GET", "/state", nil, &hud); err != nil {
			return err
		}
		if hud.State != "in_race" {
			return nil
		}
		if err := c.do(ctx, "POST", "/level-win", levelBody{Level: cfg.Level}, nil); err != nil {
			return err
		}
		stats.LevelsWon++
		if cfg.Pace > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Pace):
			}
		}
	}
	return nil
}

// settle brings the run to ended.
func settle(ctx context.Context, c *client, cfg *Config, stats *Stats) error {
	var hud service.HUDStatus
	if err := c.do(ctx, "GET", "/state", nil, &hud); err != nil {
		return err
	}
	switch hud.State {
	case "ended":
		return nil
	case "extend_offer":
		if cfg.Extend {
			if err := c.do(ctx, "POST", "/extend", nil, nil); err != nil {
				return err
			}
			stats.Extended = true
			return settle(ctx, c, &Config{Finalize: cfg.Finalize}, stats)
		}
		return c.do(ctx, "POST", "/extend/decline", nil, nil)
	case "in_race":
		if !cfg.Finalize {
			return errors.New("race still running; enable finalize or win more levels")
		}
		return c.do(ctx, "POST", "/debug/finalize", nil, nil)
	default:
		return fmt.Errorf("unexpected state %q", hud.State)
	}
}

// saveReport writes stats as JSON.
func saveReport(path string, stats *Stats) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	b, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, filePermission)
}

// displayFinalStats logs the session summary.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.String("runId", stats.RunID),
		logger.Int("opponents", stats.Opponents),
		logger.Int("levelsWon", stats.LevelsWon),
		logger.Int("finalRank", stats.FinalRank),
		logger.Int("claimedRank", stats.ClaimedRank),
		logger.Int("rewardCoins", stats.RewardCoins),
		logger.Bool("extended", stats.Extended),
		logger.Int("requests", stats.Requests),
		logger.Int("rejections", stats.Rejections),
		logger.String("duration", stats.Duration.String()))
}
