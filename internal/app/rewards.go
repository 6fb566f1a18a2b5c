package service

import (
	"context"

	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/pkg/logger"
)

// RewardGranter hands a claimed reward to the host economy.
type RewardGranter interface {
	GrantReward(ctx context.Context, r model.Reward) bool
}

// AdWatcher shows a rewarded ad and reports whether it was watched.
type AdWatcher interface {
	WatchAd(ctx context.Context) bool
}

// Wallet spends soft currency and reports whether the spend succeeded.
type Wallet interface {
	Spend(ctx context.Context, coins int) bool
}

// RewardGranterFunc adapts a function to RewardGranter.
type RewardGranterFunc func(ctx context.Context, r model.Reward) bool

// GrantReward calls f.
func (f RewardGranterFunc) GrantReward(ctx context.Context, r model.Reward) bool { return f(ctx, r) }

// AdWatcherFunc adapts a function to AdWatcher.
type AdWatcherFunc func(ctx context.Context) bool

// WatchAd calls f.
func (f AdWatcherFunc) WatchAd(ctx context.Context) bool { return f(ctx) }

// WalletFunc adapts a function to Wallet.
type WalletFunc func(ctx context.Context, coins int) bool

// Spend calls f.
func (f WalletFunc) Spend(ctx context.Context, coins int) bool { return f(ctx, coins) }

// ClaimResult describes an accepted claim.
type ClaimResult struct {
	RunID    string       `json:"run_id"`
	Rank     int          `json:"rank"`
	WinnerID string       `json:"winner_id"`
	Reward   model.Reward `json:"reward"`
	// HasReward is false when the reward table has no entry for the rank.
	HasReward bool `json:"has_reward"`
	// Granted reports the host's answer; false when no granter is set.
	Granted bool `json:"granted"`
	// Advanced is true when the config cursor moved to the next difficulty.
	Advanced bool `json:"advanced"`
}

// grant runs outside the service lock.
func (s *Service) grant(ctx context.Context, res *ClaimResult) {
	if !res.HasReward {
		return
	}
	if s.granter == nil {
		s.logger.Warn(ctx, "no reward granter configured", logger.String("run_id", res.RunID))
		return
	}
	res.Granted = s.granter.GrantReward(ctx, res.Reward)
	if !res.Granted {
		s.logger.Error(ctx, "reward grant failed", logger.String("run_id", res.RunID), logger.Int("rank", res.Rank))
		return
	}
	reward := res.Reward
	s.deliver([]model.Notification{{Kind: model.KindRewardGranted, Reward: &reward}})
}

// pay runs outside the service lock.
func (s *Service) pay(ctx context.Context, policy model.ExtendPolicy) (bool, string) {
	switch policy.PayType {
	case model.PayAd:
		if s.ads == nil {
			return false, ReasonPaymentUnavailable
		}
		if !s.ads.WatchAd(ctx) {
			return false, ReasonPaymentFailed
		}
	case model.PayCoins:
		if policy.Cost <= 0 {
			return true, ""
		}
		if s.wallet == nil {
			return false, ReasonPaymentUnavailable
		}
		if !s.wallet.Spend(ctx, policy.Cost) {
			return false, ReasonPaymentFailed
		}
	default:
		return false, ReasonPaymentUnavailable
	}
	return true, ""
}
