package config

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/ghostrace/internal/domain/model"
)

type eventsFile struct {
	Events []model.EventConfig `koanf:"events"`
}

// LoadEvents reads the ordered event config list from a YAML file with a
// top-level "events" list. An empty path returns DefaultEvents.
func LoadEvents(ctx context.Context, path string) ([]model.EventConfig, error) {
	if path == "" {
		return DefaultEvents(), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
	}
	var out eventsFile
	if err := k.UnmarshalWithConf("", &out, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
	}
	if err := ValidateEvents(out.Events); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// ValidateEvents checks every config of the progression.
func ValidateEvents(events []model.EventConfig) error {
	if len(events) == 0 {
		return fmt.Errorf("%w: no event configs", ErrInvalidConfig)
	}
	for i, e := range events {
		if err := validateEvent(e); err != nil {
			return fmt.Errorf("event %d (%s): %w", i, e.ID, err)
		}
	}
	return nil
}

func validateEvent(e model.EventConfig) error {
	switch {
	case e.PlayersPerRace < 2:
		return fmt.Errorf("%w: players_per_race must be at least 2", ErrInvalidConfig)
	case e.GoalLevels < 1:
		return fmt.Errorf("%w: goal_levels must be positive", ErrInvalidConfig)
	case e.ResetHourLocal < 0 || e.ResetHourLocal > 23:
		return fmt.Errorf("%w: reset_hour_local must be in [0,23]", ErrInvalidConfig)
	case e.RaceMinutes < 1:
		return fmt.Errorf("%w: race_minutes must be positive", ErrInvalidConfig)
	case e.EntryCooldownHours < 0 || e.NextRoundGapMinutes < 0 || e.KeepClaimedRunHours < 0:
		return fmt.Errorf("%w: cooldown, gap and retention must not be negative", ErrInvalidConfig)
	case e.Composition.Boss < 0 || e.Composition.Normal < 0 || e.Composition.Noob < 0:
		return fmt.Errorf("%w: composition must not be negative", ErrInvalidConfig)
	}
	if e.Extend.Allowed {
		switch {
		case e.Extend.Hours < 1:
			return fmt.Errorf("%w: extend.hours must be positive", ErrInvalidConfig)
		case e.Extend.PayType != model.PayCoins && e.Extend.PayType != model.PayAd:
			return fmt.Errorf("%w: extend.pay_type must be coins or ad", ErrInvalidConfig)
		case e.Extend.PayType == model.PayCoins && e.Extend.Cost < 0:
			return fmt.Errorf("%w: extend.cost must not be negative", ErrInvalidConfig)
		}
	}
	return nil
}

// DefaultEvents is the built-in difficulty progression.
func DefaultEvents() []model.EventConfig {
	rewards := func(base int) []model.Reward {
		return []model.Reward{
			{Coins: base * 4, Items: map[string]int{"booster": 2}},
			{Coins: base * 2, Items: map[string]int{"booster": 1}},
			{Coins: base},
			{Coins: base / 2},
		}
	}
	base := model.EventConfig{
		Enabled:             true,
		MinPlayerLevel:      10,
		BlockDuringTutorial: true,
		ResetHourLocal:      4,
		EntryCooldownHours:  0,
		NextRoundGapMinutes: 30,
		PlayersPerRace:      5,
		Composition:         model.BotComposition{Boss: 1, Normal: 1, Noob: 2},
		Extend:              model.ExtendPolicy{Allowed: true, Hours: 1, PayType: model.PayCoins, Cost: 100},
		KeepClaimedRunHours: 2,
	}

	sprint := base
	sprint.ID = "sprint"
	sprint.GoalLevels = 10
	sprint.RaceMinutes = 30
	sprint.Composition = model.BotComposition{Normal: 1, Noob: 3}
	sprint.Extend = model.ExtendPolicy{Allowed: true, Hours: 1, PayType: model.PayAd}
	sprint.Rewards = rewards(50)

	standard := base
	standard.ID = "standard"
	standard.GoalLevels = 20
	standard.RaceMinutes = 120
	standard.Rewards = rewards(100)

	marathon := base
	marathon.ID = "marathon"
	marathon.GoalLevels = 40
	marathon.RaceMinutes = 24 * 60
	marathon.EntryCooldownHours = 6
	marathon.Composition = model.BotComposition{Boss: 2, Normal: 1, Noob: 1}
	marathon.Rewards = rewards(250)

	return []model.EventConfig{sprint, standard, marathon}
}
