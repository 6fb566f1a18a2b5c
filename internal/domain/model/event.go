package model

// Personality is the tier of a ghost bot.
type Personality string

// Bot tiers, fastest first.
const (
	PersonalityBoss   Personality = "boss"
	PersonalityNormal Personality = "normal"
	PersonalityNoob   Personality = "noob"
)

// Personalities lists the tiers in quota fill order.
var Personalities = []Personality{PersonalityBoss, PersonalityNormal, PersonalityNoob}

// PayType selects how an extension is paid for.
type PayType string

// Extension payment kinds. PayNone marks an unavailable offer.
const (
	PayNone  PayType = ""
	PayCoins PayType = "coins"
	PayAd    PayType = "ad"
)

// BotComposition is the target opponent count per tier.
type BotComposition struct {
	Boss   int `koanf:"boss" json:"boss"`
	Normal int `koanf:"normal" json:"normal"`
	Noob   int `koanf:"noob" json:"noob"`
}

// Total returns the summed quota.
func (c BotComposition) Total() int { return c.Boss + c.Normal + c.Noob }

// Count returns the quota for one tier.
func (c BotComposition) Count(p Personality) int {
	switch p {
	case PersonalityBoss:
		return c.Boss
	case PersonalityNormal:
		return c.Normal
	case PersonalityNoob:
		return c.Noob
	default:
		return 0
	}
}

// ExtendPolicy configures the one-time time extension.
type ExtendPolicy struct {
	Allowed bool    `koanf:"allowed"`
	Hours   int     `koanf:"hours"`
	PayType PayType `koanf:"pay_type"`
	Cost    int     `koanf:"cost"`
}

// Reward is granted on claim according to the final rank.
type Reward struct {
	Coins int            `koanf:"coins" json:"coins"`
	Items map[string]int `koanf:"items" json:"items,omitempty"`
}

// EventConfig is the immutable configuration of one race difficulty step.
type EventConfig struct {
	ID                  string         `koanf:"id"`
	Enabled             bool           `koanf:"enabled"`
	MinPlayerLevel      int            `koanf:"min_player_level"`
	BlockDuringTutorial bool           `koanf:"block_during_tutorial"`
	ResetHourLocal      int            `koanf:"reset_hour_local"`
	EntryCooldownHours  int            `koanf:"entry_cooldown_hours"`
	RaceMinutes         int            `koanf:"race_minutes"`
	NextRoundGapMinutes int            `koanf:"next_round_gap_minutes"`
	GoalLevels          int            `koanf:"goal_levels"`
	PlayersPerRace      int            `koanf:"players_per_race"`
	Composition         BotComposition `koanf:"composition"`
	Extend              ExtendPolicy   `koanf:"extend"`
	Rewards             []Reward       `koanf:"rewards"`
	KeepClaimedRunHours int            `koanf:"keep_claimed_run_hours"`
}

// RewardForRank returns the reward for a 1-based finishing rank. Ranks past
// the end of the table share the last tier.
func (c EventConfig) RewardForRank(rank int) (Reward, bool) {
	if rank < 1 || len(c.Rewards) == 0 {
		return Reward{}, false
	}
	idx := rank - 1
	if idx >= len(c.Rewards) {
		idx = len(c.Rewards) - 1
	}
	return c.Rewards[idx], true
}

// BotProfile is static content describing a ghost bot.
type BotProfile struct {
	ID                  string      `koanf:"id"`
	DisplayName         string      `koanf:"display_name"`
	AvatarID            string      `koanf:"avatar_id"`
	Personality         Personality `koanf:"personality"`
	MinSecondsPerLevel  float64     `koanf:"min_seconds_per_level"`
	MaxSecondsPerLevel  float64     `koanf:"max_seconds_per_level"`
	MinPlayerLevel      int         `koanf:"min_player_level"`
	MaxPlayerLevel      int         `koanf:"max_player_level"`
	JitterPct           float64     `koanf:"jitter_pct"`
	StuckChancePerHour  float64     `koanf:"stuck_chance_per_hour"`
	StuckMinMinutes     float64     `koanf:"stuck_min_minutes"`
	StuckMaxMinutes     float64     `koanf:"stuck_max_minutes"`
	TimezoneOffsetHours float64     `koanf:"timezone_offset_hours"`
	SleepStartHour      int         `koanf:"sleep_start_hour"`
	SleepDurationHours  int         `koanf:"sleep_duration_hours"`
}

// LevelDistance is zero when level lies in the profile's range, otherwise
// the distance to the nearest bound.
func (b BotProfile) LevelDistance(level int) int {
	switch {
	case level < b.MinPlayerLevel:
		return b.MinPlayerLevel - level
	case b.MaxPlayerLevel > 0 && level > b.MaxPlayerLevel:
		return level - b.MaxPlayerLevel
	default:
		return 0
	}
}

// BotPool is the externally supplied bot content.
type BotPool struct {
	Bots []BotProfile `koanf:"bots"`
}
