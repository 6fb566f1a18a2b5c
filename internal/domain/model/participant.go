package model

// Participant is one racer in a run. The player and the ghost bots share
// this shape; IsBot selects the behavior. Timestamps are unix seconds and a
// value <= 0 means unset.
type Participant struct {
	ID              string      `json:"id"`
	DisplayName     string      `json:"display_name"`
	AvatarID        string      `json:"avatar_id,omitempty"`
	IsBot           bool        `json:"is_bot"`
	Personality     Personality `json:"personality,omitempty"`
	LevelsCompleted int         `json:"levels_completed"`
	LastUpdateUTC   int64       `json:"last_update_utc"`
	HasFinished     bool        `json:"has_finished"`
	FinishedUTC     int64       `json:"finished_utc"`

	// Simulation parameters, bots only.
	AvgSecondsPerLevel  float64 `json:"avg_seconds_per_level,omitempty"`
	JitterPct           float64 `json:"jitter_pct,omitempty"`
	StuckChancePerHour  float64 `json:"stuck_chance_per_hour,omitempty"`
	StuckMinMinutes     float64 `json:"stuck_min_minutes,omitempty"`
	StuckMaxMinutes     float64 `json:"stuck_max_minutes,omitempty"`
	TimezoneOffsetHours float64 `json:"timezone_offset_hours,omitempty"`
	SleepStartHour      int     `json:"sleep_start_hour,omitempty"`
	SleepDurationHours  int     `json:"sleep_duration_hours,omitempty"`
	StuckUntilUTC       int64   `json:"stuck_until_utc,omitempty"`
}

// FinishKey is the instant used to order finishers.
func (p Participant) FinishKey() int64 {
	if p.FinishedUTC > 0 {
		return p.FinishedUTC
	}
	return p.LastUpdateUTC
}
