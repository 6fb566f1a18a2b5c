package roster

import (
	"math"
	"math/rand"

	"github.com/okian/ghostrace/internal/domain/model"
)

// Pacing bounds for a run.
const (
	nominalSecondsPerLevel = 120.0
	minTargetSeconds       = 10 * 60.0
	maxTargetSeconds       = 25 * 60.0
	minPaceSeconds         = 70.0
	maxPaceSeconds         = 180.0

	shortRaceGoalLevels = 12
	shortRaceSeconds    = 30 * 60.0
)

// factor ranges per tier; boss is faster than baseline, noob slower.
var factorRange = map[model.Personality][2]float64{
	model.PersonalityBoss:   {0.75, 0.9},
	model.PersonalityNormal: {0.95, 1.1},
	model.PersonalityNoob:   {1.15, 1.4},
}

// BasePace returns the per-level seconds implied by goal: the nominal total
// finish time clamped to 10..25 minutes, divided by goal and clamped to
// 70..180 seconds.
func BasePace(goal int) float64 {
	if goal <= 0 {
		return nominalSecondsPerLevel
	}
	target := clamp(float64(goal)*nominalSecondsPerLevel, minTargetSeconds, maxTargetSeconds)
	return clamp(target/float64(goal), minPaceSeconds, maxPaceSeconds)
}

// ImpliedSeconds is the finish time of a goal at its base pace.
func ImpliedSeconds(goal int) float64 {
	return BasePace(goal) * float64(max(goal, 0))
}

// IsShortRace reports whether sleep and stuck behavior are disabled for the
// goal so the board keeps moving. The race window plays no part.
func IsShortRace(goal int) bool {
	return goal <= shortRaceGoalLevels || ImpliedSeconds(goal) <= shortRaceSeconds
}

// TunePacing rewrites each bot's pace from the run goal and its tier.
func TunePacing(bots []model.Participant, goal int, nowUTC int64, rng *rand.Rand) {
	base := BasePace(goal)
	short := IsShortRace(goal)
	for i := range bots {
		b := &bots[i]
		if !b.IsBot {
			continue
		}
		fr, ok := factorRange[b.Personality]
		if !ok {
			fr = factorRange[model.PersonalityNormal]
		}
		b.AvgSecondsPerLevel = base * (fr[0] + rng.Float64()*(fr[1]-fr[0]))
		switch {
		case short:
			b.StuckChancePerHour = 0
			b.SleepDurationHours = 0
			b.StuckUntilUTC = 0
		case b.StuckUntilUTC > 0 && b.StuckUntilUTC <= nowUTC:
			b.StuckUntilUTC = 0
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
