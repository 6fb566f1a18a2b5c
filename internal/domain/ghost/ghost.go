// Package ghost advances simulated opponents from elapsed wall time.
//
// A bot's progress is a pure function of its identity (run id + bot id), its
// simulation parameters and absolute time: sleep and stuck windows are laid
// out on the absolute clock and every level has a fixed, identity-seeded
// duration. Advancing to the same instant twice is a no-op and advancing
// A->C equals A->B->C.
package ghost

import (
	"math"
	"math/rand"

	"github.com/okian/ghostrace/internal/domain/model"
)

const (
	minSecondsPerLevel = 10
	maxJitterPct       = 0.5
	stuckBucketSeconds = 3600
	secondsPerHour     = 3600
	secondsPerDay      = 86400
)

// Activity describes what a bot is doing at an instant.
type Activity string

// Bot activities.
const (
	ActivityRacing   Activity = "racing"
	ActivitySleeping Activity = "sleeping"
	ActivityStuck    Activity = "stuck"
	ActivityFinished Activity = "finished"
)

// Result summarizes one Advance call.
type Result struct {
	LevelsGained int
	Finished     []string
}

// Advance moves every unfinished bot of run to nowUTC. The player is never
// touched.
func Advance(run *model.Run, nowUTC int64) Result {
	var res Result
	if run == nil {
		return res
	}
	for i := range run.Opponents {
		p := &run.Opponents[i]
		if !p.IsBot {
			continue
		}
		wasFinished := p.HasFinished
		res.LevelsGained += AdvanceParticipant(p, NewGenerator(run.ID, p.ID), run.GoalLevels, nowUTC)
		if p.HasFinished && !wasFinished {
			res.Finished = append(res.Finished, p.ID)
		}
	}
	return res
}

// AdvanceParticipant moves one bot to nowUTC and returns the levels gained.
//
// LastUpdateUTC only moves to level completion instants (or to nowUTC on the
// very first call), so the work done toward the current level is always
// recomputed from absolute time.
func AdvanceParticipant(p *model.Participant, g Generator, goal int, nowUTC int64) int {
	if p.HasFinished {
		return 0
	}
	if p.LastUpdateUTC <= 0 {
		p.LastUpdateUTC = nowUTC
		return 0
	}
	if nowUTC-p.LastUpdateUTC <= 0 {
		return 0
	}

	gained := 0
	var work int64
	for _, s := range availableSpans(p, g, p.LastUpdateUTC, nowUTC) {
		pos := s.start
		for pos < s.end && p.LevelsCompleted < goal {
			need := g.LevelSeconds(p.AvgSecondsPerLevel, p.JitterPct, p.LevelsCompleted) - work
			if avail := s.end - pos; avail < need {
				work += avail
				break
			}
			pos += need
			work = 0
			gained++
			p.LevelsCompleted++
			p.LastUpdateUTC = pos
			if p.LevelsCompleted >= goal {
				p.HasFinished = true
				p.FinishedUTC = pos
			}
		}
		if p.HasFinished {
			break
		}
	}
	if p.HasFinished {
		p.StuckUntilUTC = 0
	} else {
		p.StuckUntilUTC = stuckUntil(p, g, nowUTC)
	}
	return gained
}

// Step is the debug variant: it applies the per-level durations to the
// elapsed time without any sleep or stuck windows.
func Step(p *model.Participant, g Generator, goal int, nowUTC int64) int {
	if p.HasFinished {
		return 0
	}
	if p.LastUpdateUTC <= 0 {
		p.LastUpdateUTC = nowUTC
		return 0
	}
	gained := 0
	for p.LevelsCompleted < goal {
		d := g.LevelSeconds(p.AvgSecondsPerLevel, p.JitterPct, p.LevelsCompleted)
		if nowUTC-p.LastUpdateUTC < d {
			break
		}
		p.LastUpdateUTC += d
		p.LevelsCompleted++
		gained++
	}
	if p.LevelsCompleted >= goal {
		p.HasFinished = true
		p.FinishedUTC = p.LastUpdateUTC
	}
	return gained
}

// IsSleeping reports whether t falls in the bot's local sleep window of
// today or yesterday.
func IsSleeping(p *model.Participant, t int64) bool {
	if p.SleepDurationHours <= 0 {
		return false
	}
	offset := int64(math.Round(p.TimezoneOffsetHours * secondsPerHour))
	local := t + offset
	today := floorDiv(local, secondsPerDay)
	for _, day := range []int64{today, today - 1} {
		start := day*secondsPerDay + int64(p.SleepStartHour)*secondsPerHour
		end := start + int64(p.SleepDurationHours)*secondsPerHour
		if local >= start && local < end {
			return true
		}
	}
	return false
}

// ActivityAt reports the bot's activity at t.
func ActivityAt(p *model.Participant, g Generator, t int64) Activity {
	switch {
	case p.HasFinished:
		return ActivityFinished
	case IsSleeping(p, t):
		return ActivitySleeping
	case stuckUntil(p, g, t) > t:
		return ActivityStuck
	default:
		return ActivityRacing
	}
}

// FromProfile converts bot content into a race participant. The pace is
// drawn uniformly from the profile's speed range.
func FromProfile(b model.BotProfile, id string, rng *rand.Rand) model.Participant {
	lo, hi := b.MinSecondsPerLevel, b.MaxSecondsPerLevel
	if hi < lo {
		lo, hi = hi, lo
	}
	pace := lo
	if hi > lo {
		pace = lo + rng.Float64()*(hi-lo)
	}
	return model.Participant{
		ID:                  id,
		DisplayName:         b.DisplayName,
		AvatarID:            b.AvatarID,
		IsBot:               true,
		Personality:         b.Personality,
		AvgSecondsPerLevel:  pace,
		JitterPct:           b.JitterPct,
		StuckChancePerHour:  b.StuckChancePerHour,
		StuckMinMinutes:     b.StuckMinMinutes,
		StuckMaxMinutes:     b.StuckMaxMinutes,
		TimezoneOffsetHours: b.TimezoneOffsetHours,
		SleepStartHour:      b.SleepStartHour,
		SleepDurationHours:  b.SleepDurationHours,
	}
}

func stuckUntil(p *model.Participant, g Generator, t int64) int64 {
	var until int64
	for _, s := range stuckSpans(p, g, t, t+1) {
		if s.start <= t && s.end > until {
			until = s.end
		}
	}
	return until
}
