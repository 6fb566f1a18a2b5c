// Package schedule holds the pure time-window arithmetic of the race event:
// daily reset boundaries, window ids, entry cooldown and next-round gaps.
//
// All functions take the caller's local wall clock as a time.Time carrying
// its location. None of them read the system clock.
package schedule

import (
	"math"
	"time"
)

// Snapshot is the result of one time evaluation at a decision point.
type Snapshot struct {
	WindowID                 int
	NextResetLocal           time.Time
	IsInCooldown             bool
	CooldownRemainingSeconds int64
	HasShownEntryThisWindow  bool
}

// GapResult describes when the next round may start.
type GapResult struct {
	NextAllowedLocal time.Time
	// OverflowsReset is true when the next allowed start is at or past the
	// next daily reset boundary.
	OverflowsReset bool
	// RemainingSeconds until NextAllowedLocal, clamped at zero.
	RemainingSeconds int64
}

// NextResetLocal returns the next instant at resetHour:00 in localNow's
// location. If localNow is at or after today's boundary, tomorrow's is used.
func NextResetLocal(localNow time.Time, resetHour int) time.Time {
	y, m, d := localNow.Date()
	boundary := time.Date(y, m, d, clampHour(resetHour), 0, 0, 0, localNow.Location())
	if !localNow.Before(boundary) {
		boundary = time.Date(y, m, d+1, clampHour(resetHour), 0, 0, 0, localNow.Location())
	}
	return boundary
}

// WindowID returns the YYYYMMDD key of the daily window containing localNow.
// Times before the reset hour belong to the previous day's window.
func WindowID(localNow time.Time, resetHour int) int {
	shifted := localNow.Add(-time.Duration(clampHour(resetHour)) * time.Hour)
	y, m, d := shifted.Date()
	return y*10000 + int(m)*100 + d
}

// CooldownRemaining returns the whole seconds (rounded up) left in the entry
// cooldown that started at lastJoinLocalUnix. Zero when there is no cooldown.
func CooldownRemaining(localNow time.Time, lastJoinLocalUnix int64, cooldownHours int) int64 {
	if cooldownHours <= 0 || lastJoinLocalUnix <= 0 {
		return 0
	}
	until := time.Unix(lastJoinLocalUnix, 0).Add(time.Duration(cooldownHours) * time.Hour)
	left := until.Sub(localNow)
	if left <= 0 {
		return 0
	}
	return int64(math.Ceil(left.Seconds()))
}

// IsInEntryCooldown reports whether localNow is within cooldownHours of the
// last join.
func IsInEntryCooldown(localNow time.Time, lastJoinLocalUnix int64, cooldownHours int) bool {
	return CooldownRemaining(localNow, lastJoinLocalUnix, cooldownHours) > 0
}

// HasShownEntryInWindow reports whether the entry popup was already shown in
// the current window.
func HasShownEntryInWindow(lastShownWindowID, currentWindowID int) bool {
	return lastShownWindowID != 0 && lastShownWindowID == currentWindowID
}

// Evaluate computes every window and cooldown value for one decision point so
// callers never mix results from two clock reads.
func Evaluate(localNow time.Time, resetHour, cooldownHours int, lastJoinLocalUnix int64, lastShownWindowID int) Snapshot {
	windowID := WindowID(localNow, resetHour)
	remaining := CooldownRemaining(localNow, lastJoinLocalUnix, cooldownHours)
	return Snapshot{
		WindowID:                 windowID,
		NextResetLocal:           NextResetLocal(localNow, resetHour),
		IsInCooldown:             remaining > 0,
		CooldownRemainingSeconds: remaining,
		HasShownEntryThisWindow:  HasShownEntryInWindow(lastShownWindowID, windowID),
	}
}

// EvaluateGapFromBaseUTC returns when a new round may start given the base
// instant (unix seconds) of the previous round and a gap in minutes.
func EvaluateGapFromBaseUTC(localNow time.Time, baseUTC int64, gapMinutes, resetHour int) GapResult {
	if baseUTC <= 0 || gapMinutes <= 0 {
		return GapResult{NextAllowedLocal: localNow}
	}
	next := time.Unix(baseUTC, 0).In(localNow.Location()).Add(time.Duration(gapMinutes) * time.Minute)
	res := GapResult{
		NextAllowedLocal: next,
		OverflowsReset:   !next.Before(NextResetLocal(localNow, resetHour)),
	}
	if left := next.Sub(localNow); left > 0 {
		res.RemainingSeconds = int64(math.Ceil(left.Seconds()))
	}
	return res
}

func clampHour(h int) int {
	switch {
	case h < 0:
		return 0
	case h > 23:
		return 23
	default:
		return h
	}
}
