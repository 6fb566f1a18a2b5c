package schedule_test

import (
	"testing"
	"time"

	"github.com/okian/ghostrace/internal/domain/schedule"
	. "github.com/smartystreets/goconvey/convey"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.March, day, hour, minute, 0, 0, time.UTC)
}

func TestNextResetLocal(t *testing.T) {
	Convey("Given a 4:00 reset hour", t, func() {
		Convey("When it is before the boundary", func() {
			So(schedule.NextResetLocal(at(10, 2, 0), 4), ShouldEqual, at(10, 4, 0))
		})

		Convey("When it is exactly at the boundary", func() {
			So(schedule.NextResetLocal(at(10, 4, 0), 4), ShouldEqual, at(11, 4, 0))
		})

		Convey("When it is after the boundary", func() {
			So(schedule.NextResetLocal(at(10, 23, 59), 4), ShouldEqual, at(11, 4, 0))
		})

		Convey("When the month rolls over", func() {
			So(schedule.NextResetLocal(at(31, 5, 0), 4), ShouldEqual, time.Date(2026, time.April, 1, 4, 0, 0, 0, time.UTC))
		})
	})
}

func TestWindowID(t *testing.T) {
	Convey("Given a 4:00 reset hour", t, func() {
		Convey("Then 02:00 on day N belongs to day N-1's window", func() {
			early := schedule.WindowID(at(10, 2, 0), 4)
			So(early, ShouldEqual, 20260309)
			So(early, ShouldEqual, schedule.WindowID(at(9, 23, 0), 4))
			So(early, ShouldNotEqual, schedule.WindowID(at(10, 5, 0), 4))
		})

		Convey("Then the id is non-decreasing and constant between resets", func() {
			prev := 0
			start := at(10, 4, 0)
			for m := 0; m < 3*24*60; m += 17 {
				now := start.Add(time.Duration(m) * time.Minute)
				id := schedule.WindowID(now, 4)
				So(id, ShouldBeGreaterThanOrEqualTo, prev)
				if now.Before(at(11, 4, 0)) {
					So(id, ShouldEqual, 20260310)
				}
				prev = id
			}
		})

		Convey("Then a zero reset hour is the calendar date", func() {
			So(schedule.WindowID(at(10, 0, 0), 0), ShouldEqual, 20260310)
		})
	})
}

func TestEntryCooldown(t *testing.T) {
	Convey("Given a 6 hour entry cooldown", t, func() {
		now := at(10, 12, 0)
		lastJoin := now.Add(-3 * time.Hour).Unix()

		Convey("When the last join was 3 hours ago", func() {
			So(schedule.IsInEntryCooldown(now, lastJoin, 6), ShouldBeTrue)
			So(schedule.CooldownRemaining(now, lastJoin, 6), ShouldEqual, 10800)
		})

		Convey("When the last join was 7 hours ago", func() {
			So(schedule.IsInEntryCooldown(now, now.Add(-7*time.Hour).Unix(), 6), ShouldBeFalse)
		})

		Convey("When remaining time has a fraction it rounds up", func() {
			frac := now.Add(500 * time.Millisecond)
			So(schedule.CooldownRemaining(frac, lastJoin, 6), ShouldEqual, 10800)
		})

		Convey("When the cooldown is disabled", func() {
			So(schedule.IsInEntryCooldown(now, lastJoin, 0), ShouldBeFalse)
		})

		Convey("When the player never joined", func() {
			So(schedule.IsInEntryCooldown(now, 0, 6), ShouldBeFalse)
		})
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Given one evaluation point", t, func() {
		now := at(10, 2, 0)
		snap := schedule.Evaluate(now, 4, 6, now.Add(-time.Hour).Unix(), 20260309)

		So(snap.WindowID, ShouldEqual, 20260309)
		So(snap.NextResetLocal, ShouldEqual, at(10, 4, 0))
		So(snap.IsInCooldown, ShouldBeTrue)
		So(snap.CooldownRemainingSeconds, ShouldEqual, 5*3600)
		So(snap.HasShownEntryThisWindow, ShouldBeTrue)

		Convey("Then a different shown window is not this window", func() {
			snap := schedule.Evaluate(now, 4, 0, 0, 20260308)
			So(snap.HasShownEntryThisWindow, ShouldBeFalse)
			So(snap.IsInCooldown, ShouldBeFalse)
			So(snap.CooldownRemainingSeconds, ShouldEqual, 0)
		})
	})
}

func TestEvaluateGapFromBaseUTC(t *testing.T) {
	Convey("Given a previous round base instant", t, func() {
		now := at(10, 20, 0)

		Convey("When the gap ends before the next reset", func() {
			res := schedule.EvaluateGapFromBaseUTC(now, at(10, 19, 30).Unix(), 60, 4)
			So(res.NextAllowedLocal, ShouldEqual, at(10, 20, 30))
			So(res.OverflowsReset, ShouldBeFalse)
			So(res.RemainingSeconds, ShouldEqual, 1800)
		})

		Convey("When the gap crosses the next reset", func() {
			res := schedule.EvaluateGapFromBaseUTC(now, at(10, 19, 0).Unix(), 10*60, 4)
			So(res.OverflowsReset, ShouldBeTrue)
		})

		Convey("When there is no base", func() {
			res := schedule.EvaluateGapFromBaseUTC(now, 0, 60, 4)
			So(res.NextAllowedLocal, ShouldEqual, now)
			So(res.RemainingSeconds, ShouldEqual, 0)
		})
	})
}
