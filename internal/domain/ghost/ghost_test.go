package ghost_test

import (
	"math/rand"
	"testing"

	"github.com/okian/ghostrace/internal/domain/ghost"
	"github.com/okian/ghostrace/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const t0 = int64(1_773_100_800) // 2026-03-10T00:00:00Z

func steadyBot(id string) model.Participant {
	return model.Participant{ID: id, IsBot: true, AvgSecondsPerLevel: 60, LastUpdateUTC: t0}
}

func humanBot(id string) model.Participant {
	return model.Participant{
		ID:                 id,
		IsBot:              true,
		AvgSecondsPerLevel: 95,
		JitterPct:          0.3,
		StuckChancePerHour: 0.6,
		StuckMinMinutes:    5,
		StuckMaxMinutes:    40,
		SleepStartHour:     2,
		SleepDurationHours: 5,
		LastUpdateUTC:      t0,
	}
}

func newRun(opponents ...model.Participant) *model.Run {
	return &model.Run{
		ID:             "run-1",
		GoalLevels:     500,
		PlayersPerRace: len(opponents) + 1,
		Player:         model.Participant{ID: "player", LastUpdateUTC: t0},
		Opponents:      opponents,
	}
}

func TestAdvanceSteadyPace(t *testing.T) {
	Convey("Given a bot at 60s per level without jitter", t, func() {
		run := newRun(steadyBot("bot"))
		run.GoalLevels = 10

		Convey("When 599 seconds elapse", func() {
			res := ghost.Advance(run, t0+599)
			So(res.LevelsGained, ShouldEqual, 9)
			So(run.Opponents[0].LevelsCompleted, ShouldEqual, 9)
			So(run.Opponents[0].LastUpdateUTC, ShouldEqual, t0+540)
		})

		Convey("When the goal is reached", func() {
			res := ghost.Advance(run, t0+3600)
			bot := run.Opponents[0]
			So(bot.HasFinished, ShouldBeTrue)
			So(bot.LevelsCompleted, ShouldEqual, 10)
			So(bot.FinishedUTC, ShouldEqual, t0+600)
			So(res.Finished, ShouldResemble, []string{"bot"})

			Convey("Then a finished bot is skipped", func() {
				So(ghost.Advance(run, t0+7200).LevelsGained, ShouldEqual, 0)
			})
		})

		Convey("Then the player is never advanced", func() {
			ghost.Advance(run, t0+600)
			So(run.Player.LevelsCompleted, ShouldEqual, 0)
		})
	})

	Convey("Given a bot that was never updated", t, func() {
		bot := steadyBot("bot")
		bot.LastUpdateUTC = 0
		run := newRun(bot)

		Convey("Then the first call only stamps the time", func() {
			ghost.Advance(run, t0+500)
			So(run.Opponents[0].LastUpdateUTC, ShouldEqual, t0+500)
			So(run.Opponents[0].LevelsCompleted, ShouldEqual, 0)
		})
	})

	Convey("Given a time in the past", t, func() {
		run := newRun(steadyBot("bot"))
		So(ghost.Advance(run, t0-100).LevelsGained, ShouldEqual, 0)
		So(run.Opponents[0].LastUpdateUTC, ShouldEqual, t0)
	})
}

func TestAdvanceIdempotentAndReplaySafe(t *testing.T) {
	Convey("Given bots with jitter, sleep and stuck behavior", t, func() {
		mk := func() *model.Run {
			return newRun(humanBot("a"), humanBot("b"), humanBot("c"), steadyBot("d"))
		}

		Convey("When advancing twice to the same instant", func() {
			run := mk()
			ghost.Advance(run, t0+20_000)
			once := run.Clone()
			ghost.Advance(run, t0+20_000)
			So(run.Opponents, ShouldResemble, once.Opponents)
		})

		Convey("When advancing A->C versus A->B->C", func() {
			direct, stepped := mk(), mk()
			a, c := t0+1_000, t0+30*3600
			ghost.Advance(direct, a)
			ghost.Advance(direct, c)

			ghost.Advance(stepped, a)
			for b := a + 777; b < c; b += 1_913 {
				ghost.Advance(stepped, b)
			}
			ghost.Advance(stepped, c)

			So(stepped.Opponents, ShouldResemble, direct.Opponents)
		})

		Convey("When the same run and bot are simulated in another run object", func() {
			r1, r2 := mk(), mk()
			ghost.Advance(r1, t0+50_000)
			ghost.Advance(r2, t0+50_000)
			So(r1.Opponents, ShouldResemble, r2.Opponents)
		})
	})
}

func TestSleepWindow(t *testing.T) {
	Convey("Given a bot sleeping 22:00 to 02:00 local at UTC+2", t, func() {
		bot := steadyBot("owl")
		bot.TimezoneOffsetHours = 2
		bot.SleepStartHour = 22
		bot.SleepDurationHours = 4

		Convey("Then 23:30 UTC (01:30 local) is inside yesterday's window", func() {
			So(ghost.IsSleeping(&bot, t0+23*3600+1800), ShouldBeTrue)
		})

		Convey("Then 20:30 UTC (22:30 local) is inside today's window", func() {
			So(ghost.IsSleeping(&bot, t0+20*3600+1800), ShouldBeTrue)
		})

		Convey("Then 12:00 UTC is awake", func() {
			So(ghost.IsSleeping(&bot, t0+12*3600), ShouldBeFalse)
		})

		Convey("When simulating across the whole night", func() {
			run := newRun(bot)
			run.Opponents[0].LastUpdateUTC = t0 + 20*3600
			ghost.Advance(run, t0+24*3600)
			So(run.Opponents[0].LevelsCompleted, ShouldEqual, 0)
			So(ghost.ActivityAt(&run.Opponents[0], ghost.NewGenerator(run.ID, "owl"), t0+21*3600), ShouldEqual, ghost.ActivitySleeping)
		})
	})
}

func TestStuckWindows(t *testing.T) {
	Convey("Given a bot that is always stuck", t, func() {
		bot := steadyBot("rock")
		bot.StuckChancePerHour = 1
		bot.StuckMinMinutes = 120
		bot.StuckMaxMinutes = 120

		run := newRun(bot)
		ghost.Advance(run, t0+6*3600)

		Convey("Then it makes no progress and reports a stuck-until instant", func() {
			So(run.Opponents[0].LevelsCompleted, ShouldBeLessThan, 60)
			So(run.Opponents[0].StuckUntilUTC, ShouldBeGreaterThan, t0+6*3600)
		})
	})

	Convey("Given a stuck chance of zero", t, func() {
		g := ghost.NewGenerator("run", "bot")
		for b := int64(0); b < 100; b++ {
			_, _, ok := g.StuckWindow(b, 0, 5, 10)
			So(ok, ShouldBeFalse)
		}
	})
}

func TestGenerator(t *testing.T) {
	Convey("Given identity seeded generators", t, func() {
		a := ghost.NewGenerator("run-1", "bot-1")
		b := ghost.NewGenerator("run-1", "bot-1")
		c := ghost.NewGenerator("run-1", "bot-2")

		So(a.Seed(), ShouldEqual, b.Seed())
		So(a.Seed(), ShouldNotEqual, c.Seed())

		Convey("Then level durations are reproducible and bounded", func() {
			for k := 0; k < 50; k++ {
				d := a.LevelSeconds(100, 0.9, k)
				So(d, ShouldEqual, b.LevelSeconds(100, 0.9, k))
				So(d, ShouldBeBetweenOrEqual, 50, 150)
			}
		})

		Convey("Then the pace never drops under ten seconds", func() {
			So(a.LevelSeconds(1, 0, 0), ShouldEqual, 10)
		})
	})
}

func TestStep(t *testing.T) {
	Convey("Given the debug stepper", t, func() {
		bot := steadyBot("bot")
		bot.SleepDurationHours = 24
		g := ghost.NewGenerator("run", "bot")

		Convey("Then sleep is ignored and leftover time carries over", func() {
			So(ghost.Step(&bot, g, 100, t0+150), ShouldEqual, 2)
			So(bot.LastUpdateUTC, ShouldEqual, t0+120)
			So(ghost.Step(&bot, g, 100, t0+180), ShouldEqual, 1)
		})

		Convey("Then reaching the goal finishes the bot", func() {
			ghost.Step(&bot, g, 3, t0+1000)
			So(bot.HasFinished, ShouldBeTrue)
			So(bot.FinishedUTC, ShouldEqual, t0+180)
		})
	})
}

func TestFromProfile(t *testing.T) {
	Convey("Given a bot profile", t, func() {
		prof := model.BotProfile{
			ID:                 "p1",
			DisplayName:        "Speedy",
			Personality:        model.PersonalityBoss,
			MinSecondsPerLevel: 80,
			MaxSecondsPerLevel: 120,
			JitterPct:          0.2,
			SleepStartHour:     1,
			SleepDurationHours: 6,
		}
		p := ghost.FromProfile(prof, "p1#2", rand.New(rand.NewSource(7)))

		So(p.ID, ShouldEqual, "p1#2")
		So(p.IsBot, ShouldBeTrue)
		So(p.Personality, ShouldEqual, model.PersonalityBoss)
		So(p.AvgSecondsPerLevel, ShouldBeBetweenOrEqual, 80, 120)
		So(p.SleepDurationHours, ShouldEqual, 6)
		So(p.LevelsCompleted, ShouldEqual, 0)
	})
}
