package roster_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func bot(id string, p model.Personality, minLvl, maxLvl int) model.BotProfile {
	return model.BotProfile{
		ID:                 id,
		DisplayName:        strings.ToUpper(id),
		Personality:        p,
		MinSecondsPerLevel: 80,
		MaxSecondsPerLevel: 120,
		MinPlayerLevel:     minLvl,
		MaxPlayerLevel:     maxLvl,
		StuckChancePerHour: 0.2,
		StuckMinMinutes:    5,
		StuckMaxMinutes:    15,
		SleepStartHour:     1,
		SleepDurationHours: 6,
	}
}

func pool() []model.BotProfile {
	return []model.BotProfile{
		bot("boss1", model.PersonalityBoss, 1, 50),
		bot("boss2", model.PersonalityBoss, 60, 90),
		bot("norm1", model.PersonalityNormal, 1, 50),
		bot("norm2", model.PersonalityNormal, 1, 50),
		bot("noob1", model.PersonalityNoob, 1, 50),
		bot("noob2", model.PersonalityNoob, 1, 50),
		bot("noob3", model.PersonalityNoob, 1, 50),
	}
}

func countTier(ps []model.Participant, p model.Personality) int {
	n := 0
	for _, b := range ps {
		if b.Personality == p {
			n++
		}
	}
	return n
}

func TestNormalize(t *testing.T) {
	Convey("Given a {boss:1, normal:1, noob:2} quota", t, func() {
		c := model.BotComposition{Boss: 1, Normal: 1, Noob: 2}

		Convey("When five players race", func() {
			So(roster.Normalize(c, 4), ShouldResemble, c)
		})

		Convey("When four players race the noob bucket shrinks", func() {
			So(roster.Normalize(c, 3), ShouldResemble, model.BotComposition{Boss: 1, Normal: 1, Noob: 1})
		})

		Convey("When the surplus exceeds the noob bucket", func() {
			So(roster.Normalize(c, 1), ShouldResemble, model.BotComposition{Boss: 1})
		})

		Convey("When the quota is short the noob bucket absorbs it", func() {
			So(roster.Normalize(c, 7), ShouldResemble, model.BotComposition{Boss: 1, Normal: 1, Noob: 5})
		})

		Convey("When buckets are negative they are floored at zero", func() {
			So(roster.Normalize(model.BotComposition{Boss: -2, Normal: 1}, 2), ShouldResemble, model.BotComposition{Normal: 1, Noob: 1})
		})
	})
}

func TestFilterByLevel(t *testing.T) {
	Convey("Given a pool with distinct level ranges", t, func() {
		Convey("When the level is covered", func() {
			out, exact := roster.FilterByLevel(pool(), 70)
			So(exact, ShouldBeTrue)
			So(len(out), ShouldEqual, 1)
			So(out[0].ID, ShouldEqual, "boss2")
		})

		Convey("When no range covers the level the closest ones are kept, ties included", func() {
			out, exact := roster.FilterByLevel(pool(), 55)
			So(exact, ShouldBeFalse)
			So(len(out), ShouldEqual, 7)
		})

		Convey("When the level is beyond every range", func() {
			out, exact := roster.FilterByLevel(pool(), 200)
			So(exact, ShouldBeFalse)
			So(len(out), ShouldEqual, 1)
			So(out[0].ID, ShouldEqual, "boss2")
		})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given a healthy pool", t, func() {
		req := roster.Request{
			Pool:           pool(),
			PlayerLevel:    10,
			Composition:    model.BotComposition{Boss: 1, Normal: 1, Noob: 2},
			PlayersPerRace: 5,
			GoalLevels:     10,
			NowUTC:         1000,
		}
		res := roster.Build(req, rand.New(rand.NewSource(1)))

		Convey("Then the quota is met without duplicates", func() {
			So(res.Short(), ShouldBeFalse)
			So(res.Warning(), ShouldEqual, "")
			So(len(res.Opponents), ShouldEqual, 4)
			So(countTier(res.Opponents, model.PersonalityBoss), ShouldEqual, 1)
			So(countTier(res.Opponents, model.PersonalityNormal), ShouldEqual, 1)
			So(countTier(res.Opponents, model.PersonalityNoob), ShouldEqual, 2)
			ids := map[string]bool{}
			for _, p := range res.Opponents {
				So(ids[p.ID], ShouldBeFalse)
				ids[p.ID] = true
				So(p.LastUpdateUTC, ShouldEqual, 1000)
				So(p.IsBot, ShouldBeTrue)
			}
		})

		Convey("Then a short race disables sleep and stuck", func() {
			for _, p := range res.Opponents {
				So(p.SleepDurationHours, ShouldEqual, 0)
				So(p.StuckChancePerHour, ShouldEqual, 0)
			}
		})
	})

	Convey("Given quotas the level-matched pool cannot meet", t, func() {
		req := roster.Request{
			Pool:           pool(),
			PlayerLevel:    70,
			Composition:    model.BotComposition{Boss: 2, Normal: 1, Noob: 1},
			PlayersPerRace: 5,
			GoalLevels:     30,
		}
		res := roster.Build(req, rand.New(rand.NewSource(3)))

		Convey("Then the full pool fills each tier, allowing duplicates", func() {
			So(len(res.Opponents), ShouldEqual, 4)
			So(res.ClosestMatch, ShouldBeFalse)
			So(countTier(res.Opponents, model.PersonalityBoss), ShouldEqual, 2)
			ids := map[string]bool{}
			for _, p := range res.Opponents {
				So(ids[p.ID], ShouldBeFalse)
				ids[p.ID] = true
			}
		})

		Convey("Then a long race keeps humanization", func() {
			for _, p := range res.Opponents {
				So(p.SleepDurationHours, ShouldEqual, 6)
			}
		})
	})

	Convey("Given a pool with a single noob", t, func() {
		req := roster.Request{
			Pool:           []model.BotProfile{bot("only", model.PersonalityNoob, 1, 5)},
			PlayerLevel:    3,
			Composition:    model.BotComposition{Boss: 2, Normal: 2},
			PlayersPerRace: 5,
			GoalLevels:     10,
		}
		res := roster.Build(req, rand.New(rand.NewSource(5)))

		Convey("Then the remaining shortfall is topped up from the closest set", func() {
			So(len(res.Opponents), ShouldEqual, 4)
			So(res.Opponents[0].DisplayName, ShouldEqual, "ONLY")
		})
	})

	Convey("Given an empty pool", t, func() {
		res := roster.Build(roster.Request{PlayersPerRace: 5, Composition: model.BotComposition{Noob: 4}}, rand.New(rand.NewSource(1)))

		Convey("Then the shortfall is reported rather than dropped", func() {
			So(res.Short(), ShouldBeTrue)
			So(res.Shortfall, ShouldEqual, 4)
			So(res.Warning(), ShouldContainSubstring, "0 of 4")
		})
	})

	Convey("For any non-empty pool and players per race", t, func() {
		for seed := int64(0); seed < 20; seed++ {
			for players := 2; players <= 8; players++ {
				rng := rand.New(rand.NewSource(seed))
				p := pool()[:1+int(seed)%len(pool())]
				res := roster.Build(roster.Request{
					Pool:           p,
					PlayerLevel:    int(seed) * 7,
					Composition:    model.BotComposition{Boss: int(seed % 3), Normal: 1, Noob: 3},
					PlayersPerRace: players,
					GoalLevels:     15,
				}, rng)
				So(len(res.Opponents), ShouldEqual, players-1)
				So(res.Short(), ShouldBeFalse)
			}
		}
	})
}

func TestPacing(t *testing.T) {
	Convey("Given goals of different lengths", t, func() {
		So(roster.BasePace(10), ShouldEqual, 120)
		So(roster.BasePace(20), ShouldEqual, 75)
		So(roster.BasePace(40), ShouldEqual, 70)
		So(roster.BasePace(3), ShouldEqual, 180)
	})

	Convey("Given short and long goals", t, func() {
		So(roster.ImpliedSeconds(20), ShouldEqual, 25*60)
		So(roster.ImpliedSeconds(40), ShouldEqual, 40*70)
		So(roster.IsShortRace(12), ShouldBeTrue)
		So(roster.IsShortRace(20), ShouldBeTrue)
		So(roster.IsShortRace(25), ShouldBeTrue)
		So(roster.IsShortRace(26), ShouldBeFalse)
		So(roster.IsShortRace(40), ShouldBeFalse)
	})

	Convey("Given a goal of 20 in a two hour window", t, func() {
		res := roster.Build(roster.Request{
			Pool:           pool(),
			PlayerLevel:    10,
			Composition:    model.BotComposition{Boss: 1, Normal: 1, Noob: 1},
			PlayersPerRace: 4,
			GoalLevels:     20,
			NowUTC:         1000,
		}, rand.New(rand.NewSource(2)))

		Convey("Then the implied finish is short and bots never sleep or stall", func() {
			So(len(res.Opponents), ShouldEqual, 3)
			for _, p := range res.Opponents {
				So(p.SleepDurationHours, ShouldEqual, 0)
				So(p.StuckChancePerHour, ShouldEqual, 0)
				So(p.StuckUntilUTC, ShouldEqual, 0)
			}
		})
	})

	Convey("Given bots of each tier on a long race", t, func() {
		bots := []model.Participant{
			{ID: "b", IsBot: true, Personality: model.PersonalityBoss, StuckUntilUTC: 50, StuckChancePerHour: 0.5, SleepDurationHours: 8},
			{ID: "n", IsBot: true, Personality: model.PersonalityNormal, StuckUntilUTC: 500},
			{ID: "z", IsBot: true, Personality: model.PersonalityNoob},
		}
		roster.TunePacing(bots, 40, 100, rand.New(rand.NewSource(9)))

		Convey("Then boss is faster than baseline and noob slower", func() {
			So(bots[0].AvgSecondsPerLevel, ShouldBeBetweenOrEqual, 70*0.75, 70*0.9)
			So(bots[1].AvgSecondsPerLevel, ShouldBeBetweenOrEqual, 70*0.95, 70*1.1)
			So(bots[2].AvgSecondsPerLevel, ShouldBeBetweenOrEqual, 70*1.15, 70*1.4)
		})

		Convey("Then humanization stays on", func() {
			So(bots[0].StuckChancePerHour, ShouldEqual, 0.5)
			So(bots[0].SleepDurationHours, ShouldEqual, 8)
		})

		Convey("Then only elapsed stuck windows are cleared", func() {
			So(bots[0].StuckUntilUTC, ShouldEqual, 0)
			So(bots[1].StuckUntilUTC, ShouldEqual, 500)
		})
	})

}
