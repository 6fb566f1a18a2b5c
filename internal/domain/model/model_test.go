package model_test

import (
	"testing"

	"github.com/okian/ghostrace/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEventConfigRewardForRank(t *testing.T) {
	Convey("Given a config with four reward tiers", t, func() {
		cfg := model.EventConfig{Rewards: []model.Reward{{Coins: 400}, {Coins: 300}, {Coins: 200}, {Coins: 100}}}

		Convey("Then ranks 1..4 map to their own tier", func() {
			for rank, want := range []int{400, 300, 200, 100} {
				r, ok := cfg.RewardForRank(rank + 1)
				So(ok, ShouldBeTrue)
				So(r.Coins, ShouldEqual, want)
			}
		})

		Convey("Then rank 5 and beyond share the lowest tier", func() {
			r, ok := cfg.RewardForRank(5)
			So(ok, ShouldBeTrue)
			So(r.Coins, ShouldEqual, 100)
			r, _ = cfg.RewardForRank(9)
			So(r.Coins, ShouldEqual, 100)
		})

		Convey("Then rank 0 has no reward", func() {
			_, ok := cfg.RewardForRank(0)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestBotProfileLevelDistance(t *testing.T) {
	Convey("Given a profile for levels 10..20", t, func() {
		b := model.BotProfile{MinPlayerLevel: 10, MaxPlayerLevel: 20}

		So(b.LevelDistance(15), ShouldEqual, 0)
		So(b.LevelDistance(10), ShouldEqual, 0)
		So(b.LevelDistance(7), ShouldEqual, 3)
		So(b.LevelDistance(26), ShouldEqual, 6)
	})
}

func TestRunHelpers(t *testing.T) {
	Convey("Given a run with two opponents", t, func() {
		run := &model.Run{
			GoalLevels:     10,
			PlayersPerRace: 3,
			EndUTC:         100,
			Player:         model.Participant{ID: "player"},
			Opponents:      []model.Participant{{ID: "a", IsBot: true}, {ID: "b", IsBot: true}},
		}

		Convey("Then participants list the player first", func() {
			ps := run.Participants()
			So(len(ps), ShouldEqual, 3)
			So(ps[0].ID, ShouldEqual, "player")
			So(ps[2].ID, ShouldEqual, "b")
		})

		Convey("Then a clone does not share opponents", func() {
			c := run.Clone()
			c.Opponents[0].LevelsCompleted = 5
			So(run.Opponents[0].LevelsCompleted, ShouldEqual, 0)
		})

		Convey("Then validity requires goal and player count", func() {
			So(run.Valid(), ShouldBeTrue)
			run.GoalLevels = 0
			So(run.Valid(), ShouldBeFalse)
			var nilRun *model.Run
			So(nilRun.Valid(), ShouldBeFalse)
		})
	})
}

func TestStateString(t *testing.T) {
	Convey("State names are stable", t, func() {
		So(model.StateExtendOffer.String(), ShouldEqual, "extend_offer")
		So(model.State(99).String(), ShouldEqual, "unknown")
		So(model.StateInRace.HasRun(), ShouldBeTrue)
		So(model.StateIdle.HasRun(), ShouldBeFalse)
	})
}
