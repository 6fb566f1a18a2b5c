package standings_test

import (
	"testing"

	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

func ids(rows []standings.Standing) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ParticipantID
	}
	return out
}

func TestCompute(t *testing.T) {
	Convey("Given finishers and non-finishers", t, func() {
		ps := []model.Participant{
			{ID: "player", LevelsCompleted: 9},
			{ID: "late", IsBot: true, LevelsCompleted: 10, HasFinished: true, FinishedUTC: 200},
			{ID: "early", IsBot: true, LevelsCompleted: 10, HasFinished: true, FinishedUTC: 100},
			{ID: "slow", IsBot: true, LevelsCompleted: 3},
		}

		rows := standings.Compute(ps, 10)

		Convey("Then earlier finishers rank first and any finisher beats any non-finisher", func() {
			So(ids(rows), ShouldResemble, []string{"early", "late", "player", "slow"})
			So(rows[0].Rank, ShouldEqual, 1)
			So(standings.RankOf(rows, "player"), ShouldEqual, 3)
			So(standings.RankOf(rows, "missing"), ShouldEqual, 0)
		})
	})

	Convey("Given a finisher without a finish instant", t, func() {
		ps := []model.Participant{
			{ID: "a", IsBot: true, HasFinished: true, LastUpdateUTC: 300},
			{ID: "b", IsBot: true, HasFinished: true, FinishedUTC: 250},
		}
		So(ids(standings.Compute(ps, 5)), ShouldResemble, []string{"b", "a"})
	})

	Convey("Given the player tied with bots on progress", t, func() {
		ps := []model.Participant{
			{ID: "player", LevelsCompleted: 4},
			{ID: "bot1", IsBot: true, LevelsCompleted: 4},
			{ID: "bot2", IsBot: true, LevelsCompleted: 4},
		}

		Convey("Then the player ranks after every tied bot and bots keep input order", func() {
			So(ids(standings.Compute(ps, 10)), ShouldResemble, []string{"bot1", "bot2", "player"})
		})
	})

	Convey("Given progress above the goal", t, func() {
		ps := []model.Participant{
			{ID: "bot1", IsBot: true, LevelsCompleted: 10},
			{ID: "bot2", IsBot: true, LevelsCompleted: 14},
		}

		Convey("Then levels are clamped at goal and input order breaks the tie", func() {
			So(ids(standings.Compute(ps, 10)), ShouldResemble, []string{"bot1", "bot2"})
		})
	})

	Convey("Given no participants", t, func() {
		So(standings.Compute(nil, 10), ShouldBeEmpty)
	})
}
