// Package standings orders race participants into a leaderboard.
package standings

import (
	"sort"

	"github.com/okian/ghostrace/internal/domain/model"
)

// Standing is one ranked row.
type Standing struct {
	Rank            int    `json:"rank"`
	ParticipantID   string `json:"participant_id"`
	DisplayName     string `json:"display_name"`
	IsBot           bool   `json:"is_bot"`
	LevelsCompleted int    `json:"levels_completed"`
	HasFinished     bool   `json:"has_finished"`
	FinishedUTC     int64  `json:"finished_utc,omitempty"`
}

// Compute returns participants in rank order:
//  1. finishers before non-finishers
//  2. finishers by ascending finish instant (last update when unset)
//  3. non-finishers by descending levels, clamped at goal
//  4. at equal unfinished progress the player ranks after bots, then input order.
//
// Rule 4 keeps a stalled player from sharing the top of the board with an
// active bot.
func Compute(participants []model.Participant, goalLevels int) []Standing {
	idx := make([]int, len(participants))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return less(participants[idx[a]], participants[idx[b]], goalLevels)
	})

	out := make([]Standing, len(idx))
	for rank, i := range idx {
		p := participants[i]
		out[rank] = Standing{
			Rank:            rank + 1,
			ParticipantID:   p.ID,
			DisplayName:     p.DisplayName,
			IsBot:           p.IsBot,
			LevelsCompleted: p.LevelsCompleted,
			HasFinished:     p.HasFinished,
			FinishedUTC:     p.FinishedUTC,
		}
	}
	return out
}

// RankOf returns the 1-based rank of id, or 0 when absent.
func RankOf(rows []Standing, id string) int {
	for _, r := range rows {
		if r.ParticipantID == id {
			return r.Rank
		}
	}
	return 0
}

func less(a, b model.Participant, goal int) bool {
	if a.HasFinished != b.HasFinished {
		return a.HasFinished
	}
	if a.HasFinished {
		return a.FinishKey() < b.FinishKey()
	}
	la, lb := clampLevels(a.LevelsCompleted, goal), clampLevels(b.LevelsCompleted, goal)
	if la != lb {
		return la > lb
	}
	// player loses ties against bots
	if a.IsBot != b.IsBot {
		return a.IsBot
	}
	return false
}

func clampLevels(levels, goal int) int {
	if goal > 0 && levels > goal {
		return goal
	}
	return levels
}
