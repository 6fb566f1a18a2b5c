// Package roster builds the ghost opponent list for a new run.
package roster

import (
	"fmt"
	"math/rand"

	"github.com/okian/ghostrace/internal/domain/ghost"
	"github.com/okian/ghostrace/internal/domain/model"
)

// Request carries the inputs of one roster build.
type Request struct {
	Pool           []model.BotProfile
	PlayerLevel    int
	Composition    model.BotComposition
	PlayersPerRace int
	GoalLevels     int
	NowUTC         int64
}

// Result is the built roster. Shortfall > 0 means the pool could not supply
// enough bots; the run proceeds with fewer opponents.
type Result struct {
	Opponents   []model.Participant
	Composition model.BotComposition
	Need        int
	Shortfall   int
	// ClosestMatch is true when no bot covered the player's level exactly.
	ClosestMatch bool
}

// Short reports whether the roster is missing opponents.
func (r Result) Short() bool { return r.Shortfall > 0 }

// Warning describes a shortfall for logs, or "" when the roster is full.
func (r Result) Warning() string {
	if !r.Short() {
		return ""
	}
	return fmt.Sprintf("bot pool empty or misconfigured: filled %d of %d opponents", len(r.Opponents), r.Need)
}

// Build assembles exactly PlayersPerRace-1 opponents whenever the pool is not
// empty:
//  1. normalize the quota to the needed count
//  2. filter the pool by player level, falling back to the closest ranges
//  3. fill tier quotas without duplicates, refilling from the full pool
//  4. top up any remaining shortfall from the level-filtered set
//  5. shuffle the order
//  6. tune per-run pacing
func Build(req Request, rng *rand.Rand) Result {
	need := req.PlayersPerRace - 1
	if need < 0 {
		need = 0
	}
	res := Result{Need: need, Composition: Normalize(req.Composition, need)}
	if need == 0 || len(req.Pool) == 0 {
		res.Shortfall = need
		return res
	}

	filtered, exact := FilterByLevel(req.Pool, req.PlayerLevel)
	res.ClosestMatch = !exact

	var picked []model.BotProfile
	for _, tier := range model.Personalities {
		quota := res.Composition.Count(tier)
		got := pickUnique(byPersonality(filtered, tier), quota, rng)
		if short := quota - len(got); short > 0 {
			got = append(got, pickAny(byPersonality(req.Pool, tier), short, rng)...)
		}
		picked = append(picked, got...)
	}
	if short := need - len(picked); short > 0 {
		picked = append(picked, pickAny(filtered, short, rng)...)
	}

	rng.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })

	seen := make(map[string]int, len(picked))
	res.Opponents = make([]model.Participant, 0, len(picked))
	for _, b := range picked {
		seen[b.ID]++
		id := b.ID
		if n := seen[b.ID]; n > 1 {
			id = fmt.Sprintf("%s#%d", b.ID, n)
		}
		p := ghost.FromProfile(b, id, rng)
		p.LastUpdateUTC = req.NowUTC
		res.Opponents = append(res.Opponents, p)
	}
	TunePacing(res.Opponents, req.GoalLevels, req.NowUTC, rng)

	res.Shortfall = need - len(res.Opponents)
	return res
}

// Normalize makes the quota sum exactly need. A deficit goes to noob; a
// surplus is removed from noob, then normal, then boss.
func Normalize(c model.BotComposition, need int) model.BotComposition {
	c.Boss, c.Normal, c.Noob = max(0, c.Boss), max(0, c.Normal), max(0, c.Noob)
	total := c.Total()
	if total < need {
		c.Noob += need - total
		return c
	}
	surplus := total - need
	for _, bucket := range []*int{&c.Noob, &c.Normal, &c.Boss} {
		take := min(surplus, *bucket)
		*bucket -= take
		surplus -= take
	}
	return c
}

// FilterByLevel returns the bots whose level range contains level. When none
// does, it returns every bot at the smallest level distance and exact=false.
func FilterByLevel(pool []model.BotProfile, level int) (out []model.BotProfile, exact bool) {
	best := -1
	for _, b := range pool {
		d := b.LevelDistance(level)
		switch {
		case best < 0 || d < best:
			best = d
			out = append(out[:0], b)
		case d == best:
			out = append(out, b)
		}
	}
	return out, best == 0
}

func byPersonality(pool []model.BotProfile, p model.Personality) []model.BotProfile {
	var out []model.BotProfile
	for _, b := range pool {
		if b.Personality == p {
			out = append(out, b)
		}
	}
	return out
}

// pickUnique draws up to n distinct bots.
func pickUnique(from []model.BotProfile, n int, rng *rand.Rand) []model.BotProfile {
	if n <= 0 || len(from) == 0 {
		return nil
	}
	order := rng.Perm(len(from))
	if n > len(order) {
		n = len(order)
	}
	out := make([]model.BotProfile, n)
	for i := 0; i < n; i++ {
		out[i] = from[order[i]]
	}
	return out
}

// pickAny draws n bots allowing duplicates.
func pickAny(from []model.BotProfile, n int, rng *rand.Rand) []model.BotProfile {
	if n <= 0 || len(from) == 0 {
		return nil
	}
	out := make([]model.BotProfile, n)
	for i := range out {
		out[i] = from[rng.Intn(len(from))]
	}
	return out
}
