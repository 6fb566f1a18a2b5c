package ghost

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// stream purposes keep the per-level and per-hour draws independent.
const (
	purposeLevel uint64 = 0x9e3779b97f4a7c15
	purposeStuck uint64 = 0xc2b2ae3d27d4eb4f
)

// Generator is the identity-seeded randomness of one bot in one run. It holds
// no cursor: every draw is addressed by purpose and index, so the same run and
// bot always reproduce the same values no matter how often or in which order
// the simulator asks for them.
type Generator struct {
	seed uint64
}

// NewGenerator derives the generator for botID in runID.
func NewGenerator(runID, botID string) Generator {
	h := fnv.New64a()
	_, _ = h.Write([]byte(runID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(botID))
	return Generator{seed: h.Sum64()}
}

// Seed exposes the combined identity hash.
func (g Generator) Seed() uint64 { return g.seed }

func (g Generator) stream(purpose uint64, index int64) *rand.Rand {
	s := splitmix64(g.seed ^ purpose ^ splitmix64(uint64(index)))
	return rand.New(rand.NewSource(int64(s & math.MaxInt64))) //nolint:gosec // deterministic simulation
}

// LevelSeconds returns the whole seconds the bot needs for level index k:
// max(10, avg*(1+jitter)) with jitter uniform in [-jitterPct, +jitterPct].
func (g Generator) LevelSeconds(avgSecondsPerLevel, jitterPct float64, k int) int64 {
	jp := math.Max(0, math.Min(maxJitterPct, jitterPct))
	r := g.stream(purposeLevel, int64(k))
	jitter := (r.Float64()*2 - 1) * jp
	sec := math.Max(minSecondsPerLevel, avgSecondsPerLevel*(1+jitter))
	return int64(math.Ceil(sec))
}

// StuckWindow returns the stuck interval rolled for the hour bucket starting
// at bucket*3600, if any. The per-hour chance c becomes 1-(1-c)^hours over
// the bucket length.
func (g Generator) StuckWindow(bucket int64, chancePerHour, minMinutes, maxMinutes float64) (start, end int64, ok bool) {
	c := math.Max(0, math.Min(1, chancePerHour))
	if c == 0 || maxMinutes <= 0 {
		return 0, 0, false
	}
	r := g.stream(purposeStuck, bucket)
	p := 1 - math.Pow(1-c, stuckBucketSeconds/secondsPerHour)
	if r.Float64() >= p {
		return 0, 0, false
	}
	lo := math.Max(0, minMinutes)
	hi := math.Max(lo, maxMinutes)
	minutes := lo + r.Float64()*(hi-lo)
	start = bucket*stuckBucketSeconds + r.Int63n(stuckBucketSeconds)
	end = start + int64(math.Ceil(minutes*60))
	return start, end, end > start
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
