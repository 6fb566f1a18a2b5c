package ghost

import (
	"math"
	"sort"

	"github.com/okian/ghostrace/internal/domain/model"
)

type span struct{ start, end int64 }

// blockedSpans returns the sleep and stuck intervals of p that overlap
// [from, to), merged and sorted.
func blockedSpans(p *model.Participant, g Generator, from, to int64) []span {
	var out []span
	out = append(out, sleepSpans(p, from, to)...)
	out = append(out, stuckSpans(p, g, from, to)...)
	return merge(out)
}

// availableSpans is the complement of blockedSpans within [from, to).
func availableSpans(p *model.Participant, g Generator, from, to int64) []span {
	if to <= from {
		return nil
	}
	var out []span
	cursor := from
	for _, b := range blockedSpans(p, g, from, to) {
		if b.start > cursor {
			out = append(out, span{cursor, min(b.start, to)})
		}
		if b.end > cursor {
			cursor = b.end
		}
		if cursor >= to {
			break
		}
	}
	if cursor < to {
		out = append(out, span{cursor, to})
	}
	return out
}

// sleepSpans covers the local sleep window of each day touching the range,
// starting one day early so windows that cross midnight are found.
func sleepSpans(p *model.Participant, from, to int64) []span {
	if p.SleepDurationHours <= 0 {
		return nil
	}
	offset := int64(math.Round(p.TimezoneOffsetHours * secondsPerHour))
	first := floorDiv(from+offset, secondsPerDay) - 1
	last := floorDiv(to+offset, secondsPerDay)
	var out []span
	for day := first; day <= last; day++ {
		start := day*secondsPerDay + int64(p.SleepStartHour)*secondsPerHour - offset
		end := start + int64(p.SleepDurationHours)*secondsPerHour
		if end > from && start < to {
			out = append(out, span{start, end})
		}
	}
	return out
}

func stuckSpans(p *model.Participant, g Generator, from, to int64) []span {
	if p.StuckChancePerHour <= 0 || p.StuckMaxMinutes <= 0 {
		return nil
	}
	reach := int64(math.Ceil(p.StuckMaxMinutes*60)) + stuckBucketSeconds
	first := floorDiv(from-reach, stuckBucketSeconds)
	last := floorDiv(to, stuckBucketSeconds)
	var out []span
	for b := first; b <= last; b++ {
		start, end, ok := g.StuckWindow(b, p.StuckChancePerHour, p.StuckMinMinutes, p.StuckMaxMinutes)
		if ok && end > from && start < to {
			out = append(out, span{start, end})
		}
	}
	return out
}

func merge(in []span) []span {
	if len(in) < 2 {
		return in
	}
	sort.Slice(in, func(i, j int) bool { return in[i].start < in[j].start })
	out := in[:1]
	for _, s := range in[1:] {
		last := &out[len(out)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
