// Package model contains domain models passed between layers.
package model

// State is a phase of the race event flow.
type State int

// Flow states. Claimable and Cooldown are reserved and never entered.
const (
	StateDisabled State = iota
	StateIdle
	StateEligible
	StateSearching
	StateInRace
	StateEnded
	StateExtendOffer
	StateClaimable
	StateCooldown
)

var stateNames = map[State]string{
	StateDisabled:    "disabled",
	StateIdle:        "idle",
	StateEligible:    "eligible",
	StateSearching:   "searching",
	StateInRace:      "in_race",
	StateEnded:       "ended",
	StateExtendOffer: "extend_offer",
	StateClaimable:   "claimable",
	StateCooldown:    "cooldown",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// HasRun reports whether a run is expected to exist while in s.
func (s State) HasRun() bool {
	switch s {
	case StateInRace, StateEnded, StateExtendOffer:
		return true
	default:
		return false
	}
}
