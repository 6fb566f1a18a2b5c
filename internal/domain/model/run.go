package model

// Run is one race instance. Player is always the first participant in
// Participants order; opponents follow in roster order.
type Run struct {
	ID             string        `json:"id"`
	ConfigIndex    int           `json:"config_index"`
	StartUTC       int64         `json:"start_utc"`
	EndUTC         int64         `json:"end_utc"`
	GoalLevels     int           `json:"goal_levels"`
	PlayersPerRace int           `json:"players_per_race"`
	Player         Participant   `json:"player"`
	Opponents      []Participant `json:"opponents"`

	IsFinalized  bool   `json:"is_finalized"`
	FinalizedUTC int64  `json:"finalized_utc,omitempty"`
	FinalRank    int    `json:"final_rank,omitempty"`
	WinnerID     string `json:"winner_id,omitempty"`

	HasClaimed      bool   `json:"has_claimed"`
	ClaimedRank     int    `json:"claimed_rank,omitempty"`
	ClaimedWinnerID string `json:"claimed_winner_id,omitempty"`
	ClaimedUTC      int64  `json:"claimed_utc,omitempty"`

	HasExtended    bool  `json:"has_extended"`
	OriginalEndUTC int64 `json:"original_end_utc,omitempty"`
	ExtendedEndUTC int64 `json:"extended_end_utc,omitempty"`
}

// Valid reports whether the run carries usable race parameters.
func (r *Run) Valid() bool {
	return r != nil && r.PlayersPerRace > 0 && r.GoalLevels > 0 && r.EndUTC > 0
}

// Participants returns the player followed by the opponents.
func (r *Run) Participants() []Participant {
	out := make([]Participant, 0, len(r.Opponents)+1)
	out = append(out, r.Player)
	return append(out, r.Opponents...)
}

// Clone returns a deep copy safe to hand to observers.
func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}
	c := *r
	c.Opponents = append([]Participant(nil), r.Opponents...)
	return &c
}

// PlayerReachedGoal reports whether the player completed every level.
func (r *Run) PlayerReachedGoal() bool {
	return r.Player.LevelsCompleted >= r.GoalLevels
}
