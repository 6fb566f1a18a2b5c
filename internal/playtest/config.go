// Package playtest drives a running race service through one full race over
// HTTP and checks that the claimed rank matches the final leaderboard.
package playtest

import "time"

// Config holds configuration for a play session.
type Config struct {
	BaseURL    string        // Base URL of the service
	Level      int           // Player level reported to the service
	LevelWins  int           // Level wins to report before giving up
	Pace       time.Duration // Pause between level wins
	Timeout    time.Duration // HTTP request timeout
	Finalize   bool          // Force finalize through /debug when the race is still running
	Extend     bool          // Accept an extend offer instead of declining it
	OutputFile string        // Optional JSON report
	Verbose    bool          // Log every request
}

// Stats holds session statistics.
type Stats struct {
	Requests      int           `json:"requests"`
	Rejections    int           `json:"rejections"`
	LevelsWon     int           `json:"levels_won"`
	RunID         string        `json:"run_id"`
	Opponents     int           `json:"opponents"`
	FinalRank     int           `json:"final_rank"`
	ClaimedRank   int           `json:"claimed_rank"`
	RewardCoins   int           `json:"reward_coins"`
	Extended      bool          `json:"extended"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	Duration      time.Duration `json:"duration"`
	FinalStateHUD string        `json:"final_state"`
}
