package playtest

import (
	"fmt"
	"log"

	service "github.com/okian/ghostrace/internal/app"
)

// verifyLeaderboard checks that the final board is complete and ordered:
// ranks are 1..n, finishers lead in finish order, and the rest are sorted
// by levels.
func verifyLeaderboard(board service.LeaderboardSnapshot) error {
	if !board.IsFinalized {
		return fmt.Errorf("run %s is not finalized", board.RunID)
	}
	if len(board.Rows) == 0 {
		return fmt.Errorf("empty leaderboard")
	}
	if board.PlayerRank < 1 || board.PlayerRank > len(board.Rows) {
		return fmt.Errorf("player rank %d outside 1..%d", board.PlayerRank, len(board.Rows))
	}
	for i, row := range board.Rows {
		if row.Rank != i+1 {
			return fmt.Errorf("row %d has rank %d", i, row.Rank)
		}
		if i == 0 {
			continue
		}
		prev := board.Rows[i-1]
		switch {
		case row.HasFinished && !prev.HasFinished:
			return fmt.Errorf("finisher %s ranked after non-finisher %s", row.ParticipantID, prev.ParticipantID)
		case row.HasFinished && prev.HasFinished && row.FinishedUTC < prev.FinishedUTC:
			return fmt.Errorf("finisher %s ranked after a later finisher", row.ParticipantID)
		case !row.HasFinished && !prev.HasFinished && row.LevelsCompleted > prev.LevelsCompleted:
			return fmt.Errorf("%s has more levels than %s above it", row.ParticipantID, prev.ParticipantID)
		}
	}
	return nil
}

// verifyClaim checks the claim against the final board.
func verifyClaim(board service.LeaderboardSnapshot, res service.ClaimResult) error {
	if res.RunID != board.RunID {
		return fmt.Errorf("claimed run %s, board shows %s", res.RunID, board.RunID)
	}
	if res.Rank != board.PlayerRank {
		return fmt.Errorf("claimed rank %d, board shows %d", res.Rank, board.PlayerRank)
	}
	if res.WinnerID != board.Rows[0].ParticipantID {
		return fmt.Errorf("claimed winner %s, board shows %s", res.WinnerID, board.Rows[0].ParticipantID)
	}
	return nil
}

// displayBoard prints the final standings.
func displayBoard(board service.LeaderboardSnapshot, verbose bool) {
	log.Printf("Final standings for run %s (goal %d):", board.RunID, board.GoalLevels)
	for _, row := range board.Rows {
		marker := ""
		if !row.IsBot {
			marker = " <- you"
		}
		if verbose || !row.IsBot || row.Rank <= 3 {
			log.Printf("   %d. %-16s %3d levels%s", row.Rank, row.DisplayName, row.LevelsCompleted, marker)
		}
	}
}
