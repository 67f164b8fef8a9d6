package services

import (
	"math"

	"github.com/freddywood17/team-racing-app/models"
)

// Score computes the accuracy percentage of a submission against a results
// snapshot. Picks whose match has no result yet are excluded entirely: a
// pending match is not wrong, it does not count at all. With no judged picks
// the score is a defined 0, not an error.
//
// Pure and deterministic: identical inputs always yield identical output, so
// the same function drives the live leaderboard and the regression tests. The
// result is invariant under pick reordering and under result entries for
// matches the submission never picked.
func Score(submission *models.Submission, results models.ResultSet) int {
	counted := 0
	correct := 0
	for _, pick := range submission.Picks {
		winner, ok := results[pick.MatchID]
		if !ok {
			continue
		}
		counted++
		// Case-sensitive name equality, matching how picks record winners.
		if pick.Winner == winner {
			correct++
		}
	}
	if counted == 0 {
		return 0
	}
	// Round half away from zero; the ratio is never negative.
	return int(math.Round(float64(correct) / float64(counted) * 100))
}
