package models

// Result is a declared match outcome. It appears only after the match
// concludes; absence means the match is still pending. Once recorded it is
// never corrected or removed.
type Result struct {
	CompetitionID string `json:"competition_id" db:"competition_id"`
	MatchID       string `json:"match_id" db:"match_id"`
	Winner        string `json:"winner" db:"winner"`
}

// ResultSet is the full results snapshot for one competition, match id -> winner.
type ResultSet map[string]string
