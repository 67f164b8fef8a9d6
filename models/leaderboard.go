package models

// LeaderboardRow is one display-ready ranking entry.
type LeaderboardRow struct {
	Rank     int    `json:"rank"`
	TeamName string `json:"team_name"`
	Score    int    `json:"score"`
}
