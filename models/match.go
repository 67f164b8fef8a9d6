package models

// Match is one fixture of a competition's catalog. The catalog is provisioned
// before the competition opens and is read-only afterwards.
type Match struct {
	ID            string `json:"id" db:"id"`
	CompetitionID string `json:"competition_id" db:"competition_id"`
	SideA         string `json:"side_a" db:"side_a"`
	SideB         string `json:"side_b" db:"side_b"`
	Position      int    `json:"position" db:"position"`
}
