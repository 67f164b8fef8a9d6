package models

// Team is a registry entry. HasSubmitted transitions false->true exactly once
// per competition cycle, and back to false only through the administrative reset.
type Team struct {
	ID            string `json:"id" db:"id"`
	CompetitionID string `json:"competition_id" db:"competition_id"`
	Name          string `json:"name" db:"name"`
	HasSubmitted  bool   `json:"has_submitted" db:"has_submitted"`
}
