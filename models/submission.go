package models

import (
	"sort"
	"strconv"
	"time"
)

// Pick is a single predicted winner for one match. Side names are captured at
// pick time so a submission stays renderable even if the registry changes later.
type Pick struct {
	MatchID string `json:"match_id"`
	SideA   string `json:"side_a"`
	SideB   string `json:"side_b"`
	Winner  string `json:"winner"`
}

// Draft holds a device's in-progress picks before submission. Keyed by match
// id, last write wins on re-pick. Order records the sequence picks were first
// made in, which is the order the submission will carry.
type Draft struct {
	SelectedTeamID string `json:"selected_team_id,omitempty"`
	Picks          []Pick `json:"picks"`
}

// Upsert replaces the pick for the same match in place, or appends.
func (d *Draft) Upsert(p Pick) {
	for i, existing := range d.Picks {
		if existing.MatchID == p.MatchID {
			d.Picks[i] = p
			return
		}
	}
	d.Picks = append(d.Picks, p)
}

// Submission is the immutable record of a team's final picks. Picks are keyed
// by ordinal index ("0".."n-1"), not by match id, preserving draft order.
type Submission struct {
	TeamID        string          `json:"team_id"`
	TeamName      string          `json:"team_name"`
	CompetitionID string          `json:"competition_id"`
	SubmittedAt   string          `json:"submitted_at"`
	Picks         map[string]Pick `json:"picks"`
}

// NewSubmission builds the immutable record from drafted picks, re-keying them
// by ordinal index and stamping the submission time in ISO-8601.
func NewSubmission(teamID, teamName, competitionID string, picks []Pick, now time.Time) *Submission {
	keyed := make(map[string]Pick, len(picks))
	for i, p := range picks {
		keyed[strconv.Itoa(i)] = p
	}
	return &Submission{
		TeamID:        teamID,
		TeamName:      teamName,
		CompetitionID: competitionID,
		SubmittedAt:   now.UTC().Format(time.RFC3339),
		Picks:         keyed,
	}
}

// OrderedPicks returns the picks sorted by their ordinal key.
func (s *Submission) OrderedPicks() []Pick {
	keys := make([]string, 0, len(s.Picks))
	for k := range s.Picks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})
	picks := make([]Pick, 0, len(keys))
	for _, k := range keys {
		picks = append(picks, s.Picks[k])
	}
	return picks
}
