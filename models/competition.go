package models

import "time"

// Competition is a scoped sweepstake instance: its own matches, deadline,
// teams, submissions and results.
type Competition struct {
	ID       string    `json:"id" db:"id"`
	Name     string    `json:"name" db:"name"`
	Deadline time.Time `json:"deadline" db:"deadline"`
}

// SubmissionsOpen reports whether new submissions may still be created.
func (c *Competition) SubmissionsOpen(now time.Time) bool {
	return now.Before(c.Deadline)
}
