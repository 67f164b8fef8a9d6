package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSubmissionKeysPicksByOrdinal(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	picks := []Pick{
		{MatchID: "3", SideA: "E", SideB: "F", Winner: "E"},
		{MatchID: "1", SideA: "A", SideB: "B", Winner: "A"},
	}

	sub := NewSubmission("t1", "Crew One", "regatta2025", picks, now)

	// Keys are ordinals in draft order, not match ids.
	require.Equal(t, picks[0], sub.Picks["0"])
	require.Equal(t, picks[1], sub.Picks["1"])
	require.Equal(t, "2025-06-01T12:00:00Z", sub.SubmittedAt)
}

func TestOrderedPicks(t *testing.T) {
	sub := &Submission{Picks: map[string]Pick{
		"10": {MatchID: "k"},
		"2":  {MatchID: "c"},
		"0":  {MatchID: "a"},
	}}

	ordered := sub.OrderedPicks()
	require.Equal(t, []string{"a", "c", "k"}, []string{
		ordered[0].MatchID, ordered[1].MatchID, ordered[2].MatchID,
	})
}

func TestDraftUpsert(t *testing.T) {
	var d Draft
	d.Upsert(Pick{MatchID: "1", Winner: "A"})
	d.Upsert(Pick{MatchID: "2", Winner: "C"})
	d.Upsert(Pick{MatchID: "1", Winner: "B"})

	require.Len(t, d.Picks, 2)
	require.Equal(t, "B", d.Picks[0].Winner)
	require.Equal(t, "2", d.Picks[1].MatchID)
}
