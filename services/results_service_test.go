package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freddywood17/team-racing-app/live"
	"github.com/freddywood17/team-racing-app/models"
)

func newResultsFixture() (*fakeResultRepo, ResultsService) {
	matches := &fakeMatchRepo{matches: map[string]*models.Match{
		key(testCompetition, "1"): {ID: "1", CompetitionID: testCompetition, SideA: "A", SideB: "B", Position: 1},
	}}
	results := &fakeResultRepo{results: make(map[string]models.ResultSet)}
	subs := &fakeSubmissionRepo{subs: make(map[string]*models.Submission)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewResultsService(matches, results, NewLeaderboardService(subs, results), live.NewHub(logger), logger)
	return results, svc
}

func TestRecordResult(t *testing.T) {
	_, svc := newResultsFixture()

	snapshot, err := svc.Record(context.Background(), testCompetition, "1", "A")
	require.NoError(t, err)
	require.Equal(t, models.ResultSet{"1": "A"}, snapshot)
}

func TestRecordResultIsCreateOnly(t *testing.T) {
	_, svc := newResultsFixture()
	ctx := context.Background()

	_, err := svc.Record(ctx, testCompetition, "1", "A")
	require.NoError(t, err)

	// No correction path: a second declaration for the same match is rejected.
	_, err = svc.Record(ctx, testCompetition, "1", "B")
	require.ErrorIs(t, err, ErrResultAlreadyRecorded)

	snapshot, err := svc.Snapshot(ctx, testCompetition)
	require.NoError(t, err)
	require.Equal(t, "A", snapshot["1"])
}

func TestRecordResultValidatesMatchAndWinner(t *testing.T) {
	_, svc := newResultsFixture()
	ctx := context.Background()

	_, err := svc.Record(ctx, testCompetition, "99", "A")
	require.ErrorIs(t, err, ErrMatchNotFound)

	_, err = svc.Record(ctx, testCompetition, "1", "Nobody")
	require.ErrorIs(t, err, ErrInvalidWinner)
}
