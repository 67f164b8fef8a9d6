package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freddywood17/team-racing-app/live"
	"github.com/freddywood17/team-racing-app/models"
	"github.com/freddywood17/team-racing-app/repositories"
)

const (
	testCompetition = "regatta2025"
	testDevice      = "device-1"
)

type submissionFixture struct {
	svc      SubmissionService
	comps    *fakeCompetitionRepo
	teams    *fakeTeamRepo
	subs     *fakeSubmissionRepo
	results  *fakeResultRepo
	store    *fakeStore
	deadline time.Time
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()

	deadline := testNow().Add(24 * time.Hour)
	comps := &fakeCompetitionRepo{comps: map[string]*models.Competition{
		testCompetition: {ID: testCompetition, Name: "Oxford Regatta", Deadline: deadline},
	}}
	teams := &fakeTeamRepo{teams: map[string]*models.Team{
		key(testCompetition, "t1"): {ID: "t1", CompetitionID: testCompetition, Name: "Crew One"},
		key(testCompetition, "t2"): {ID: "t2", CompetitionID: testCompetition, Name: "Crew Two"},
	}}
	subs := &fakeSubmissionRepo{subs: make(map[string]*models.Submission), teams: teams}
	results := &fakeResultRepo{results: make(map[string]models.ResultSet)}
	store := newFakeStore()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	leaderboard := NewLeaderboardService(subs, results)
	svc := NewSubmissionService(comps, teams, subs, store, leaderboard, live.NewHub(logger), nil, logger)

	return &submissionFixture{
		svc:      svc,
		comps:    comps,
		teams:    teams,
		subs:     subs,
		results:  results,
		store:    store,
		deadline: deadline,
	}
}

func (f *submissionFixture) seedDraft(teamID string, picks ...models.Pick) {
	f.store.drafts[key(testCompetition, testDevice)] = &models.Draft{
		SelectedTeamID: teamID,
		Picks:          picks,
	}
}

func somePicks() []models.Pick {
	return []models.Pick{
		{MatchID: "1", SideA: "A", SideB: "B", Winner: "A"},
		{MatchID: "2", SideA: "C", SideB: "D", Winner: "C"},
	}
}

func TestSubmitLocksTeamOnce(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedDraft("t1", somePicks()...)

	sub, err := f.svc.Submit(context.Background(), testCompetition, testDevice, testNow())
	require.NoError(t, err)

	// Picks are re-keyed by ordinal, preserving draft order.
	require.Len(t, sub.Picks, 2)
	require.Equal(t, "A", sub.Picks["0"].Winner)
	require.Equal(t, "C", sub.Picks["1"].Winner)
	require.Equal(t, "Crew One", sub.TeamName)
	require.Equal(t, testNow().Format(time.RFC3339), sub.SubmittedAt)

	// Flag is true and exactly one record exists for the team.
	team := f.teams.teams[key(testCompetition, "t1")]
	require.True(t, team.HasSubmitted)
	count, err := f.subs.CountByCompetition(context.Background(), testCompetition)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// Locked copy written, draft picks cleared.
	locked, found, err := f.store.GetLocked(testDevice, testCompetition)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, sub, locked)
	draft, _, _ := f.store.GetDraft(testDevice, testCompetition)
	require.Empty(t, draft.Picks)
}

func TestSubmitRejectionsLeaveNoWrites(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(f *submissionFixture)
		now     time.Time
		wantErr error
	}{
		{
			name:    "no team selected",
			setup:   func(f *submissionFixture) {},
			now:     testNow(),
			wantErr: ErrNoTeamSelected,
		},
		{
			name:    "empty draft",
			setup:   func(f *submissionFixture) { f.seedDraft("t1") },
			now:     testNow(),
			wantErr: ErrNothingToSubmit,
		},
		{
			name:    "deadline passed",
			setup:   func(f *submissionFixture) { f.seedDraft("t1", somePicks()...) },
			now:     testNow().Add(48 * time.Hour),
			wantErr: ErrDeadlinePassed,
		},
		{
			name: "team already submitted",
			setup: func(f *submissionFixture) {
				f.teams.teams[key(testCompetition, "t1")].HasSubmitted = true
				f.seedDraft("t1", somePicks()...)
			},
			now:     testNow(),
			wantErr: ErrAlreadySubmitted,
		},
		{
			name: "unknown team",
			setup: func(f *submissionFixture) {
				f.seedDraft("ghost", somePicks()...)
			},
			now:     testNow(),
			wantErr: ErrTeamNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSubmissionFixture(t)
			tc.setup(f)
			flagBefore := f.teams.teams[key(testCompetition, "t1")].HasSubmitted

			_, err := f.svc.Submit(context.Background(), testCompetition, testDevice, tc.now)
			require.ErrorIs(t, err, tc.wantErr)

			// Registry and submission set are unchanged by the rejection.
			require.Equal(t, flagBefore, f.teams.teams[key(testCompetition, "t1")].HasSubmitted)
			require.Empty(t, f.subs.subs)
			_, found, _ := f.store.GetLocked(testDevice, testCompetition)
			require.False(t, found)
		})
	}
}

func TestSubmitDanglingSubmissionWindow(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedDraft("t1", somePicks()...)
	f.teams.markErr = errStorageDown

	_, err := f.svc.Submit(context.Background(), testCompetition, testDevice, testNow())
	require.ErrorIs(t, err, ErrPersistenceFailure)

	// Record-then-flag ordering: the record landed, the flag did not. The team
	// is not locked out; its retry completes the lock.
	require.Len(t, f.subs.subs, 1)
	require.False(t, f.teams.teams[key(testCompetition, "t1")].HasSubmitted)

	f.teams.markErr = nil
	f.seedDraft("t1", somePicks()...)
	_, err = f.svc.Submit(context.Background(), testCompetition, testDevice, testNow())
	require.NoError(t, err)
	require.Len(t, f.subs.subs, 1)
	require.True(t, f.teams.teams[key(testCompetition, "t1")].HasSubmitted)
}

func TestSubmitRaceLoserGetsAlreadySubmitted(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedDraft("t1", somePicks()...)

	// Another device created the record and set the flag after this device's
	// registry read: create hits the primary key and the flag-guarded replace
	// refuses the overwrite.
	f.subs.subs[key(testCompetition, "t1")] = models.NewSubmission(
		"t1", "Crew One", testCompetition, somePicks(), testNow())
	f.subs.replaceErr = repositories.ErrSubmissionLocked

	_, err := f.svc.Submit(context.Background(), testCompetition, testDevice, testNow())
	require.ErrorIs(t, err, ErrAlreadySubmitted)
	require.Len(t, f.subs.subs, 1)
	require.Equal(t, 0, f.teams.markHits)
}

func TestResetAllClearsFlagsKeepsRecords(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedDraft("t1", somePicks()...)

	_, err := f.svc.Submit(context.Background(), testCompetition, testDevice, testNow())
	require.NoError(t, err)
	countBefore, _ := f.subs.CountByCompetition(context.Background(), testCompetition)

	affected, err := f.svc.ResetAll(context.Background(), testCompetition, testDevice)
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	for _, team := range f.teams.teams {
		require.False(t, team.HasSubmitted)
	}
	countAfter, _ := f.subs.CountByCompetition(context.Background(), testCompetition)
	require.Equal(t, countBefore, countAfter)

	// The invoking device's local state is gone.
	_, found, _ := f.store.GetLocked(testDevice, testCompetition)
	require.False(t, found)
	_, found, _ = f.store.GetDraft(testDevice, testCompetition)
	require.False(t, found)
}

func TestResetAllReopensSubmissionPath(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedDraft("t1", somePicks()...)

	_, err := f.svc.Submit(context.Background(), testCompetition, testDevice, testNow())
	require.NoError(t, err)

	_, err = f.svc.ResetAll(context.Background(), testCompetition, testDevice)
	require.NoError(t, err)

	// The flag is clear again, so the same team can go through the whole
	// submit path once more. The fresh record overwrites the pre-reset one
	// rather than piling up next to it.
	f.seedDraft("t1",
		models.Pick{MatchID: "1", SideA: "A", SideB: "B", Winner: "B"},
	)
	resubmitted, err := f.svc.Submit(context.Background(), testCompetition, testDevice, testNow())
	require.NoError(t, err)
	require.Equal(t, "B", resubmitted.Picks["0"].Winner)
	require.True(t, f.teams.teams[key(testCompetition, "t1")].HasSubmitted)

	count, err := f.subs.CountByCompetition(context.Background(), testCompetition)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	stored, err := f.subs.GetByTeam(context.Background(), testCompetition, "t1")
	require.NoError(t, err)
	require.Equal(t, resubmitted, stored)
}

func TestMySubmissionPrefersLocalCopy(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedDraft("t1", somePicks()...)

	sub, err := f.svc.Submit(context.Background(), testCompetition, testDevice, testNow())
	require.NoError(t, err)

	got, err := f.svc.MySubmission(context.Background(), testCompetition, testDevice)
	require.NoError(t, err)
	require.Equal(t, sub, got)

	// Without the local copy the authoritative record still serves the view.
	require.NoError(t, f.store.DeleteLocked(testDevice, testCompetition))
	got, err = f.svc.MySubmission(context.Background(), testCompetition, testDevice)
	require.NoError(t, err)
	require.Equal(t, sub.TeamID, got.TeamID)
}

func TestMySubmissionNotFound(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.svc.MySubmission(context.Background(), testCompetition, testDevice)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
