package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/freddywood17/team-racing-app/models"
	"github.com/freddywood17/team-racing-app/repositories"
)

func testNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

// In-memory doubles for the repository and local-store interfaces.

func key(competitionID, id string) string {
	return competitionID + "/" + id
}

type fakeCompetitionRepo struct {
	comps map[string]*models.Competition
}

func (f *fakeCompetitionRepo) GetByID(_ context.Context, id string) (*models.Competition, error) {
	comp, ok := f.comps[id]
	if !ok {
		return nil, repositories.ErrCompetitionNotFound
	}
	return comp, nil
}

func (f *fakeCompetitionRepo) ListAll(_ context.Context) ([]*models.Competition, error) {
	var out []*models.Competition
	for _, comp := range f.comps {
		out = append(out, comp)
	}
	return out, nil
}

type fakeMatchRepo struct {
	matches map[string]*models.Match
}

func (f *fakeMatchRepo) ListByCompetition(_ context.Context, competitionID string) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range f.matches {
		if m.CompetitionID == competitionID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, competitionID, matchID string) (*models.Match, error) {
	m, ok := f.matches[key(competitionID, matchID)]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return m, nil
}

type fakeTeamRepo struct {
	teams    map[string]*models.Team
	markErr  error // forced failure for the flag flip
	markHits int
}

func (f *fakeTeamRepo) GetByID(_ context.Context, competitionID, teamID string) (*models.Team, error) {
	team, ok := f.teams[key(competitionID, teamID)]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (f *fakeTeamRepo) ListByCompetition(_ context.Context, competitionID string) ([]*models.Team, error) {
	var out []*models.Team
	for _, team := range f.teams {
		if team.CompetitionID == competitionID {
			copied := *team
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTeamRepo) MarkSubmitted(_ context.Context, _ repositories.SQLExecutor, competitionID, teamID string) error {
	f.markHits++
	if f.markErr != nil {
		return f.markErr
	}
	team, ok := f.teams[key(competitionID, teamID)]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	if team.HasSubmitted {
		return repositories.ErrTeamAlreadyFlagged
	}
	team.HasSubmitted = true
	return nil
}

func (f *fakeTeamRepo) ResetAll(_ context.Context, competitionID string) (int64, error) {
	var affected int64
	for _, team := range f.teams {
		if team.CompetitionID == competitionID {
			team.HasSubmitted = false
			affected++
		}
	}
	return affected, nil
}

type fakeSubmissionRepo struct {
	subs       map[string]*models.Submission
	teams      *fakeTeamRepo // backs the flag guard in Replace
	createErr  error
	replaceErr error
}

func (f *fakeSubmissionRepo) Create(_ context.Context, _ repositories.SQLExecutor, submission *models.Submission) error {
	if f.createErr != nil {
		return f.createErr
	}
	k := key(submission.CompetitionID, submission.TeamID)
	if _, exists := f.subs[k]; exists {
		return repositories.ErrSubmissionExists
	}
	f.subs[k] = submission
	return nil
}

func (f *fakeSubmissionRepo) Replace(_ context.Context, _ repositories.SQLExecutor, submission *models.Submission) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	k := key(submission.CompetitionID, submission.TeamID)
	if _, exists := f.subs[k]; !exists {
		return repositories.ErrSubmissionLocked
	}
	if f.teams != nil {
		if team, ok := f.teams.teams[k]; ok && team.HasSubmitted {
			return repositories.ErrSubmissionLocked
		}
	}
	f.subs[k] = submission
	return nil
}

func (f *fakeSubmissionRepo) GetByTeam(_ context.Context, competitionID, teamID string) (*models.Submission, error) {
	sub, ok := f.subs[key(competitionID, teamID)]
	if !ok {
		return nil, repositories.ErrSubmissionNotFound
	}
	return sub, nil
}

func (f *fakeSubmissionRepo) ListByCompetition(_ context.Context, competitionID string) ([]*models.Submission, error) {
	var out []*models.Submission
	for _, sub := range f.subs {
		if sub.CompetitionID == competitionID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (f *fakeSubmissionRepo) CountByCompetition(_ context.Context, competitionID string) (int, error) {
	count := 0
	for _, sub := range f.subs {
		if sub.CompetitionID == competitionID {
			count++
		}
	}
	return count, nil
}

type fakeResultRepo struct {
	results map[string]models.ResultSet // competitionID -> snapshot
}

func (f *fakeResultRepo) Create(_ context.Context, result *models.Result) error {
	snapshot, ok := f.results[result.CompetitionID]
	if !ok {
		snapshot = make(models.ResultSet)
		f.results[result.CompetitionID] = snapshot
	}
	if _, exists := snapshot[result.MatchID]; exists {
		return repositories.ErrResultExists
	}
	snapshot[result.MatchID] = result.Winner
	return nil
}

func (f *fakeResultRepo) Snapshot(_ context.Context, competitionID string) (models.ResultSet, error) {
	snapshot := make(models.ResultSet, len(f.results[competitionID]))
	for matchID, winner := range f.results[competitionID] {
		snapshot[matchID] = winner
	}
	return snapshot, nil
}

type fakeStore struct {
	drafts map[string]*models.Draft
	locked map[string]*models.Submission
	putErr error // forced failure for writes
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		drafts: make(map[string]*models.Draft),
		locked: make(map[string]*models.Submission),
	}
}

func (f *fakeStore) GetDraft(deviceID, competitionID string) (*models.Draft, bool, error) {
	draft, ok := f.drafts[key(competitionID, deviceID)]
	return draft, ok, nil
}

func (f *fakeStore) PutDraft(deviceID, competitionID string, draft *models.Draft) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.drafts[key(competitionID, deviceID)] = draft
	return nil
}

func (f *fakeStore) DeleteDraft(deviceID, competitionID string) error {
	delete(f.drafts, key(competitionID, deviceID))
	return nil
}

func (f *fakeStore) GetLocked(deviceID, competitionID string) (*models.Submission, bool, error) {
	sub, ok := f.locked[key(competitionID, deviceID)]
	return sub, ok, nil
}

func (f *fakeStore) PutLocked(deviceID, competitionID string, submission *models.Submission) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.locked[key(competitionID, deviceID)] = submission
	return nil
}

func (f *fakeStore) DeleteLocked(deviceID, competitionID string) error {
	delete(f.locked, key(competitionID, deviceID))
	return nil
}

func (f *fakeStore) Close() error { return nil }

var errStorageDown = errors.New("storage down")
