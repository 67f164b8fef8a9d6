package services

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/freddywood17/team-racing-app/models"
	"github.com/freddywood17/team-racing-app/repositories"
)

type LeaderboardService interface {
	// Rank scores every submission in the competition against the current
	// results snapshot and returns a display-ready ordering. It is a
	// continuously-recomputed view: callers re-run it whenever the submission
	// set or the results set changes, always from complete snapshots.
	Rank(ctx context.Context, competitionID string) ([]models.LeaderboardRow, error)
}

type leaderboardService struct {
	submissionRepo repositories.SubmissionRepository
	resultRepo     repositories.ResultRepository
}

func NewLeaderboardService(
	submissionRepo repositories.SubmissionRepository,
	resultRepo repositories.ResultRepository,
) LeaderboardService {
	return &leaderboardService{
		submissionRepo: submissionRepo,
		resultRepo:     resultRepo,
	}
}

func (s *leaderboardService) Rank(ctx context.Context, competitionID string) ([]models.LeaderboardRow, error) {
	var (
		submissions []*models.Submission
		results     models.ResultSet
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		submissions, err = s.submissionRepo.ListByCompetition(gCtx, competitionID)
		return err
	})
	g.Go(func() error {
		var err error
		results, err = s.resultRepo.Snapshot(gCtx, competitionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load leaderboard inputs for competition %s: %w", competitionID, err)
	}

	rows := make([]models.LeaderboardRow, 0, len(submissions))
	for _, sub := range submissions {
		rows = append(rows, models.LeaderboardRow{
			TeamName: sub.TeamName,
			Score:    Score(sub, results),
		})
	}

	// Descending by score; equal scores order by team name ascending so the
	// ranking is reproducible rather than store-enumeration-ordered.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].TeamName < rows[j].TeamName
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}
