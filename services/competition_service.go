package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/freddywood17/team-racing-app/models"
	"github.com/freddywood17/team-racing-app/repositories"
)

type CompetitionService interface {
	GetCompetition(ctx context.Context, competitionID string) (*models.Competition, error)
	// ListMatches returns the fixed, ordered match catalog.
	ListMatches(ctx context.Context, competitionID string) ([]*models.Match, error)
}

type competitionService struct {
	competitionRepo repositories.CompetitionRepository
	matchRepo       repositories.MatchRepository
}

func NewCompetitionService(
	competitionRepo repositories.CompetitionRepository,
	matchRepo repositories.MatchRepository,
) CompetitionService {
	return &competitionService{
		competitionRepo: competitionRepo,
		matchRepo:       matchRepo,
	}
}

func (s *competitionService) GetCompetition(ctx context.Context, competitionID string) (*models.Competition, error) {
	competition, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to load competition %s: %w", competitionID, err)
	}
	return competition, nil
}

func (s *competitionService) ListMatches(ctx context.Context, competitionID string) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	if matches == nil {
		return []*models.Match{}, nil
	}
	return matches, nil
}
