package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/freddywood17/team-racing-app/localstore"
	"github.com/freddywood17/team-racing-app/models"
	"github.com/freddywood17/team-racing-app/repositories"
)

type TeamService interface {
	ListTeams(ctx context.Context, competitionID string) ([]*models.Team, error)
	// SelectTeam validates the choice against the live registry and records it
	// in the device's draft. Selecting an already-submitted team is rejected
	// and the device's state does not advance.
	SelectTeam(ctx context.Context, deviceID, competitionID, teamID string) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	store    localstore.Store
}

func NewTeamService(teamRepo repositories.TeamRepository, store localstore.Store) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		store:    store,
	}
}

func (s *teamService) ListTeams(ctx context.Context, competitionID string) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if teams == nil {
		return []*models.Team{}, nil
	}
	return teams, nil
}

func (s *teamService) SelectTeam(ctx context.Context, deviceID, competitionID, teamID string) (*models.Team, error) {
	// Проверка по живому реестру, не по кэшу.
	team, err := s.teamRepo.GetByID(ctx, competitionID, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %s: %w", teamID, err)
	}
	if team.HasSubmitted {
		return nil, ErrAlreadySubmitted
	}

	draft, found, err := s.store.GetDraft(deviceID, competitionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	if !found {
		draft = &models.Draft{}
	}
	draft.SelectedTeamID = team.ID
	if err := s.store.PutDraft(deviceID, competitionID, draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return team, nil
}
