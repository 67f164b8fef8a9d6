package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/freddywood17/team-racing-app/localstore"
	"github.com/freddywood17/team-racing-app/models"
	"github.com/freddywood17/team-racing-app/repositories"
)

type DraftService interface {
	// GetDraft returns the device's in-progress draft. A device that never
	// saved anything gets an empty, editable draft.
	GetDraft(ctx context.Context, deviceID, competitionID string) (*models.Draft, error)
	// SavePick upserts one pick by match id, last write wins. The draft stays
	// fully editable until the device's submission locks.
	SavePick(ctx context.Context, deviceID, competitionID string, pick models.Pick) (*models.Draft, error)
	ClearDraft(ctx context.Context, deviceID, competitionID string) error
}

type draftService struct {
	matchRepo repositories.MatchRepository
	store     localstore.Store
}

func NewDraftService(matchRepo repositories.MatchRepository, store localstore.Store) DraftService {
	return &draftService{
		matchRepo: matchRepo,
		store:     store,
	}
}

func (s *draftService) GetDraft(ctx context.Context, deviceID, competitionID string) (*models.Draft, error) {
	draft, found, err := s.store.GetDraft(deviceID, competitionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	if !found {
		return &models.Draft{Picks: []models.Pick{}}, nil
	}
	return draft, nil
}

func (s *draftService) SavePick(ctx context.Context, deviceID, competitionID string, pick models.Pick) (*models.Draft, error) {
	// Once the device holds a locked copy the draft is no longer editable for
	// this cycle.
	if _, locked, err := s.store.GetLocked(deviceID, competitionID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	} else if locked {
		return nil, ErrAlreadySubmitted
	}

	match, err := s.matchRepo.GetByID(ctx, competitionID, pick.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %s: %w", pick.MatchID, err)
	}
	if pick.Winner != match.SideA && pick.Winner != match.SideB {
		return nil, ErrInvalidPick
	}
	// Side names are recorded from the catalog, not trusted from the client.
	pick.SideA = match.SideA
	pick.SideB = match.SideB

	draft, found, err := s.store.GetDraft(deviceID, competitionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	if !found {
		draft = &models.Draft{}
	}
	draft.Upsert(pick)
	if err := s.store.PutDraft(deviceID, competitionID, draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return draft, nil
}

func (s *draftService) ClearDraft(ctx context.Context, deviceID, competitionID string) error {
	if err := s.store.DeleteDraft(deviceID, competitionID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}
