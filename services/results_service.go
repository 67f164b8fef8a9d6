package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/freddywood17/team-racing-app/live"
	"github.com/freddywood17/team-racing-app/models"
	"github.com/freddywood17/team-racing-app/repositories"
)

type ResultsService interface {
	// Record declares a match winner. Results are append-only: once a match
	// has an outcome there is no correction path.
	Record(ctx context.Context, competitionID, matchID, winner string) (models.ResultSet, error)
	Snapshot(ctx context.Context, competitionID string) (models.ResultSet, error)
}

type resultsService struct {
	matchRepo   repositories.MatchRepository
	resultRepo  repositories.ResultRepository
	leaderboard LeaderboardService
	hub         *live.Hub
	logger      *slog.Logger
}

func NewResultsService(
	matchRepo repositories.MatchRepository,
	resultRepo repositories.ResultRepository,
	leaderboard LeaderboardService,
	hub *live.Hub,
	logger *slog.Logger,
) ResultsService {
	return &resultsService{
		matchRepo:   matchRepo,
		resultRepo:  resultRepo,
		leaderboard: leaderboard,
		hub:         hub,
		logger:      logger,
	}
}

func (s *resultsService) Record(ctx context.Context, competitionID, matchID, winner string) (models.ResultSet, error) {
	match, err := s.matchRepo.GetByID(ctx, competitionID, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	if winner != match.SideA && winner != match.SideB {
		return nil, ErrInvalidWinner
	}

	result := &models.Result{
		CompetitionID: competitionID,
		MatchID:       matchID,
		Winner:        winner,
	}
	if err := s.resultRepo.Create(ctx, result); err != nil {
		if errors.Is(err, repositories.ErrResultExists) {
			return nil, ErrResultAlreadyRecorded
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	s.logger.Info("result recorded",
		slog.String("competition_id", competitionID),
		slog.String("match_id", matchID),
		slog.String("winner", winner))

	snapshot, err := s.resultRepo.Snapshot(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results snapshot: %w", err)
	}

	// Push the complete results state plus the recomputed leaderboard so every
	// subscriber converges regardless of update arrival order.
	room := live.RoomID(competitionID)
	s.hub.BroadcastToRoom(room, live.Message{
		Type:          live.EventResultsUpdated,
		Payload:       snapshot,
		CompetitionID: competitionID,
	})
	if rows, err := s.leaderboard.Rank(ctx, competitionID); err != nil {
		s.logger.Error("failed to recompute leaderboard after result", slog.Any("error", err))
	} else {
		s.hub.BroadcastToRoom(room, live.Message{
			Type:          live.EventLeaderboardUpdated,
			Payload:       rows,
			CompetitionID: competitionID,
		})
	}

	return snapshot, nil
}

func (s *resultsService) Snapshot(ctx context.Context, competitionID string) (models.ResultSet, error) {
	snapshot, err := s.resultRepo.Snapshot(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results snapshot: %w", err)
	}
	return snapshot, nil
}
