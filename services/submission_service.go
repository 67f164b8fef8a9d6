package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/freddywood17/team-racing-app/live"
	"github.com/freddywood17/team-racing-app/localstore"
	"github.com/freddywood17/team-racing-app/models"
	"github.com/freddywood17/team-racing-app/repositories"
	"github.com/freddywood17/team-racing-app/storage"
)

type SubmissionService interface {
	// Submit converts the device's draft into an immutable submission and
	// performs the one-time lock for the selected team. Validation rejections
	// leave the registry and the submission set untouched.
	Submit(ctx context.Context, competitionID, deviceID string, now time.Time) (*models.Submission, error)

	// MySubmission serves the my-predictions view: the device's locked local
	// copy when present, the authoritative record otherwise.
	MySubmission(ctx context.Context, competitionID, deviceID string) (*models.Submission, error)

	ListSubmissions(ctx context.Context, competitionID string) ([]*models.Submission, error)

	// ResetAll re-opens a competition: every team's flag returns to false while
	// existing submission records stay intact. A team that submits again
	// afterwards overwrites its old record; the pre-reset set is preserved by
	// the archive export.
	ResetAll(ctx context.Context, competitionID, deviceID string) (int64, error)
}

type submissionService struct {
	competitionRepo repositories.CompetitionRepository
	teamRepo        repositories.TeamRepository
	submissionRepo  repositories.SubmissionRepository
	store           localstore.Store
	leaderboard     LeaderboardService
	hub             *live.Hub
	uploader        storage.ArchiveUploader // nil disables archive export
	logger          *slog.Logger
}

func NewSubmissionService(
	competitionRepo repositories.CompetitionRepository,
	teamRepo repositories.TeamRepository,
	submissionRepo repositories.SubmissionRepository,
	store localstore.Store,
	leaderboard LeaderboardService,
	hub *live.Hub,
	uploader storage.ArchiveUploader,
	logger *slog.Logger,
) SubmissionService {
	return &submissionService{
		competitionRepo: competitionRepo,
		teamRepo:        teamRepo,
		submissionRepo:  submissionRepo,
		store:           store,
		leaderboard:     leaderboard,
		hub:             hub,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *submissionService) Submit(ctx context.Context, competitionID, deviceID string, now time.Time) (*models.Submission, error) {
	// Дедлайн проверяем до любых записей.
	competition, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to load competition %s: %w", competitionID, err)
	}
	if !competition.SubmissionsOpen(now) {
		return nil, ErrDeadlinePassed
	}

	draft, found, err := s.store.GetDraft(deviceID, competitionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	if !found || draft.SelectedTeamID == "" {
		return nil, ErrNoTeamSelected
	}
	if len(draft.Picks) == 0 {
		return nil, ErrNothingToSubmit
	}

	// Re-check against the authoritative registry, not the device's cached
	// view, to narrow the window between two devices submitting for one team.
	team, err := s.teamRepo.GetByID(ctx, competitionID, draft.SelectedTeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %s: %w", draft.SelectedTeamID, err)
	}
	if team.HasSubmitted {
		return nil, ErrAlreadySubmitted
	}

	submission := models.NewSubmission(team.ID, team.Name, competitionID, draft.Picks, now)

	// Write ordering is record-then-flag. If the flag flip fails the team is
	// still able to retry (flag false); the reverse order could lock a team
	// out with no record and is never used. The submissions primary key makes
	// the race loser's create fail instead of double-writing.
	if err := s.submissionRepo.Create(ctx, nil, submission); err != nil {
		if !errors.Is(err, repositories.ErrSubmissionExists) {
			return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
		}
		// An existing record while the flag is false is left over from before
		// a reset (or from an interrupted earlier submit). Overwrite it; the
		// flag join inside Replace rejects a concurrent locker.
		if err := s.submissionRepo.Replace(ctx, nil, submission); err != nil {
			if errors.Is(err, repositories.ErrSubmissionLocked) {
				return nil, ErrAlreadySubmitted
			}
			return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
		}
	}

	if err := s.teamRepo.MarkSubmitted(ctx, nil, competitionID, team.ID); err != nil {
		if errors.Is(err, repositories.ErrTeamAlreadyFlagged) {
			// Record landed and another writer flipped the flag; the durable
			// state is consistent, report success.
			s.logger.Warn("flag already set after submission create",
				slog.String("competition_id", competitionID),
				slog.String("team_id", team.ID))
		} else {
			// Dangling submission: record persisted, flag not set. Surfaced,
			// not hidden; the retry path reports the truth.
			s.logger.Error("dangling submission: record persisted but flag flip failed",
				slog.String("competition_id", competitionID),
				slog.String("team_id", team.ID),
				slog.Any("error", err))
			return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
		}
	}

	// Locked local copy drives the my-predictions view without further network
	// reads. It is a cache: failure to write it does not undo the lock.
	if err := s.store.PutLocked(deviceID, competitionID, submission); err != nil {
		s.logger.Warn("failed to persist locked local copy",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
	}
	draft.Picks = nil
	if err := s.store.PutDraft(deviceID, competitionID, draft); err != nil {
		s.logger.Warn("failed to clear draft after lock",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
	}

	s.broadcastSnapshots(ctx, competitionID)
	return submission, nil
}

func (s *submissionService) MySubmission(ctx context.Context, competitionID, deviceID string) (*models.Submission, error) {
	if sub, found, err := s.store.GetLocked(deviceID, competitionID); err == nil && found {
		return sub, nil
	} else if err != nil {
		s.logger.Warn("failed to read locked local copy, falling back to store",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
	}

	draft, found, err := s.store.GetDraft(deviceID, competitionID)
	if err != nil || !found || draft.SelectedTeamID == "" {
		return nil, ErrSubmissionNotFound
	}
	sub, err := s.submissionRepo.GetByTeam(ctx, competitionID, draft.SelectedTeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubmissionNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to load submission for team %s: %w", draft.SelectedTeamID, err)
	}
	return sub, nil
}

func (s *submissionService) ListSubmissions(ctx context.Context, competitionID string) ([]*models.Submission, error) {
	subs, err := s.submissionRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	if subs == nil {
		return []*models.Submission{}, nil
	}
	return subs, nil
}

func (s *submissionService) ResetAll(ctx context.Context, competitionID, deviceID string) (int64, error) {
	if _, err := s.competitionRepo.GetByID(ctx, competitionID); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return 0, ErrCompetitionNotFound
		}
		return 0, fmt.Errorf("failed to load competition %s: %w", competitionID, err)
	}

	// History first: export the submission set before flags clear, so the
	// transient "submission exists, flag false" state provably loses nothing.
	if s.uploader != nil {
		if err := s.archiveSubmissions(ctx, competitionID); err != nil {
			s.logger.Warn("submission archive export failed, continuing reset",
				slog.String("competition_id", competitionID),
				slog.Any("error", err))
		}
	}

	affected, err := s.teamRepo.ResetAll(ctx, competitionID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	s.logger.Info("competition reset",
		slog.String("competition_id", competitionID),
		slog.Int64("teams_cleared", affected))

	// Only the invoking device clears its local state. Other devices keep a
	// stale locked view until they next read local storage.
	if deviceID != "" {
		if err := s.store.DeleteLocked(deviceID, competitionID); err != nil {
			s.logger.Warn("failed to clear locked local copy", slog.Any("error", err))
		}
		if err := s.store.DeleteDraft(deviceID, competitionID); err != nil {
			s.logger.Warn("failed to clear draft", slog.Any("error", err))
		}
	}

	s.broadcastSnapshots(ctx, competitionID)
	return affected, nil
}

func (s *submissionService) archiveSubmissions(ctx context.Context, competitionID string) error {
	subs, err := s.submissionRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(subs)
	if err != nil {
		return fmt.Errorf("failed to marshal archive: %w", err)
	}

	key := fmt.Sprintf("archives/%s/%s.json", competitionID, time.Now().UTC().Format("20060102T150405Z"))
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	s.logger.Info("submission archive exported",
		slog.String("competition_id", competitionID),
		slog.String("key", result.Key),
		slog.String("location", result.Location))
	return nil
}

// broadcastSnapshots pushes fresh, complete teams and leaderboard snapshots to
// the competition's room. Consumers replace their state wholesale.
func (s *submissionService) broadcastSnapshots(ctx context.Context, competitionID string) {
	room := live.RoomID(competitionID)

	teams, err := s.teamRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		s.logger.Error("failed to load teams snapshot for broadcast", slog.Any("error", err))
	} else {
		s.hub.BroadcastToRoom(room, live.Message{
			Type:          live.EventTeamsUpdated,
			Payload:       teams,
			CompetitionID: competitionID,
		})
	}

	rows, err := s.leaderboard.Rank(ctx, competitionID)
	if err != nil {
		s.logger.Error("failed to recompute leaderboard for broadcast", slog.Any("error", err))
		return
	}
	s.hub.BroadcastToRoom(room, live.Message{
		Type:          live.EventLeaderboardUpdated,
		Payload:       rows,
		CompetitionID: competitionID,
	})
}
