package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/freddywood17/team-racing-app/live"
	"github.com/freddywood17/team-racing-app/repositories"
)

// DeadlineWatcher announces each competition's passed deadline over the live
// feed exactly once. The scheduler runs every check in its own goroutine, so a
// slow run can overlap the next one; the announced set is mutex-guarded.
type DeadlineWatcher struct {
	competitionRepo repositories.CompetitionRepository
	hub             *live.Hub
	logger          *slog.Logger

	mu        sync.Mutex
	announced map[string]bool
}

func NewDeadlineWatcher(competitionRepo repositories.CompetitionRepository, hub *live.Hub, logger *slog.Logger) *DeadlineWatcher {
	return &DeadlineWatcher{
		competitionRepo: competitionRepo,
		hub:             hub,
		logger:          logger,
		announced:       make(map[string]bool),
	}
}

// Check broadcasts DEADLINE_PASSED for every competition whose deadline has
// passed and was not announced before, and returns the ids it announced.
func (w *DeadlineWatcher) Check(ctx context.Context, now time.Time) ([]string, error) {
	comps, err := w.competitionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}

	var passed []string
	for _, comp := range comps {
		if comp.SubmissionsOpen(now) {
			continue
		}
		if !w.claim(comp.ID) {
			continue
		}
		w.hub.BroadcastToRoom(live.RoomID(comp.ID), live.Message{
			Type:          live.EventDeadlinePassed,
			Payload:       comp,
			CompetitionID: comp.ID,
		})
		w.logger.Info("deadline passed announced", slog.String("competition_id", comp.ID))
		passed = append(passed, comp.ID)
	}
	return passed, nil
}

// claim marks the competition announced; only the first caller gets true.
func (w *DeadlineWatcher) claim(competitionID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.announced[competitionID] {
		return false
	}
	w.announced[competitionID] = true
	return true
}
