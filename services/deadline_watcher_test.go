package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freddywood17/team-racing-app/live"
	"github.com/freddywood17/team-racing-app/models"
)

func newDeadlineWatcher(comps map[string]*models.Competition) *DeadlineWatcher {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := &fakeCompetitionRepo{comps: comps}
	return NewDeadlineWatcher(repo, live.NewHub(logger), logger)
}

func TestDeadlineWatcherAnnouncesOnce(t *testing.T) {
	watcher := newDeadlineWatcher(map[string]*models.Competition{
		"closed": {ID: "closed", Deadline: testNow().Add(-time.Hour)},
		"open":   {ID: "open", Deadline: testNow().Add(time.Hour)},
	})

	passed, err := watcher.Check(context.Background(), testNow())
	require.NoError(t, err)
	require.Equal(t, []string{"closed"}, passed)

	// Repeat runs stay silent for already-announced competitions.
	passed, err = watcher.Check(context.Background(), testNow())
	require.NoError(t, err)
	require.Empty(t, passed)
}

func TestDeadlineWatcherPicksUpNewlyPassedDeadline(t *testing.T) {
	watcher := newDeadlineWatcher(map[string]*models.Competition{
		"soon": {ID: "soon", Deadline: testNow().Add(time.Minute)},
	})

	passed, err := watcher.Check(context.Background(), testNow())
	require.NoError(t, err)
	require.Empty(t, passed)

	passed, err = watcher.Check(context.Background(), testNow().Add(2*time.Minute))
	require.NoError(t, err)
	require.Equal(t, []string{"soon"}, passed)
}

func TestDeadlineWatcherOverlappingRunsAnnounceOnce(t *testing.T) {
	watcher := newDeadlineWatcher(map[string]*models.Competition{
		"closed": {ID: "closed", Deadline: testNow().Add(-time.Hour)},
	})

	var wg sync.WaitGroup
	announcements := make(chan string, 32)
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			passed, err := watcher.Check(context.Background(), testNow())
			if err != nil {
				errs <- err
				return
			}
			for _, id := range passed {
				announcements <- id
			}
		}()
	}
	wg.Wait()
	close(announcements)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var total int
	for id := range announcements {
		require.Equal(t, "closed", id)
		total++
	}
	require.Equal(t, 1, total)
}
