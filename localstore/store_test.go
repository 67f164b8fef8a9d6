package localstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freddywood17/team-racing-app/models"
)

func timeFixture() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "devices.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func TestDraftRoundTrip(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.GetDraft("dev-1", "regatta2025")
	require.NoError(t, err)
	require.False(t, found)

	draft := &models.Draft{
		SelectedTeamID: "t1",
		Picks: []models.Pick{
			{MatchID: "1", SideA: "A", SideB: "B", Winner: "A"},
		},
	}
	require.NoError(t, store.PutDraft("dev-1", "regatta2025", draft))

	got, found, err := store.GetDraft("dev-1", "regatta2025")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, draft, got)

	require.NoError(t, store.DeleteDraft("dev-1", "regatta2025"))
	_, found, err = store.GetDraft("dev-1", "regatta2025")
	require.NoError(t, err)
	require.False(t, found)
}

func TestLockedCopyRoundTrip(t *testing.T) {
	store := newTestStore(t)

	sub := models.NewSubmission("t1", "Crew One", "regatta2025", []models.Pick{
		{MatchID: "1", SideA: "A", SideB: "B", Winner: "A"},
		{MatchID: "2", SideA: "C", SideB: "D", Winner: "D"},
	}, timeFixture())

	require.NoError(t, store.PutLocked("dev-1", "regatta2025", sub))
	got, found, err := store.GetLocked("dev-1", "regatta2025")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, sub, got)

	require.NoError(t, store.DeleteLocked("dev-1", "regatta2025"))
	_, found, err = store.GetLocked("dev-1", "regatta2025")
	require.NoError(t, err)
	require.False(t, found)
}

func TestEntriesAreScopedByDeviceAndCompetition(t *testing.T) {
	store := newTestStore(t)

	draft := &models.Draft{SelectedTeamID: "t1"}
	require.NoError(t, store.PutDraft("dev-1", "regatta2025", draft))

	// Another device sees nothing; devices never reconcile against each other.
	_, found, err := store.GetDraft("dev-2", "regatta2025")
	require.NoError(t, err)
	require.False(t, found)

	// Same device, different competition is separate state too.
	_, found, err = store.GetDraft("dev-1", "regatta2026")
	require.NoError(t, err)
	require.False(t, found)
}
