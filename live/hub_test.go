package live

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run()
	return hub
}

func (h *Hub) roomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func TestBroadcastToRoomDeliversSnapshot(t *testing.T) {
	hub := newTestHub(t)
	room := RoomID("regatta2025")

	client := &Client{Hub: hub, Send: make(chan []byte, 4), Room: room}
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.roomSize(room) == 1 },
		time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom(room, Message{
		Type:          EventLeaderboardUpdated,
		CompetitionID: "regatta2025",
	})

	select {
	case raw := <-client.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		require.Equal(t, EventLeaderboardUpdated, msg.Type)
		require.Equal(t, "regatta2025", msg.CompetitionID)
	case <-time.After(time.Second):
		t.Fatal("no message delivered to subscribed client")
	}

	// Other rooms are untouched.
	hub.BroadcastToRoom(RoomID("regatta2026"), Message{Type: EventTeamsUpdated})
	select {
	case raw := <-client.Send:
		t.Fatalf("unexpected message for another room: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastToRoomSkipsSlowClient(t *testing.T) {
	hub := newTestHub(t)
	room := RoomID("regatta2025")

	fast := &Client{Hub: hub, Send: make(chan []byte, 4), Room: room}
	slow := &Client{Hub: hub, Send: make(chan []byte), Room: room}
	hub.Register <- fast
	hub.Register <- slow
	require.Eventually(t, func() bool { return hub.roomSize(room) == 2 },
		time.Second, 10*time.Millisecond)

	// Nobody drains the slow client; the broadcast must not block on it.
	hub.BroadcastToRoom(room, Message{Type: EventResultsUpdated})

	select {
	case <-fast.Send:
	case <-time.After(time.Second):
		t.Fatal("fast client did not receive the snapshot")
	}
}

func TestUnregisterRemovesClientFromRoom(t *testing.T) {
	hub := newTestHub(t)
	room := RoomID("regatta2025")

	client := &Client{Hub: hub, Send: make(chan []byte, 4), Room: room}
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.roomSize(room) == 1 },
		time.Second, 10*time.Millisecond)

	hub.Unregister <- client
	require.Eventually(t, func() bool { return hub.roomSize(room) == 0 },
		time.Second, 10*time.Millisecond)

	// A detached client never receives further updates.
	hub.BroadcastToRoom(room, Message{Type: EventTeamsUpdated})
	_, open := <-client.Send
	require.False(t, open)
}
