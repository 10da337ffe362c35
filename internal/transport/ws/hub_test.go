package ws

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	client := NewClient(hub, nil, userID)
	hub.register <- client

	evt, err := NewEvent(EventTypeNeighborAccepted, NeighborAcceptedPayload{Urlname: "jiwoo", Username: "Jiwoo"})
	require.NoError(t, err)
	hub.BroadcastToUser(userID, evt)

	select {
	case data := <-client.send:
		require.Contains(t, string(data), EventTypeNeighborAccepted)
	case <-time.After(time.Second):
		t.Fatal("client did not receive the event")
	}

	// Events for unknown users are dropped without blocking.
	hub.BroadcastToUser(uuid.New(), evt)
}

func TestHubReconnectSurvivesStaleUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	older := NewClient(hub, nil, userID)
	newer := NewClient(hub, nil, userID)

	hub.register <- older
	hub.register <- newer

	// The replaced connection tears down after the reconnect; the live
	// one must keep receiving.
	hub.unregister <- older

	evt, err := NewEvent(EventTypeNeighborRequest, NeighborRequestPayload{FromUrlname: "minsu", FromUsername: "Minsu"})
	require.NoError(t, err)
	hub.BroadcastToUser(userID, evt)

	select {
	case data, ok := <-newer.send:
		require.True(t, ok, "live connection's send channel was closed")
		require.Contains(t, string(data), EventTypeNeighborRequest)
	case <-time.After(time.Second):
		t.Fatal("live connection did not receive the event")
	}
}
