package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vi-li/pixel-art/room"
	"github.com/vi-li/pixel-art/util"
)

// stubScheduler counts scheduled evictions so tests can assert which events
// refresh a room's timer. Firing is exercised in the room package; here the
// interesting part is whether a schedule happened at all.
type stubScheduler struct {
	mu        sync.Mutex
	scheduled int
}

type stubHandle struct{}

func (stubHandle) Stop() bool { return true }

func (s *stubScheduler) Schedule(d time.Duration, fn func()) room.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduled++
	return stubHandle{}
}

func (s *stubScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduled
}

func newTestManager() (*Manager, *stubScheduler) {
	sched := &stubScheduler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	config := &util.Config{
		Port:         "8080",
		JWTSecret:    "test-secret",
		ClientOrigin: "http://localhost:8080",
		PagesDir:     ".",
		BoardWidth:   15,
		RoomTimeout:  30 * time.Minute,
		DefaultColor: "#23272a",
	}

	registry := room.NewRegistry(config.RoomTimeout, sched, logger)

	return NewManager(config, registry, logger), sched
}

// newTestClient builds a session without a websocket connection or pumps;
// tests read delivered events straight off the egress buffer.
func newTestClient(m *Manager, username string) *Client {
	c := NewClient(nil, m, username)
	m.Lock()
	m.clients[c.ID] = c
	m.Unlock()
	return c
}

func clientEvent(t *testing.T, evtType string, payload any) Event {
	t.Helper()

	evt, err := NewEvent(evtType, payload)
	require.NoError(t, err)
	return evt
}

func nextEvent(t *testing.T, c *Client) Event {
	t.Helper()

	select {
	case evt := <-c.egress:
		return evt
	default:
		t.Fatal("expected an event on egress, got none")
		return Event{}
	}
}

func requireEvent(t *testing.T, c *Client, evtType string) Event {
	t.Helper()

	evt := nextEvent(t, c)
	require.Equal(t, evtType, evt.Type)
	return evt
}

func requireNoEvent(t *testing.T, c *Client) {
	t.Helper()

	select {
	case evt := <-c.egress:
		t.Fatalf("expected no event, got %q", evt.Type)
	default:
	}
}

func decodePayload[T any](t *testing.T, evt Event) T {
	t.Helper()

	var payload T
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	return payload
}
