package manager

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GeorgianJoker/config"
	"GeorgianJoker/internal/matchmaker"
	"GeorgianJoker/internal/websocket"
)

type mockHub struct {
	mu           sync.Mutex
	sentToPlayer map[string][]websocket.OutgoingMessage
	broadcasts   []websocket.OutgoingMessage
}

func newMockHub() *mockHub {
	return &mockHub{sentToPlayer: make(map[string][]websocket.OutgoingMessage)}
}

func (h *mockHub) BroadcastToPlayers(ids []string, msg websocket.OutgoingMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcasts = append(h.broadcasts, msg)
}

func (h *mockHub) SendToPlayer(id string, msg websocket.OutgoingMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sentToPlayer[id] = append(h.sentToPlayer[id], msg)
}

func (h *mockHub) ClientByPlayerID(id string) (*websocket.Client, bool) { return nil, false }
func (h *mockHub) Close()                                              {}

func (h *mockHub) broadcastEvents() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.broadcasts))
	for _, b := range h.broadcasts {
		out = append(out, b.Event)
	}
	return out
}

func (h *mockHub) lastSent(playerID string) (websocket.OutgoingMessage, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := h.sentToPlayer[playerID]
	if len(msgs) == 0 {
		return websocket.OutgoingMessage{}, false
	}
	return msgs[len(msgs)-1], true
}

func testRoom(id string) *matchmaker.Room {
	return &matchmaker.Room{
		ID:        id,
		Players:   []string{"p1", "p2", "p3", "p4"},
		Names:     []string{"Ana", "Beka", "Cira", "Data"},
		Bots:      []bool{false, false, false, false},
		CreatedAt: time.Now(),
	}
}

func newTestManager() (*GameManager, *mockHub) {
	hub := newMockHub()
	return NewGameManager(hub, config.DefaultGame(), nil, nil), hub
}

func TestStartRoom(t *testing.T) {
	mgr, hub := newTestManager()

	require.NoError(t, mgr.StartRoom(testRoom("room-1")))
	time.Sleep(50 * time.Millisecond)

	mgr.mu.RLock()
	assert.Len(t, mgr.engines, 1)
	assert.Equal(t, "room-1", mgr.playerToRoom["p1"])
	mgr.mu.RUnlock()

	// The engine announced the game.
	events := hub.broadcastEvents()
	assert.Contains(t, events, "tuzovanie_started")
	assert.Contains(t, events, "game_started")
}

func TestStartRoomDuplicate(t *testing.T) {
	mgr, _ := newTestManager()
	room := testRoom("r1")

	require.NoError(t, mgr.StartRoom(room))
	err := mgr.StartRoom(room)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exists")
}

func TestStartRoomWrongSize(t *testing.T) {
	mgr, _ := newTestManager()
	room := &matchmaker.Room{
		ID:      "r1",
		Players: []string{"p1", "p2"},
		Names:   []string{"A", "B"},
		Bots:    []bool{false, false},
	}
	assert.Error(t, mgr.StartRoom(room))
}

func TestDispatchUnknownPlayer(t *testing.T) {
	mgr, hub := newTestManager()

	mgr.HandlePlayerMessage(websocket.IncomingMessage{
		From:  "ghost",
		Event: "make_bet",
		Data:  map[string]any{"amount": float64(1)},
	})

	msg, ok := hub.lastSent("ghost")
	require.True(t, ok)
	assert.Equal(t, "error", msg.Event)
	assert.Equal(t, "NOT_IN_GAME", msg.Data.(map[string]any)["code"])
}

func TestDispatchRoutesToEngine(t *testing.T) {
	mgr, hub := newTestManager()
	require.NoError(t, mgr.StartRoom(testRoom("room-1")))
	time.Sleep(50 * time.Millisecond)

	// The game is in tuzovanie, so a bet is out of phase, but it must reach
	// the room's engine and come back as a rejection for this player.
	mgr.HandlePlayerMessage(websocket.IncomingMessage{
		From:  "p1",
		Event: "make_bet",
		Data:  map[string]any{"amount": float64(0)},
	})

	deadline := time.After(time.Second)
	for {
		msg, ok := hub.lastSent("p1")
		if ok && msg.Event == "error" {
			assert.Equal(t, "WRONG_PHASE", msg.Data.(map[string]any)["code"])
			return
		}
		select {
		case <-deadline:
			t.Fatal("engine never answered the bet")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestFindGameQueuesThroughMatchmaker(t *testing.T) {
	mgr, hub := newTestManager()
	svc := matchmaker.NewService(matchmaker.NewMemoryRepo(), 60, 0, hub)
	svc.OnRoomReady = func(r *matchmaker.Room) { _ = mgr.StartRoom(r) }
	mgr.Matchmaker = svc

	mgr.HandlePlayerMessage(websocket.IncomingMessage{
		From: "p1", Event: "find_game", Data: map[string]any{"name": "Ana"},
	})
	msg, ok := hub.lastSent("p1")
	require.True(t, ok)
	assert.Equal(t, "waiting_for_players", msg.Event)

	mgr.HandlePlayerMessage(websocket.IncomingMessage{
		From: "p1", Event: "leave_queue",
	})
	msg, _ = hub.lastSent("p1")
	assert.Equal(t, "queue_left", msg.Event)

	// Four joins fill a table and the manager starts the room.
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		mgr.HandlePlayerMessage(websocket.IncomingMessage{
			From: id, Event: "find_game", Data: map[string]any{"name": id},
		})
	}
	time.Sleep(100 * time.Millisecond)

	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	assert.Len(t, mgr.engines, 1)
	assert.NotEmpty(t, mgr.playerToRoom["p1"])
}

func TestFindGameWithoutMatchmaker(t *testing.T) {
	mgr, hub := newTestManager()
	mgr.HandlePlayerMessage(websocket.IncomingMessage{From: "p1", Event: "find_game"})

	msg, ok := hub.lastSent("p1")
	require.True(t, ok)
	assert.Equal(t, "error", msg.Event)
	assert.Equal(t, "MATCHMAKING_UNAVAILABLE", msg.Data.(map[string]any)["code"])
}

func TestLeaveGameReleasesMapping(t *testing.T) {
	mgr, _ := newTestManager()
	require.NoError(t, mgr.StartRoom(testRoom("room-1")))
	time.Sleep(50 * time.Millisecond)

	mgr.HandlePlayerMessage(websocket.IncomingMessage{From: "p1", Event: "leave_game"})

	mgr.mu.RLock()
	_, mapped := mgr.playerToRoom["p1"]
	mgr.mu.RUnlock()
	assert.False(t, mapped, "leaving should free the player for a new game")
}
