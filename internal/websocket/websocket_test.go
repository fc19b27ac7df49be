package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c1 := &Client{PlayerID: "p1", Send: make(chan OutgoingMessage, 1), Hub: hub}
	c2 := &Client{PlayerID: "p2", Send: make(chan OutgoingMessage, 1), Hub: hub}

	hub.register <- c1
	hub.register <- c2

	msg := OutgoingMessage{
		Event: "game_started",
		Data:  map[string]interface{}{"roomId": "room123"},
	}

	hub.BroadcastToPlayers([]string{"p1", "p2"}, msg)

	time.Sleep(20 * time.Millisecond)

	m1 := <-c1.Send
	m2 := <-c2.Send

	assert.Equal(t, "game_started", m1.Event)
	assert.Equal(t, "game_started", m2.Event)
}

func TestHubSendToPlayer(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c1 := &Client{PlayerID: "p1", Send: make(chan OutgoingMessage, 1), Hub: hub}
	c2 := &Client{PlayerID: "p2", Send: make(chan OutgoingMessage, 1), Hub: hub}

	hub.register <- c1
	hub.register <- c2

	msg := OutgoingMessage{
		Event: "game_state",
		Data:  "hand for p1",
	}

	hub.SendToPlayer("p1", msg)

	time.Sleep(20 * time.Millisecond)

	received := <-c1.Send
	assert.Equal(t, "game_state", received.Event)
	assert.Equal(t, "hand for p1", received.Data)

	select {
	case <-c2.Send:
		assert.Fail(t, "p2 should NOT receive anything")
	default:
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c := &Client{
		PlayerID: "p1",
		Send:     make(chan OutgoingMessage, 1),
		Hub:      hub,
	}

	hub.register <- c
	time.Sleep(10 * time.Millisecond)

	if _, ok := hub.ClientByPlayerID("p1"); !ok {
		t.Fatalf("client should be registered")
	}

	hub.unregister <- c
	time.Sleep(10 * time.Millisecond)

	if _, ok := hub.ClientByPlayerID("p1"); ok {
		t.Fatalf("client should be removed after unregister")
	}
}

func TestHubConnectDisconnectHooks(t *testing.T) {
	hub := NewHub()

	connected := make(chan string, 1)
	disconnected := make(chan string, 1)
	hub.OnConnect = func(id string) { connected <- id }
	hub.OnDisconnect = func(id string) { disconnected <- id }

	go hub.Run()
	defer hub.Close()

	c := &Client{PlayerID: "p1", Send: make(chan OutgoingMessage, 1), Hub: hub}
	hub.register <- c
	assert.Equal(t, "p1", <-connected)

	hub.unregister <- c
	assert.Equal(t, "p1", <-disconnected)
}

func TestHubReconnectReplacesClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	old := &Client{PlayerID: "p1", Send: make(chan OutgoingMessage, 1), Hub: hub}
	hub.register <- old
	time.Sleep(10 * time.Millisecond)

	fresh := &Client{PlayerID: "p1", Send: make(chan OutgoingMessage, 1), Hub: hub}
	hub.register <- fresh
	time.Sleep(10 * time.Millisecond)

	// Old client's channel is closed, new one owns the id.
	_, ok := <-old.Send
	assert.False(t, ok)

	// Unregistering the stale client must not evict the fresh one.
	hub.unregister <- old
	time.Sleep(10 * time.Millisecond)
	got, ok := hub.ClientByPlayerID("p1")
	assert.True(t, ok)
	assert.Equal(t, fresh, got)
}

func TestHubIncomingForwarded(t *testing.T) {
	hub := NewHub()

	got := make(chan IncomingMessage, 1)
	hub.OnIncoming = func(m IncomingMessage) { got <- m }

	go hub.Run()
	defer hub.Close()

	hub.incoming <- IncomingMessage{From: "p1", Event: "make_bet", Data: map[string]interface{}{"amount": 2}}

	m := <-got
	assert.Equal(t, "p1", m.From)
	assert.Equal(t, "make_bet", m.Event)
}

func BenchmarkHubBroadcast(b *testing.B) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c1 := &Client{PlayerID: "p1", Send: make(chan OutgoingMessage, 1024), Hub: hub}
	c2 := &Client{PlayerID: "p2", Send: make(chan OutgoingMessage, 1024), Hub: hub}

	go func() {
		for range c1.Send {
		}
	}()
	go func() {
		for range c2.Send {
		}
	}()

	hub.register <- c1
	hub.register <- c2

	b.ResetTimer()
	msg := OutgoingMessage{Event: "bench", Data: nil}

	for i := 0; i < b.N; i++ {
		hub.BroadcastToPlayers([]string{"p1", "p2"}, msg)
	}

	time.Sleep(50 * time.Millisecond)
}
