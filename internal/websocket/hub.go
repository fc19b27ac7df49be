package websocket

import (
	"log"
	"sync"
)

type HubInterface interface {
	BroadcastToPlayers(playerIDs []string, msg OutgoingMessage)
	ClientByPlayerID(playerID string) (*Client, bool)
	SendToPlayer(playerID string, msg OutgoingMessage)
	Close()
}

type Hub struct {
	clients    map[string]*Client // playerID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastReq
	sendOne    chan sendReq
	incoming   chan IncomingMessage

	// Wired by the game layer before Run.
	OnIncoming   func(IncomingMessage)
	OnConnect    func(playerID string)
	OnDisconnect func(playerID string)

	quit chan struct{}
	mu   sync.RWMutex
}

type broadcastReq struct {
	PlayerIDs []string
	Message   OutgoingMessage
}

type sendReq struct {
	PlayerID string
	Message  OutgoingMessage
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastReq),
		sendOne:    make(chan sendReq),
		incoming:   make(chan IncomingMessage),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {

	log.Println("Hub started")

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			// A reconnect replaces the stale client for the same player.
			if old, ok := h.clients[c.PlayerID]; ok && old != c {
				close(old.Send)
			}
			h.clients[c.PlayerID] = c
			log.Printf("Hub.register -> %s (connected: %d)", c.PlayerID, len(h.clients))
			h.mu.Unlock()

			if h.OnConnect != nil {
				h.OnConnect(c.PlayerID)
			}

		case c := <-h.unregister:
			gone := false
			h.mu.Lock()
			if cur, ok := h.clients[c.PlayerID]; ok && cur == c {
				delete(h.clients, c.PlayerID)
				log.Printf("Hub.unregister -> %s (connected: %d)", c.PlayerID, len(h.clients))
				close(c.Send)
				gone = true
			}
			h.mu.Unlock()

			if gone && h.OnDisconnect != nil {
				h.OnDisconnect(c.PlayerID)
			}

		case req := <-h.broadcast:
			h.mu.RLock()
			for _, id := range req.PlayerIDs {
				if client, ok := h.clients[id]; ok {
					select {
					case client.Send <- req.Message:
					default:
					}
				}
			}
			h.mu.RUnlock()

		case req := <-h.sendOne:
			h.mu.RLock()
			if client, ok := h.clients[req.PlayerID]; ok {
				select {
				case client.Send <- req.Message:
				default:
					// Slow consumer: drop rather than stall the hub.
				}
			}
			h.mu.RUnlock()

		case req := <-h.incoming:
			// Player messages are handed to the game layer as-is.
			if h.OnIncoming != nil {
				h.OnIncoming(req)
			}

		case <-h.quit:
			h.mu.Lock()
			for _, c := range h.clients {
				close(c.Send)
			}
			h.clients = make(map[string]*Client)
			h.mu.Unlock()
			return
		}
	}
}

// Broadcast to multiple players.
func (h *Hub) BroadcastToPlayers(playerIDs []string, msg OutgoingMessage) {
	h.broadcast <- broadcastReq{
		PlayerIDs: playerIDs,
		Message:   msg,
	}
}

// Send to a single player (safe concurrent).
func (h *Hub) SendToPlayer(playerID string, msg OutgoingMessage) {
	h.sendOne <- sendReq{
		PlayerID: playerID,
		Message:  msg,
	}
}

// Lookup a player client by id.
func (h *Hub) ClientByPlayerID(playerID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[playerID]
	return c, ok
}

func (h *Hub) Close() {
	close(h.quit)
}
