package manager

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"GeorgianJoker/config"
	"GeorgianJoker/internal/game/audit"
	"GeorgianJoker/internal/game/engine"
	"GeorgianJoker/internal/game/table"
	"GeorgianJoker/internal/matchmaker"
	"GeorgianJoker/internal/utils"
	"GeorgianJoker/internal/websocket"
)

// GameManager owns every running room.
type GameManager struct {
	mu           sync.RWMutex
	engines      map[string]*engine.Engine // roomID -> engine
	playerToRoom map[string]string         // playerID -> roomID
	hub          websocket.HubInterface
	cfg          config.GameConfig
	rdb          *redis.Client
	db           *sql.DB

	// Matchmaker handles find_game/leave_queue over the socket; nil in
	// tests that only exercise room dispatch.
	Matchmaker *matchmaker.Service
}

func NewGameManager(hub websocket.HubInterface, cfg config.GameConfig, rdb *redis.Client, db *sql.DB) *GameManager {
	return &GameManager{
		engines:      make(map[string]*engine.Engine),
		playerToRoom: make(map[string]string),
		hub:          hub,
		cfg:          cfg,
		rdb:          rdb,
		db:           db,
	}
}

// StartRoom builds the game state and spins up the engine.
func (m *GameManager) StartRoom(r *matchmaker.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.engines[r.ID]; ok {
		return fmt.Errorf("engine for room %s exists", r.ID)
	}
	if len(r.Players) != table.PlayersCount {
		return fmt.Errorf("room %s has %d players, want %d", r.ID, len(r.Players), table.PlayersCount)
	}

	s := table.New(r.ID, r.Players, r.Names, r.Bots)
	eng := engine.NewEngine(s, m.hub, m.cfg, audit.NewRecorder(r.ID, m.rdb, m.db))
	eng.OnFinished = m.teardown
	m.engines[r.ID] = eng

	for i, p := range r.Players {
		if !r.Bots[i] {
			m.playerToRoom[p] = r.ID
		}
	}

	go eng.Start()
	return nil
}

// teardown drops a finished room and frees its players for a new queue.
func (m *GameManager) teardown(roomID string, playerIDs []string) {
	m.mu.Lock()
	delete(m.engines, roomID)
	for _, id := range playerIDs {
		if m.playerToRoom[id] == roomID {
			delete(m.playerToRoom, id)
		}
	}
	m.mu.Unlock()

	if m.Matchmaker != nil {
		for _, id := range playerIDs {
			m.Matchmaker.ReleasePlayer(context.Background(), id)
		}
	}
	utils.Info.Printf("room %s torn down", roomID)
}

func (m *GameManager) engineFor(playerID string) *engine.Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engines[m.playerToRoom[playerID]]
}

// HandlePlayerMessage is the single entry point for Hub.OnIncoming.
func (m *GameManager) HandlePlayerMessage(msg websocket.IncomingMessage) {
	data, _ := msg.Data.(map[string]any)

	switch msg.Event {
	case "find_game":
		m.handleFindGame(msg.From, data)

	case "leave_queue":
		if m.Matchmaker != nil {
			_ = m.Matchmaker.Cancel(context.Background(), msg.From)
		}
		m.hub.SendToPlayer(msg.From, websocket.OutgoingMessage{
			Event: "queue_left",
			Data:  map[string]any{},
		})

	case engine.ActionMakeBet, engine.ActionThrowCard, engine.ActionSelectTrump:
		eng := m.engineFor(msg.From)
		if eng == nil {
			m.sendError(msg.From, "NOT_IN_GAME", "you are not in a game")
			return
		}
		eng.EnqueueAction(msg.From, msg.Event, data)

	case engine.ActionLeaveGame:
		eng := m.engineFor(msg.From)
		if eng == nil {
			m.sendError(msg.From, "NOT_IN_GAME", "you are not in a game")
			return
		}
		eng.EnqueueAction(msg.From, msg.Event, data)
		m.mu.Lock()
		delete(m.playerToRoom, msg.From)
		m.mu.Unlock()
		if m.Matchmaker != nil {
			m.Matchmaker.ReleasePlayer(context.Background(), msg.From)
		}
	}
}

func (m *GameManager) handleFindGame(playerID string, data map[string]any) {
	if m.Matchmaker == nil {
		m.sendError(playerID, "MATCHMAKING_UNAVAILABLE", "matchmaking is not running")
		return
	}
	name, _ := data["name"].(string)
	if name == "" {
		name = "Player"
	}
	_, queued, err := m.Matchmaker.Join(context.Background(), matchmaker.JoinRequest{
		PlayerID: playerID, Name: name,
	})
	if err != nil {
		m.sendError(playerID, "MATCHMAKING_FAILED", err.Error())
		return
	}
	if queued {
		m.hub.SendToPlayer(playerID, websocket.OutgoingMessage{
			Event: "waiting_for_players",
			Data:  map[string]any{},
		})
	}
	// A filled table announces itself through the matchmaker broadcast.
}

// HandleConnect and HandleDisconnect are wired to the hub hooks.
func (m *GameManager) HandleConnect(playerID string) {
	if eng := m.engineFor(playerID); eng != nil {
		eng.PlayerConnected(playerID)
	}
}

func (m *GameManager) HandleDisconnect(playerID string) {
	if eng := m.engineFor(playerID); eng != nil {
		eng.PlayerDisconnected(playerID)
	}
}

func (m *GameManager) sendError(playerID, code, message string) {
	m.hub.SendToPlayer(playerID, websocket.OutgoingMessage{
		Event: "error",
		Data:  map[string]any{"code": code, "message": message},
	})
}
