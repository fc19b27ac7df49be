package matchmaker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"GeorgianJoker/internal/websocket"
)

type HubBroadcaster interface {
	BroadcastToPlayers(playerIDs []string, msg websocket.OutgoingMessage)
}

// Service fills four-seat tables. A table forms the moment four players are
// waiting; if the queue stalls past fillAfter, whoever is waiting gets
// seated with bots.
type Service struct {
	repo        Repo
	playerTTL   int // seconds, keeps abandoned queue entries from lingering
	fillAfter   time.Duration
	hub         HubBroadcaster
	OnRoomReady func(*Room)

	mu        sync.Mutex
	fillTimer *time.Timer
}

func NewService(repo Repo, playerTTL int, fillAfter time.Duration, hub HubBroadcaster) *Service {
	return &Service{repo: repo, playerTTL: playerTTL, fillAfter: fillAfter, hub: hub}
}

// Join enqueues the player and forms a table immediately once four are
// waiting. The first player to wait arms the bot-fill timer.
func (s *Service) Join(ctx context.Context, req JoinRequest) (*Room, bool, error) {
	if checker, ok := s.repo.(interface {
		GetPlayerRoom(ctx context.Context, playerID string) (string, error)
	}); ok {
		roomID, _ := checker.GetPlayerRoom(ctx, req.PlayerID)
		if roomID != "" {
			return nil, false, fmt.Errorf("player %s already in room %s", req.PlayerID, roomID)
		}
	}

	if err := s.repo.Enqueue(ctx, QueuedPlayer{PlayerID: req.PlayerID, Name: req.Name}, s.playerTTL); err != nil {
		return nil, false, err
	}
	cnt, err := s.repo.Count(ctx)
	if err != nil {
		return nil, false, err
	}
	if int(cnt) < TableSize {
		s.armFillTimer()
		return nil, true, nil // queued
	}

	players, err := s.repo.PopNRandom(ctx, TableSize)
	if err != nil {
		return nil, false, err
	}
	if len(players) < TableSize {
		// Lost a concurrent race: back to waiting.
		s.armFillTimer()
		return nil, true, nil
	}
	s.disarmFillTimer()
	return s.formRoom(ctx, players), false, nil
}

func (s *Service) Cancel(ctx context.Context, playerID string) error {
	err := s.repo.Remove(ctx, playerID)
	if cnt, cerr := s.repo.Count(ctx); cerr == nil && cnt == 0 {
		s.disarmFillTimer()
	}
	return err
}

// ReleasePlayer frees the player's room binding after their game ends.
func (s *Service) ReleasePlayer(ctx context.Context, playerID string) {
	if clearer, ok := s.repo.(interface {
		ClearPlayerRoom(ctx context.Context, playerID string) error
	}); ok {
		_ = clearer.ClearPlayerRoom(ctx, playerID)
	}
}

func (s *Service) armFillTimer() {
	if s.fillAfter <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fillTimer != nil {
		return
	}
	s.fillTimer = time.AfterFunc(s.fillAfter, s.fillWithBots)
}

func (s *Service) disarmFillTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fillTimer != nil {
		s.fillTimer.Stop()
		s.fillTimer = nil
	}
}

// fillWithBots seats everyone still waiting and pads the table with bots.
func (s *Service) fillWithBots() {
	s.mu.Lock()
	s.fillTimer = nil
	s.mu.Unlock()

	ctx := context.Background()
	players, err := s.repo.PopNRandom(ctx, TableSize)
	if err != nil || len(players) == 0 {
		return
	}
	for i := len(players); len(players) < TableSize; i++ {
		players = append(players, QueuedPlayer{
			PlayerID: "bot-" + uuid.NewString(),
			Name:     fmt.Sprintf("Bot %d", i+1),
		})
	}
	s.formRoom(ctx, players)
}

func (s *Service) formRoom(ctx context.Context, players []QueuedPlayer) *Room {
	room := &Room{
		ID:        uuid.NewString(),
		Players:   make([]string, 0, TableSize),
		Names:     make([]string, 0, TableSize),
		Bots:      make([]bool, 0, TableSize),
		CreatedAt: time.Now(),
	}
	humans := make([]string, 0, TableSize)
	for _, p := range players {
		room.Players = append(room.Players, p.PlayerID)
		room.Names = append(room.Names, p.Name)
		isBot := len(p.PlayerID) > 4 && p.PlayerID[:4] == "bot-"
		room.Bots = append(room.Bots, isBot)
		if !isBot {
			humans = append(humans, p.PlayerID)
		}
	}

	if saver, ok := s.repo.(interface {
		SaveRoom(context.Context, *Room, int) error
	}); ok {
		if err := saver.SaveRoom(ctx, room, s.playerTTL); err != nil {
			fmt.Println("SaveRoom error:", err)
		}
	}

	s.hub.BroadcastToPlayers(humans, websocket.OutgoingMessage{
		Event: "matched",
		Data: map[string]any{
			"roomId":  room.ID,
			"players": room.Players,
			"names":   room.Names,
		},
	})

	if s.OnRoomReady != nil {
		go s.OnRoomReady(room)
	}
	return room
}
