package matchmaker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	ws "GeorgianJoker/internal/websocket"
)

// MockHub captures BroadcastToPlayers calls per player id.
type MockHub struct {
	mu   sync.Mutex
	msgs map[string]ws.OutgoingMessage
}

func NewMockHub() *MockHub {
	return &MockHub{msgs: make(map[string]ws.OutgoingMessage)}
}

func (m *MockHub) BroadcastToPlayers(ids []string, msg ws.OutgoingMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		m.msgs[id] = msg
	}
}

func (m *MockHub) GetMsg(id string) (ws.OutgoingMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.msgs[id]
	return msg, ok
}

func join(t *testing.T, svc *Service, id string) (*Room, bool) {
	t.Helper()
	room, queued, err := svc.Join(context.Background(), JoinRequest{PlayerID: id, Name: "Player " + id})
	assert.NoError(t, err)
	return room, queued
}

func Test_MemoryRepo_MatchFlow(t *testing.T) {
	repo := NewMemoryRepo()
	hub := NewMockHub()
	svc := NewService(repo, 60, 0, hub)

	ids := []string{"p1", "p2", "p3", "p4"}

	// First three wait, the fourth fills the table.
	for i := 0; i < 3; i++ {
		_, queued := join(t, svc, ids[i])
		assert.True(t, queued)
	}
	room, queued := join(t, svc, ids[3])
	assert.False(t, queued)
	assert.NotNil(t, room)
	assert.Equal(t, TableSize, len(room.Players))
	assert.ElementsMatch(t, ids, room.Players)

	for _, p := range room.Players {
		msg, ok := hub.GetMsg(p)
		assert.True(t, ok, "player %s should have received a message", p)
		assert.Equal(t, "matched", msg.Event)
		dataBytes, _ := json.Marshal(msg.Data)
		var payload map[string]interface{}
		_ = json.Unmarshal(dataBytes, &payload)
		assert.Equal(t, room.ID, payload["roomId"])
	}

	cnt, err := repo.Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(0), cnt)
}

func Test_MemoryRepo_OnRoomReady(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, 60, 0, NewMockHub())

	ready := make(chan *Room, 1)
	svc.OnRoomReady = func(r *Room) { ready <- r }

	for i := 1; i <= 4; i++ {
		join(t, svc, fmt.Sprintf("p%d", i))
	}

	select {
	case room := <-ready:
		assert.Equal(t, TableSize, len(room.Players))
	case <-time.After(time.Second):
		t.Fatal("OnRoomReady was not called")
	}
}

func Test_RedisRepo_MatchFlow(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewRedisRepo(rdb)
	hub := NewMockHub()
	svc := NewService(repo, 60, 0, hub)

	for i := 1; i <= 3; i++ {
		_, queued := join(t, svc, fmt.Sprintf("p%d", i))
		assert.True(t, queued)
	}
	room, queued := join(t, svc, "p4")
	assert.False(t, queued)
	assert.NotNil(t, room)
	assert.Equal(t, TableSize, len(room.Players))

	for _, p := range room.Players {
		msg, ok := hub.GetMsg(p)
		assert.True(t, ok)
		assert.Equal(t, "matched", msg.Event)
	}

	// The room is persisted under mm:room:{id}.
	assert.True(t, mr.Exists("mm:room:"+room.ID), "room key should exist in redis")

	cnt, err := repo.Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(0), cnt)
}

func Test_RedisRepo_CancelRemovesFromQueue(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewRedisRepo(rdb)
	svc := NewService(repo, 60, 0, NewMockHub())
	ctx := context.Background()

	_, queued := join(t, svc, "p1")
	assert.True(t, queued)

	assert.NoError(t, svc.Cancel(ctx, "p1"))
	cnt, err := repo.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), cnt)
	assert.False(t, mr.Exists(queueKey), "queue key should be removed when empty")

	// Cancelled players do not end up at the next table.
	for i := 2; i <= 4; i++ {
		join(t, svc, fmt.Sprintf("p%d", i))
	}
	room, queued := join(t, svc, "p5")
	assert.False(t, queued)
	assert.NotContains(t, room.Players, "p1")
}

func Test_RedisRepo_ConcurrentJoins(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewRedisRepo(rdb)
	svc := NewService(repo, 60, 0, NewMockHub())

	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"}

	done := make(chan struct{}, len(ids))
	for _, id := range ids {
		go func(id string) {
			_, _, _ = svc.Join(context.Background(), JoinRequest{PlayerID: id, Name: id})
			done <- struct{}{}
		}(id)
	}
	for range ids {
		<-done
	}

	time.Sleep(50 * time.Millisecond)

	// Eight joiners, four per table: nobody left waiting.
	cnt, err := repo.Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(0), cnt)
}

func Test_PlayerCannotRejoin_WhenAlreadyInRoom(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewRedisRepo(rdb)
	svc := NewService(repo, 60, 0, NewMockHub())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		join(t, svc, fmt.Sprintf("p%d", i))
	}
	room, queued := join(t, svc, "p4")
	assert.False(t, queued)
	assert.NotNil(t, room)

	val, _ := mr.Get("mm:playerRoom:p1")
	assert.Equal(t, room.ID, val, "playerRoom mapping should be set")

	_, _, err = svc.Join(ctx, JoinRequest{PlayerID: "p1", Name: "Player p1"})
	assert.Error(t, err, "player already in room should trigger error")
	assert.Contains(t, err.Error(), "already in room")

	// Release after the game ends, then queue again.
	svc.ReleasePlayer(ctx, "p1")
	_, queued, err = svc.Join(ctx, JoinRequest{PlayerID: "p1", Name: "Player p1"})
	assert.NoError(t, err)
	assert.True(t, queued)
}

func Test_BotFill_AfterTimeout(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, 60, 30*time.Millisecond, NewMockHub())

	ready := make(chan *Room, 1)
	svc.OnRoomReady = func(r *Room) { ready <- r }

	_, queued := join(t, svc, "p1")
	assert.True(t, queued)
	_, queued = join(t, svc, "p2")
	assert.True(t, queued)

	select {
	case room := <-ready:
		assert.Equal(t, TableSize, len(room.Players))
		bots := 0
		for i, isBot := range room.Bots {
			if isBot {
				bots++
				assert.Contains(t, room.Players[i], "bot-")
			}
		}
		assert.Equal(t, 2, bots, "two empty seats should be bots")
	case <-time.After(time.Second):
		t.Fatal("bot fill never fired")
	}

	cnt, _ := repo.Count(context.Background())
	assert.Equal(t, int64(0), cnt)
}

func Test_BotFill_CancelledWhenTableFills(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, 60, 50*time.Millisecond, NewMockHub())

	rooms := make(chan *Room, 2)
	svc.OnRoomReady = func(r *Room) { rooms <- r }

	for i := 1; i <= 4; i++ {
		join(t, svc, fmt.Sprintf("p%d", i))
	}

	room := <-rooms
	for _, isBot := range room.Bots {
		assert.False(t, isBot)
	}

	// The fill timer is disarmed: nothing else forms.
	select {
	case r := <-rooms:
		t.Fatalf("unexpected second room %s", r.ID)
	case <-time.After(120 * time.Millisecond):
	}
}
