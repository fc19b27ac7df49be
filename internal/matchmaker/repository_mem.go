package matchmaker

import (
	"context"
	"math/rand"
	"sync"
)

type memRepo struct {
	mu      sync.Mutex
	waiting map[string]QueuedPlayer // playerID -> entry
}

func NewMemoryRepo() Repo {
	return &memRepo{waiting: make(map[string]QueuedPlayer)}
}

func (m *memRepo) Enqueue(ctx context.Context, p QueuedPlayer, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// TTL is ignored, the memory repo is for tests.
	m.waiting[p.PlayerID] = p
	return nil
}

func (m *memRepo) PopNRandom(ctx context.Context, n int) ([]QueuedPlayer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	players := make([]QueuedPlayer, 0, len(m.waiting))
	for _, p := range m.waiting {
		players = append(players, p)
	}
	rand.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })

	if n > len(players) {
		n = len(players)
	}
	chosen := players[:n]
	for _, p := range chosen {
		delete(m.waiting, p.PlayerID)
	}
	return chosen, nil
}

func (m *memRepo) Remove(ctx context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.waiting, playerID)
	return nil
}

func (m *memRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.waiting)), nil
}
