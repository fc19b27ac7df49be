package matchmaker

import "context"

// Repo abstracts the waiting queue.
type Repo interface {
	// Enqueue adds a player to the queue.
	Enqueue(ctx context.Context, p QueuedPlayer, ttlSeconds int) error
	// PopNRandom atomically removes up to n random players from the queue.
	PopNRandom(ctx context.Context, n int) ([]QueuedPlayer, error)
	// Remove takes a player out of the queue (cancel).
	Remove(ctx context.Context, playerID string) error
	// Count returns the queue length.
	Count(ctx context.Context) (int64, error)
}
