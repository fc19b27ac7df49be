package matchmaker

import "time"

// TableSize is fixed: Joker is a four-player game, always.
const TableSize = 4

// JoinRequest is the client's matchmaking request. The player id comes from
// the JWT, never from the body.
type JoinRequest struct {
	PlayerID string `json:"-"`
	Name     string `json:"name" binding:"required"`
}

// JoinResponse reports whether the player is queued or seated.
type JoinResponse struct {
	Queued  bool     `json:"queued"`
	RoomID  string   `json:"roomId,omitempty"`
	Players []string `json:"players,omitempty"`
}

// QueuedPlayer is one waiting entry.
type QueuedPlayer struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// Room is a filled table. Bots marks the seats backfilled after the
// matchmaking timeout.
type Room struct {
	ID        string    `json:"id"`
	Players   []string  `json:"players"`
	Names     []string  `json:"names"`
	Bots      []bool    `json:"bots"`
	CreatedAt time.Time `json:"createdAt"`
}
