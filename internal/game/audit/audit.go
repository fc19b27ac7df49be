package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"GeorgianJoker/internal/utils"
)

// Event names written to the audit trail.
const (
	EventTuzovanie     = "TUZOVANIE"
	EventGameStart     = "GAME_START"
	EventRoundStart    = "ROUND_START"
	EventTrump         = "TRUMP"
	EventRedeal        = "REDEAL"
	EventBet           = "BET"
	EventCard          = "CARD"
	EventTrickWinner   = "TRICK_WINNER"
	EventRoundComplete = "ROUND_COMPLETE"
	EventPulkaComplete = "PULKA_COMPLETE"
	EventGameFinished  = "GAME_FINISHED"
)

// Entry is one audit record: timestamp, action, acting player, payload.
type Entry struct {
	T int64       `json:"t"`
	A string      `json:"a"`
	P string      `json:"p,omitempty"`
	D interface{} `json:"d,omitempty"`
}

const listTTL = 24 * time.Hour

// Recorder appends the room's audit trail to redis and flushes it to
// postgres at pulka and game boundaries. A nil Recorder, or one with nil
// backends, silently drops writes: auditing never blocks the game.
type Recorder struct {
	roomID string
	rdb    *redis.Client
	db     *sql.DB
}

func NewRecorder(roomID string, rdb *redis.Client, db *sql.DB) *Recorder {
	return &Recorder{roomID: roomID, rdb: rdb, db: db}
}

func (r *Recorder) key() string {
	return "game:audit:" + r.roomID
}

// Record appends one entry to the room's redis list.
func (r *Recorder) Record(action, playerID string, data interface{}) {
	if r == nil || r.rdb == nil {
		return
	}
	entry := Entry{T: time.Now().UnixMilli(), A: action, P: playerID, D: data}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	ctx := context.Background()
	if err := r.rdb.RPush(ctx, r.key(), raw).Err(); err != nil {
		utils.Error.Printf("audit rpush failed for %s: %v", r.roomID, err)
		return
	}
	_ = r.rdb.Expire(ctx, r.key(), listTTL).Err()
}

// Flush copies the accumulated trail into the games row. state is the room's
// lifecycle marker ("running", "finished", "terminated"); rankings may be nil
// until the game ends.
func (r *Recorder) Flush(state string, rankings interface{}) {
	if r == nil || r.db == nil || r.rdb == nil {
		return
	}
	ctx := context.Background()
	raw, err := r.rdb.LRange(ctx, r.key(), 0, -1).Result()
	if err != nil {
		utils.Error.Printf("audit lrange failed for %s: %v", r.roomID, err)
		return
	}

	entries := make([]json.RawMessage, 0, len(raw))
	for _, item := range raw {
		entries = append(entries, json.RawMessage(item))
	}
	log, err := json.Marshal(entries)
	if err != nil {
		return
	}

	var rankingsJSON interface{}
	if rankings != nil {
		if b, err := json.Marshal(rankings); err == nil {
			rankingsJSON = b
		}
	}

	_, err = r.db.Exec(`
        INSERT INTO games (room_id, state, audit_log, rankings, updated_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (room_id) DO UPDATE
        SET state = EXCLUDED.state,
            audit_log = EXCLUDED.audit_log,
            rankings = COALESCE(EXCLUDED.rankings, games.rankings),
            updated_at = now()`,
		r.roomID, state, log, rankingsJSON)
	if err != nil {
		utils.Error.Printf("audit flush failed for %s: %v", r.roomID, err)
	}
}

// Trail reads the entries accumulated so far, newest last.
func (r *Recorder) Trail() ([]Entry, error) {
	if r == nil || r.rdb == nil {
		return nil, nil
	}
	raw, err := r.rdb.LRange(context.Background(), r.key(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
