package matchmaker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	rdb *redis.Client
}

func NewRedisRepo(rdb *redis.Client) Repo {
	return &redisRepo{rdb: rdb}
}

// Key layout:
//
//	set: mm:queue:joker          -> Set(json(QueuedPlayer), ...)
//	kv : mm:player:{playerID}    -> the exact set member, for removal
//	kv : mm:room:{roomID}        -> json(Room)
//	kv : mm:playerRoom:{playerID} -> roomID
const queueKey = "mm:queue:joker"

func playerKey(playerID string) string {
	return fmt.Sprintf("mm:player:%s", playerID)
}

func (r *redisRepo) Enqueue(ctx context.Context, qp QueuedPlayer, ttlSeconds int) error {
	member, err := json.Marshal(qp)
	if err != nil {
		return err
	}
	p := r.rdb.Pipeline()
	p.SAdd(ctx, queueKey, member)
	p.Set(ctx, playerKey(qp.PlayerID), member, time.Duration(ttlSeconds)*time.Second)
	_, err = p.Exec(ctx)
	return err
}

func (r *redisRepo) PopNRandom(ctx context.Context, n int) ([]QueuedPlayer, error) {
	// SPOP COUNT pops n random members atomically.
	res, err := r.rdb.SPopN(ctx, queueKey, int64(n)).Result()
	if err != nil {
		return nil, err
	}
	players := make([]QueuedPlayer, 0, len(res))
	if len(res) > 0 {
		p := r.rdb.Pipeline()
		for _, member := range res {
			var qp QueuedPlayer
			if err := json.Unmarshal([]byte(member), &qp); err != nil {
				continue
			}
			players = append(players, qp)
			p.Del(ctx, playerKey(qp.PlayerID))
		}
		_, _ = p.Exec(ctx)
	}
	return players, nil
}

func (r *redisRepo) Remove(ctx context.Context, playerID string) error {
	member, err := r.rdb.Get(ctx, playerKey(playerID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	// Remove the member and the reverse index; drop the set when empty.
	script := `
        redis.call("DEL", KEYS[1])
        redis.call("SREM", KEYS[2], ARGV[1])
        if redis.call("SCARD", KEYS[2]) == 0 then
            redis.call("DEL", KEYS[2])
        end
        return 1
    `
	if err := r.rdb.Eval(ctx, script, []string{playerKey(playerID), queueKey}, member).Err(); err != nil {
		p := r.rdb.Pipeline()
		p.SRem(ctx, queueKey, member)
		p.Del(ctx, playerKey(playerID))
		if _, execErr := p.Exec(ctx); execErr != nil {
			return execErr
		}
		if n, _ := r.rdb.SCard(ctx, queueKey).Result(); n == 0 {
			_ = r.rdb.Del(ctx, queueKey).Err()
		}
	}
	return nil
}

func (r *redisRepo) Count(ctx context.Context) (int64, error) {
	return r.rdb.SCard(ctx, queueKey).Result()
}

func (r *redisRepo) SaveRoom(ctx context.Context, room *Room, ttlSeconds int) error {
	key := fmt.Sprintf("mm:room:%s", room.ID)
	data, _ := json.Marshal(room)
	p := r.rdb.Pipeline()
	p.Set(ctx, key, data, time.Duration(ttlSeconds)*time.Second)
	for i, id := range room.Players {
		if room.Bots[i] {
			continue
		}
		p.Set(ctx, fmt.Sprintf("mm:playerRoom:%s", id), room.ID, time.Duration(ttlSeconds)*time.Second)
	}
	_, err := p.Exec(ctx)
	return err
}

func (r *redisRepo) GetPlayerRoom(ctx context.Context, playerID string) (string, error) {
	val, err := r.rdb.Get(ctx, fmt.Sprintf("mm:playerRoom:%s", playerID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// ClearPlayerRoom releases the player once their game is over, so they can
// queue again.
func (r *redisRepo) ClearPlayerRoom(ctx context.Context, playerID string) error {
	return r.rdb.Del(ctx, fmt.Sprintf("mm:playerRoom:%s", playerID)).Err()
}
