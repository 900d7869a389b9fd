package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"orange-brew/internal/redisx"
)

// StatusCache keeps a short-lived {status, owner} entry per order so that
// tracking polls skip the database. Best-effort on both sides.
type StatusCache interface {
	Set(ctx context.Context, orderID, userID int64, status Status)
	Get(ctx context.Context, orderID int64) (Status, int64, bool)
}

type statusEntry struct {
	Status Status `json:"status"`
	UserID int64  `json:"user_id"`
}

type RedisStatusCache struct{ RDB *redis.Client }

func (c *RedisStatusCache) Set(ctx context.Context, orderID, userID int64, status Status) {
	b, err := json.Marshal(statusEntry{Status: status, UserID: userID})
	if err != nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = c.RDB.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func (c *RedisStatusCache) Get(ctx context.Context, orderID int64) (Status, int64, bool) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	s, err := c.RDB.Get(ctx, key).Result()
	if err != nil {
		return "", 0, false
	}
	var e statusEntry
	if json.Unmarshal([]byte(s), &e) != nil {
		return "", 0, false
	}
	return e.Status, e.UserID, true
}
