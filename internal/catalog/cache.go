package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"orange-brew/internal/redisx"
)

// Cache is the read-side cache of the catalog. All methods are best-effort:
// a miss or a redis error just sends the caller to the database.
type Cache interface {
	GetList(ctx context.Context) ([]Product, bool)
	SetList(ctx context.Context, ps []Product)
	GetProduct(ctx context.Context, id int64) (*Product, bool)
	SetProduct(ctx context.Context, p *Product)
	Invalidate(ctx context.Context, id int64)
}

type RedisCache struct{ RDB *redis.Client }

func (c *RedisCache) GetList(ctx context.Context) ([]Product, bool) {
	s, err := c.RDB.Get(ctx, redisx.KeyProductList).Result()
	if err != nil {
		return nil, false
	}
	var ps []Product
	if json.Unmarshal([]byte(s), &ps) != nil {
		return nil, false
	}
	return ps, true
}

func (c *RedisCache) SetList(ctx context.Context, ps []Product) {
	b, err := json.Marshal(ps)
	if err != nil {
		return
	}
	_ = c.RDB.Set(ctx, redisx.KeyProductList, b, redisx.TTLCatalog).Err()
}

func (c *RedisCache) GetProduct(ctx context.Context, id int64) (*Product, bool) {
	s, err := c.RDB.Get(ctx, fmt.Sprintf(redisx.KeyProduct, id)).Result()
	if err != nil {
		return nil, false
	}
	var p Product
	if json.Unmarshal([]byte(s), &p) != nil {
		return nil, false
	}
	return &p, true
}

func (c *RedisCache) SetProduct(ctx context.Context, p *Product) {
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	_ = c.RDB.Set(ctx, fmt.Sprintf(redisx.KeyProduct, p.ID), b, redisx.TTLCatalog).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, id int64) {
	_ = c.RDB.Del(ctx, redisx.KeyProductList, fmt.Sprintf(redisx.KeyProduct, id)).Err()
}
