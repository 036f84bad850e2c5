package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fleet-simulation-service/internal/domain"
	"fleet-simulation-service/internal/platform/obs"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultRunCacheTTL = 10 * time.Minute
	runKeyPrefix       = "fleetsim:run:"
)

type kpisRecord struct {
	TotalProfit      int     `json:"totalProfit"`
	EfficiencyScore  float64 `json:"efficiencyScore"`
	OnTimeDeliveries int     `json:"onTimeDeliveries"`
	LateDeliveries   int     `json:"lateDeliveries"`
	TotalFuelCost    int     `json:"totalFuelCost"`
	AvgDeliveryTime  int     `json:"avgDeliveryTime"`
	TotalOrders      int     `json:"totalOrders"`
	TotalPenalties   int     `json:"totalPenalties"`
	TotalBonuses     int     `json:"totalBonuses"`
}

// RedisRunCache stores KPI records under their input fingerprint with a TTL.
type RedisRunCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRunCache(rdb *redis.Client, ttl time.Duration) *RedisRunCache {
	if ttl <= 0 {
		ttl = DefaultRunCacheTTL
	}
	return &RedisRunCache{rdb: rdb, ttl: ttl}
}

// Build a client from a redis:// URL and verify the connection.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("open redis: parse url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("open redis: ping: %w", err)
	}
	return rdb, nil
}

func (c *RedisRunCache) Get(ctx context.Context, key string) (_ domain.KPIs, _ bool, err error) {
	defer obs.Time(ctx, "run.cache.Get")(&err)

	b, err := c.rdb.Get(ctx, runKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.KPIs{}, false, nil
	}
	if err != nil {
		return domain.KPIs{}, false, fmt.Errorf("run cache get %s: %w", key, err)
	}

	var rec kpisRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return domain.KPIs{}, false, fmt.Errorf("run cache get %s: decode: %w", key, err)
	}
	return domain.KPIs(rec), true, nil
}

func (c *RedisRunCache) Put(ctx context.Context, key string, kpis domain.KPIs) (err error) {
	defer obs.Time(ctx, "run.cache.Put")(&err)

	b, err := json.Marshal(kpisRecord(kpis))
	if err != nil {
		return fmt.Errorf("run cache put %s: encode: %w", key, err)
	}
	if err := c.rdb.Set(ctx, runKeyPrefix+key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("run cache put %s: %w", key, err)
	}
	return nil
}
