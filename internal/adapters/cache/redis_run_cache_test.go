package cache

import (
	"context"
	"fleet-simulation-service/internal/domain"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisRunCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisRunCache(rdb, ttl), mr
}

func TestRedisRunCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "abc"); err != nil || ok {
		t.Fatalf("Get on empty cache = ok=%v err=%v, want miss", ok, err)
	}

	want := domain.KPIs{TotalProfit: 1600, EfficiencyScore: 100, OnTimeDeliveries: 100, TotalFuelCost: 50, AvgDeliveryTime: 60, TotalOrders: 1, TotalBonuses: 150}
	if err := c.Put(ctx, "abc", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v, want hit", ok, err)
	}
	if got != want {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}
}

func TestRedisRunCacheExpires(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	if err := c.Put(ctx, "k", domain.KPIs{TotalOrders: 2}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ttl := mr.TTL(runKeyPrefix + "k"); ttl != 30*time.Second {
		t.Fatalf("TTL = %v, want 30s", ttl)
	}

	mr.FastForward(31 * time.Second)

	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("Get after expiry = ok=%v err=%v, want miss", ok, err)
	}
}

func TestRedisRunCacheCorruptValue(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)

	if err := mr.Set(runKeyPrefix+"bad", "not json"); err != nil {
		t.Fatalf("seed value: %v", err)
	}
	if _, _, err := c.Get(context.Background(), "bad"); err == nil {
		t.Fatalf("expected decode error")
	}
}
