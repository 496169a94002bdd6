package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skopintsev/farebook/config"
	"github.com/skopintsev/farebook/internal/domain"
)

type RedisCache struct {
	client    *redis.Client
	quotesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, quotesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		quotesTTL: quotesTTL,
	}
}

func (c *RedisCache) GetFlights(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey(origin, destination)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, origin, destination string, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(origin, destination), payload, c.quotesTTL).Err()
}

// AcquireFlightLock takes the exclusive per-flight booking lock, polling
// until maxWait elapses. Returns false when the lock stayed held the whole
// time; the caller maps that to a lock timeout.
func (c *RedisCache) AcquireFlightLock(ctx context.Context, flightID int64, ttl, maxWait time.Duration) (bool, error) {
	deadline := time.Now().Add(maxWait)
	for {
		ok, err := c.client.SetNX(ctx, flightLockKey(flightID), "locked", ttl).Result()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (c *RedisCache) ReleaseFlightLock(ctx context.Context, flightID int64) error {
	return c.client.Del(ctx, flightLockKey(flightID)).Err()
}

func flightsKey(origin, destination string) string {
	return fmt.Sprintf("cache:flights:%s:%s", origin, destination)
}

func flightLockKey(flightID int64) string {
	return fmt.Sprintf("lock:flight:%d", flightID)
}
