package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/eventbooking/config"
	"github.com/Domenick1991/eventbooking/internal/domain"
)

const eventsKey = "cache:events"

// RedisCache keeps a short-lived copy of the event catalog.
type RedisCache struct {
	client    redis.UniversalClient
	eventsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, eventsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), eventsTTL)
}

func NewRedisCacheWithClient(client redis.UniversalClient, eventsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, eventsTTL: eventsTTL}
}

// GetEvents returns nil without error on a cache miss.
func (c *RedisCache) GetEvents(ctx context.Context) ([]domain.Event, error) {
	data, err := c.client.Get(ctx, eventsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var events []domain.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *RedisCache) SetEvents(ctx context.Context, events []domain.Event) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, eventsKey, payload, c.eventsTTL).Err()
}

func (c *RedisCache) InvalidateEvents(ctx context.Context) error {
	return c.client.Del(ctx, eventsKey).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
