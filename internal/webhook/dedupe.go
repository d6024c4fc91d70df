package webhook

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper reports whether a webhook delivery id is seen for the first time.
type Deduper interface {
	First(ctx context.Context, deliveryID string) (bool, error)
}

// RedisDeduper remembers delivery ids with SETNX for TTL.
type RedisDeduper struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewRedisDeduper(redisURL, prefix string) (*RedisDeduper, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisDeduper{Client: redis.NewClient(opts), Prefix: prefix, TTL: 48 * time.Hour}, nil
}

func (d *RedisDeduper) First(ctx context.Context, deliveryID string) (bool, error) {
	if deliveryID == "" {
		return true, nil
	}
	return d.Client.SetNX(ctx, d.key(deliveryID), 1, d.TTL).Result()
}

func (d *RedisDeduper) Close() error {
	return d.Client.Close()
}

func (d *RedisDeduper) key(id string) string {
	return d.Prefix + ":webhook:" + id
}
