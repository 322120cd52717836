package cache

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type RedisDocumentCache struct {
	client *redis.Client
}

func NewRedisDocumentCache(addr string, password string, db int) *RedisDocumentCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisDocumentCache{client: client}
}

func (c *RedisDocumentCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisDocumentCache) Close() error {
	return c.client.Close()
}

func (c *RedisDocumentCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, "invoice-pdf:"+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisDocumentCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if len(value) == 0 {
		return nil
	}
	return c.client.Set(ctx, "invoice-pdf:"+key, value, ttl).Err()
}
