package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores every projection of a user in one hash next to a
// generation counter, so invalidation is one INCR plus DEL and works across
// server instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Connect opens a client and checks it with PING.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCache) Get(ctx context.Context, userID, key string) (*domain.AnalyticsData, bool, error) {
	raw, err := c.client.HGet(ctx, hashKey(userID), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var data domain.AnalyticsData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false, err
	}
	return &data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, userID, key string, data *domain.AnalyticsData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, hashKey(userID), key, raw)
	pipe.Expire(ctx, hashKey(userID), c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisCache) Invalidate(ctx context.Context, userID string) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, generationKey(userID))
	pipe.Del(ctx, hashKey(userID))
	_, err := pipe.Exec(ctx)
	return err
}

func hashKey(userID string) string {
	return "analytics:" + userID
}

var _ ports.AnalyticsCache = (*RedisCache)(nil)
