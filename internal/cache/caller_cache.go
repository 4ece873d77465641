// Package cache はRedisを用いたキャッシュを提供する。
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const callerKeyPrefix = "todoman:caller:"

// NewRedisClient はURLからRedisクライアントを生成し、疎通を確認する。
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// CallerIDCache はユーザー名からユーザーIDへの対応をRedisにキャッシュする。
// ユーザーは登録後に更新・削除されないため、TTL切れ以外の無効化は不要。
type CallerIDCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCallerIDCache はCallerIDCacheを生成する。
func NewCallerIDCache(client *redis.Client, ttl time.Duration) *CallerIDCache {
	return &CallerIDCache{client: client, ttl: ttl}
}

// Get はキャッシュ済みのユーザーIDを返す。キャッシュミスの場合はfalseを返す。
func (c *CallerIDCache) Get(ctx context.Context, username string) (string, bool, error) {
	id, err := c.client.Get(ctx, callerKeyPrefix+username).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}
	return id, true, nil
}

// Set はユーザー名とユーザーIDの対応をTTL付きで保存する。
func (c *CallerIDCache) Set(ctx context.Context, username, userID string) error {
	if err := c.client.Set(ctx, callerKeyPrefix+username, userID, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Ping はRedisへの疎通を確認する。
func (c *CallerIDCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
