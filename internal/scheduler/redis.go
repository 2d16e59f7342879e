package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

const lockPrefix = "pairdesk:lock:"

// RedisLocker grants job locks with SET NX PX, so one replica runs each firing.
// Locks are never released early; they expire after their ttl.
type RedisLocker struct {
	client *redis.Client
	owner  string
}

// NewRedisLocker creates a locker over client.
func NewRedisLocker(client *redis.Client) *RedisLocker {
	owner, err := os.Hostname()
	if err != nil || owner == "" {
		owner = "pairdesk"
	}
	return &RedisLocker{client: client, owner: owner}
}

// NewRedisClient opens and pings a client.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// TryLock reports whether key was free and is now held by this replica.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockPrefix+key, l.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

// Close closes the underlying client.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
