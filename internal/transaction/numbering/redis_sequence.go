package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "pos:txn:seq:"
	redisKeyTTL    = 48 * time.Hour
)

// RedisSequence shares the daily counter between all cashier instances.
type RedisSequence struct {
	client *redis.Client
}

// NewRedisSequence creates a new Redis-backed sequence
func NewRedisSequence(client *redis.Client) *RedisSequence {
	return &RedisSequence{client: client}
}

// Next increments the counter for date and refreshes its expiry.
func (s *RedisSequence) Next(ctx context.Context, date string) (int64, error) {
	key := redisKeyPrefix + date

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, redisKeyTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", key, err)
	}
	return incr.Val(), nil
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
