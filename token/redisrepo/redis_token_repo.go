package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/jrsteele09/go-bookshelf-client/token"
)

var _ token.Repo = (*RedisTokenRepo)(nil)

// RedisTokenRepo stores tokens as plain string keys under a prefix, so
// several devices or profiles can share one redis.
type RedisTokenRepo struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New wraps an existing client. A zero ttl keeps keys until deleted.
func New(client *redis.Client, prefix string, ttl time.Duration) *RedisTokenRepo {
	return &RedisTokenRepo{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Dial parses redisURL, connects and pings the server.
func Dial(ctx context.Context, redisURL, prefix string, ttl time.Duration) (*RedisTokenRepo, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return New(client, prefix, ttl), nil
}

func (rr *RedisTokenRepo) Get(ctx context.Context, key string) (string, error) {
	v, err := rr.client.Get(ctx, rr.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperrors.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (rr *RedisTokenRepo) Set(ctx context.Context, key, value string) error {
	return rr.client.Set(ctx, rr.key(key), value, rr.ttl).Err()
}

func (rr *RedisTokenRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, rr.key(k))
	}
	return rr.client.Del(ctx, full...).Err()
}

func (rr *RedisTokenRepo) Close() error {
	return rr.client.Close()
}

func (rr *RedisTokenRepo) key(k string) string {
	return rr.prefix + k
}
