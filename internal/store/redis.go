package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisKV is a Redis-backed KV substrate. Collections live under plain
// string keys, prefixed to keep them apart from other users of the
// database.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV creates a Redis-backed KV.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{
		client: client,
		prefix: "shortkey:",
	}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, err
	}

	return raw, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}
