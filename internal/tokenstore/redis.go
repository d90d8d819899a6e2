package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces the slot so a shared Redis can host other data.
const redisKeyPrefix = "stolu:"

// RedisStore keeps the token in a Redis string key. It lets several
// terminals on one machine (or a dev container and its host) share a login.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects lazily; the first command dials addr.
func NewRedisStore(addr string, db int, key string) *RedisStore {
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: addr, DB: db}), key)
}

// NewRedisStoreFromClient wraps an existing client. The store owns the
// client and closes it on Close.
func NewRedisStoreFromClient(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: redisKeyPrefix + key}
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("tokenstore: loading %q: %w", s.key, err)
	}

	return token, nil
}

func (s *RedisStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("tokenstore: saving %q: %w", s.key, err)
	}

	return nil
}

func (s *RedisStore) Remove(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("tokenstore: removing %q: %w", s.key, err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
