package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKeyring is a Redis-backed [Keyring] for deployments that keep client
// sessions in shared storage, for example a fleet of headless sync agents.
// An optional TTL bounds the lifetime of every stored key.
type RedisKeyring struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisKeyring creates a keyring on the given Redis client. prefix
// namespaces the keys; ttl of zero means the keys never expire.
func NewRedisKeyring(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisKeyring {
	if prefix == "" {
		prefix = "fitgate"
	}
	return &RedisKeyring{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (k *RedisKeyring) key(name string) string {
	return k.prefix + ":" + name
}

// Get implements [Keyring].
func (k *RedisKeyring) Get(ctx context.Context, key string) (string, error) {
	v, err := k.redis.Get(ctx, k.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return v, nil
}

// Set implements [Keyring].
func (k *RedisKeyring) Set(ctx context.Context, key, value string) error {
	if err := k.redis.Set(ctx, k.key(key), value, k.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Delete implements [Keyring]. Deleting an absent key is a no-op.
func (k *RedisKeyring) Delete(ctx context.Context, key string) error {
	if err := k.redis.Del(ctx, k.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
