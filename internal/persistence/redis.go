package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps one key per session, expiring after the retention window.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, "", ttl), nil
}

// NewRedisStoreWithClient creates a store over an existing client.
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "cart:"
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Slot returns the slot for a session.
func (s *RedisStore) Slot(sessionID string) Slot {
	return &redisSlot{store: s, key: s.keyPrefix + sessionID}
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

type redisSlot struct {
	store *RedisStore
	key   string
}

func (s *redisSlot) Read(ctx context.Context) (string, bool, error) {
	v, err := s.store.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cart %s: %w", s.key, err)
	}
	return v, true, nil
}

// Write refreshes the TTL on every save so active carts never expire.
func (s *redisSlot) Write(ctx context.Context, value string) error {
	if err := s.store.client.Set(ctx, s.key, value, s.store.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cart %s: %w", s.key, err)
	}
	return nil
}

func (s *redisSlot) Clear(ctx context.Context) error {
	if err := s.store.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", s.key, err)
	}
	return nil
}
