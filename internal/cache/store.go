package cache

import (
	"context"
	"ticket-waitlist/pkg/logger"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is a key/value store with TTL. Implementations are advisory: every
// backend failure degrades to a miss (Get) or a no-op (Set/Delete) so read
// paths stay available when the store is unreachable.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type RedisStore struct {
	client    *redis.Client
	opTimeout time.Duration
	log       *zap.Logger
}

func NewRedisStore(client *redis.Client, opTimeout time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		opTimeout: opTimeout,
		log:       logger.WithComponent("cache"),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		s.log.Warn("cache get failed, treating as miss", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return val, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}
