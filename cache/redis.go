package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"simpleink/config"
	"simpleink/logger"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// keyNamespace 隔离本服务在共享 Redis 中的键
const keyNamespace = "simpleink:"

// RedisStore 是基于 Redis 的 Store 实现
// gen and mu only order writers inside this process; another instance can
// still write back a stale value, which then lives until the TTL expires.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	gen    uint64
}

// NewRedisClient 根据配置创建 Redis 客户端并测试连接
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// New returns a RedisStore when Redis is enabled and reachable, otherwise Noop.
func New(cfg *config.Config) Store {
	if !cfg.RedisEnabled {
		return Noop{}
	}
	client, err := NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, caching disabled", logger.ErrorField(err))
		return Noop{}
	}
	logger.Info("Redis cache enabled",
		logger.String("addr", client.Options().Addr),
		logger.Duration("ttl", cfg.CacheTTL),
	)
	return NewRedisStore(client, cfg.CacheTTL)
}

func (s *RedisStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := s.client.Get(ctx, keyNamespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyNamespace+key, data, s.ttl).Err()
}

func (s *RedisStore) SetIfGeneration(ctx context.Context, key string, v any, gen uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.gen != gen {
		return false, nil
	}
	return true, s.Set(ctx, key, v)
}

func (s *RedisStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Invalidate 使用 SCAN 遍历前缀，避免 KEYS 阻塞服务端
func (s *RedisStore) Invalidate(ctx context.Context, prefixes ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	for _, prefix := range prefixes {
		iter := s.client.Scan(ctx, 0, keyNamespace+prefix+"*", 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to scan %s: %w", prefix, err)
		}
		if len(keys) == 0 {
			continue
		}
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete %s: %w", prefix, err)
		}
	}
	return nil
}

// Ping checks the connection, used by the redis command.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
