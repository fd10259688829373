package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations. Values are JSON encoded so every backend
// decodes into the caller's destination the same way.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Close() error
}

// Backends accepted by Open.
const (
	BackendMemory  = "memory"
	BackendRedis   = "redis"
	BackendLayered = "layered"
)

// Open builds the configured backend.
func Open(cfg Config) (Service, error) {
	mem := []MemoryOption{WithMemoryMaxSize(cfg.MemoryMaxSize), WithMemoryCleanup(cfg.CleanupInterval)}
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryCache(mem...), nil
	case BackendRedis, BackendLayered:
		rc, err := NewRedisCache(cfg.Redis.Options()...)
		if err != nil {
			return nil, err
		}
		if cfg.Backend == BackendRedis {
			return rc, nil
		}
		return NewLayeredCache(rc, WithLayeredMemorySize(cfg.MemoryMaxSize), WithLayeredTTL(cfg.LocalTTL)), nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}
}
