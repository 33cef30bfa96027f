package tokengate

import (
	"context"
	"errors"
	"fmt"
	"time"

	memorycache "github.com/porthorian/tokengate/pkg/cache/memory"
	rediscache "github.com/porthorian/tokengate/pkg/cache/redis"
)

type CacheBackend string

const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

type RuntimeConfig struct {
	Cache CacheConfig
}

type CacheConfig struct {
	Backend CacheBackend
	Memory  MemoryCacheConfig
	Redis   RedisCacheConfig
}

type MemoryCacheConfig struct{}

type RedisCacheConfig struct {
	Address     string
	Username    string
	Password    string
	Database    int
	Namespace   string
	DialTimeout time.Duration
	Eviction    time.Duration
}

func noopCloser() error {
	return nil
}

func joinClosers(closers ...func() error) func() error {
	return func() error {
		var errs []error
		for _, closer := range closers {
			if closer == nil {
				continue
			}
			if err := closer(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

func (c Config) initialize(ctx context.Context) (func() error, Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	config := c
	config.Logger = resolveLogger(config.Logger)

	closeCache, config, err := initializeCache(ctx, config)
	if err != nil {
		return nil, Config{}, err
	}

	return joinClosers(closeCache), config, nil
}

func initializeCache(ctx context.Context, config Config) (func() error, Config, error) {
	if config.Cache != nil {
		return noopCloser, config, nil
	}

	backend := config.Runtime.Cache.Backend
	if backend == "" {
		// The authenticator cannot operate without a profile cache.
		backend = CacheBackendMemory
	}

	switch backend {
	case CacheBackendMemory:
		return initializeMemoryCache(config)
	case CacheBackendRedis:
		return initializeRedisCache(ctx, config)
	default:
		return nil, Config{}, fmt.Errorf("tokengate config: unsupported runtime.cache.backend %q", backend)
	}
}

func initializeMemoryCache(config Config) (func() error, Config, error) {
	config.Cache = memorycache.NewAdapter()
	config.Logger.V(1).Info("initialized memory cache backend")
	return noopCloser, config, nil
}

func initializeRedisCache(ctx context.Context, config Config) (func() error, Config, error) {
	redisConfig := config.Runtime.Cache.Redis
	if redisConfig.Address == "" {
		return nil, Config{}, fmt.Errorf("tokengate config: runtime.cache.redis.address is required")
	}
	if redisConfig.DialTimeout <= 0 {
		redisConfig.DialTimeout = 5 * time.Second
	}

	adapter, err := rediscache.NewAdapter(ctx, rediscache.Config{
		Address:     redisConfig.Address,
		Username:    redisConfig.Username,
		Password:    redisConfig.Password,
		Database:    redisConfig.Database,
		Namespace:   redisConfig.Namespace,
		DialTimeout: redisConfig.DialTimeout,
		Eviction:    redisConfig.Eviction,
	})
	if err != nil {
		return nil, Config{}, err
	}

	config.Cache = adapter
	config.Runtime.Cache.Redis = redisConfig
	config.Logger.V(1).Info("initialized redis cache backend",
		"address", redisConfig.Address, "database", redisConfig.Database, "namespace", redisConfig.Namespace)
	return adapter.Close, config, nil
}
