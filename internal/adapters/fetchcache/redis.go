package fetchcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

const redisKeyPrefix = "rpa:dataset:"

// RedisConfig holds connection settings for the shared dataset cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// RedisCache stores raw dataset bytes in Redis with a TTL so several
// machines can share one scrape per city.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Load writes the cached bytes for key to path.
func (c *RedisCache) Load(ctx context.Context, key, path string) (domain.FetchedDataset, bool, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.FetchedDataset{}, false, nil
	}
	if err != nil {
		return domain.FetchedDataset{}, false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return domain.FetchedDataset{}, false, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return domain.FetchedDataset{}, false, err
	}
	return domain.FetchedDataset{Path: path, FetchedAt: time.Now()}, true, nil
}

// Store uploads the dataset file under key.
func (c *RedisCache) Store(ctx context.Context, key string, ds domain.FetchedDataset) error {
	data, err := os.ReadFile(ds.Path)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err()
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
