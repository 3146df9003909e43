package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"homeinsight-listings/pkg/config"
	"homeinsight-listings/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const (
	redisProviderName = "redis"
	sweepBatchSize    = 500
)

// RedisProvider is the production Provider backed by a single Redis node.
type RedisProvider struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisProvider dials Redis from cfg and verifies the connection with a
// PING before returning.
func NewRedisProvider(cfg *config.Config, log *logger.Logger) (*RedisProvider, error) {
	var tlsConfig *tls.Config
	if cfg.Redis.TLSEnabled {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		if cfg.Redis.TLSCertFile != "" {
			cert, err := tls.LoadX509KeyPair(cfg.Redis.TLSCertFile, cfg.Redis.TLSKeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load TLS certificate: %v", err)
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Username:     cfg.Redis.Username,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		TLSConfig:    tlsConfig,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	p := NewRedisProviderFromClient(client, log)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	log.Printf("Redis connected successfully at %s", cfg.RedisAddr())
	return p, nil
}

// NewRedisProviderFromClient wraps an existing client.
func NewRedisProviderFromClient(client *redis.Client, log *logger.Logger) *RedisProvider {
	return &RedisProvider{client: client, log: log}
}

func (p *RedisProvider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	val, err := p.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observe(redisProviderName, "get", start, nil)
		return nil, false, nil
	}
	observe(redisProviderName, "get", start, err)
	if err != nil {
		return nil, false, NewCacheError("get", err, true)
	}
	return val, true, nil
}

func (p *RedisProvider) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	start := time.Now()
	err := p.client.Set(ctx, key, val, ttl).Err()
	observe(redisProviderName, "set", start, err)
	if err != nil {
		return NewCacheError("set", err, true)
	}
	return nil
}

func (p *RedisProvider) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	start := time.Now()
	err := p.client.Del(ctx, keys...).Err()
	observe(redisProviderName, "delete", start, err)
	if err != nil {
		return NewCacheError("delete", err, true)
	}
	return nil
}

// DeletePattern walks the keyspace with SCAN and unlinks matching keys in
// batches, so Redis keeps serving other clients between round trips. It
// returns how many keys were unlinked, also when it fails part way.
func (p *RedisProvider) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	start := time.Now()
	n, err := p.unlinkMatching(ctx, pattern)
	observe(redisProviderName, "delete_pattern", start, err)
	if err != nil {
		return n, NewCacheError("delete_pattern", err, true)
	}
	return n, nil
}

func (p *RedisProvider) unlinkMatching(ctx context.Context, pattern string) (int64, error) {
	var removed int64
	batch := make([]string, 0, sweepBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := p.client.Unlink(ctx, batch...).Result()
		removed += n
		batch = batch[:0]
		return err
	}

	iter := p.client.Scan(ctx, 0, pattern, sweepBatchSize).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == sweepBatchSize {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, flush()
}

func (p *RedisProvider) Ping(ctx context.Context) error {
	start := time.Now()
	err := p.client.Ping(ctx).Err()
	observe(redisProviderName, "ping", start, err)
	if err != nil {
		return NewCacheError("ping", err, true)
	}
	return nil
}

func (p *RedisProvider) Close() error {
	if err := p.client.Close(); err != nil {
		p.log.Errorf("error closing Redis: %v", err)
		return err
	}
	p.log.Println("Redis connection closed")
	return nil
}
