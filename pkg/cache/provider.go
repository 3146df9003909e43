package cache

import (
	"context"
	"fmt"
	"time"

	"homeinsight-listings/pkg/config"
	"homeinsight-listings/pkg/logger"
)

// NewProvider builds the Provider selected by cfg.Cache.Provider.
func NewProvider(cfg *config.Config, log *logger.Logger) (Provider, error) {
	switch cfg.Cache.Provider {
	case config.CacheProviderRedis:
		return NewRedisProvider(cfg, log)
	case config.CacheProviderMemory:
		log.Printf("Using in-memory cache (max %d entries)", cfg.Cache.MemoryMaxEntries)
		return NewMemoryProvider(cfg.Cache.MemoryMaxEntries)
	case config.CacheProviderNone:
		log.Warnf("Caching disabled, every read goes to the store")
		return NoopProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown cache provider %q", cfg.Cache.Provider)
	}
}

// New wires a ReadThrough over the configured provider.
func New(cfg *config.Config, log *logger.Logger) (*ReadThrough, error) {
	p, err := NewProvider(cfg, log)
	if err != nil {
		return nil, err
	}
	return NewReadThrough(p,
		WithLogger(log),
		WithDefaultTTL(cfg.CacheTTL()),
		WithOpTimeout(cfg.CacheOpTimeout()),
		WithSingleFlight(cfg.Cache.SingleFlight),
		WithComputeTimeout(2*cfg.DatabaseTimeout()),
		WithSweep(cfg.Cache.SweepOnInvalidate),
	), nil
}

// NoopProvider never stores anything: every Get is a miss.
type NoopProvider struct{}

func (NoopProvider) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopProvider) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopProvider) Delete(context.Context, ...string) error { return nil }

func (NoopProvider) Ping(context.Context) error { return nil }

func (NoopProvider) Close() error { return nil }
