package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"homeinsight-listings/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	defaultOpTimeout      = 500 * time.Millisecond
	defaultComputeTimeout = 10 * time.Second
	sweepTimeout          = 30 * time.Second
)

// ReadThrough serves values from a Provider and falls back to a compute
// function on a miss, populating the cache with the result. A failing
// provider never fails a read: it is treated as a miss and logged.
type ReadThrough struct {
	provider       Provider
	log            *logger.Logger
	now            func() time.Time
	opTimeout      time.Duration
	computeTimeout time.Duration
	defaultTTL     time.Duration
	sweep          bool
	group          *singleflight.Group

	// at most one sweep runs at a time; Close waits on sweeps
	sweeping chan struct{}
	sweeps   sync.WaitGroup
}

type Option func(*ReadThrough)

// WithClock replaces time.Now for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(c *ReadThrough) { c.now = now }
}

// WithOpTimeout bounds every provider call. Zero disables the bound.
func WithOpTimeout(d time.Duration) Option {
	return func(c *ReadThrough) { c.opTimeout = d }
}

// WithSingleFlight collapses concurrent misses on the same key into one
// compute call.
func WithSingleFlight(enabled bool) Option {
	return func(c *ReadThrough) {
		if enabled {
			c.group = &singleflight.Group{}
		} else {
			c.group = nil
		}
	}
}

// WithComputeTimeout bounds a compute shared by collapsed callers. The shared
// call runs detached from any single caller's cancellation.
func WithComputeTimeout(d time.Duration) Option {
	return func(c *ReadThrough) { c.computeTimeout = d }
}

func WithLogger(log *logger.Logger) Option {
	return func(c *ReadThrough) { c.log = log }
}

// WithDefaultTTL is used when GetOrCompute is called with a non-positive ttl.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *ReadThrough) { c.defaultTTL = ttl }
}

// WithSweep makes InvalidateNamespace remove the keys of the retired
// generation when the provider is a PatternDeleter. The sweep runs in the
// background and is skipped while another one is still running.
func WithSweep(enabled bool) Option {
	return func(c *ReadThrough) { c.sweep = enabled }
}

func NewReadThrough(p Provider, opts ...Option) *ReadThrough {
	c := &ReadThrough{
		provider:       p,
		log:            logger.Default(),
		now:            time.Now,
		opTimeout:      defaultOpTimeout,
		computeTimeout: defaultComputeTimeout,
		defaultTTL:     time.Duration(DefaultTTLSeconds) * time.Second,
		sweeping:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultTTLSeconds is the entry lifetime when nothing else is configured.
const DefaultTTLSeconds = 3600

// GetOrCompute decodes the cached value under key into dest and reports a
// hit. On a miss it calls compute, stores its result for ttl and decodes the
// result into dest. Errors from compute are returned unchanged and nothing
// is cached.
func (c *ReadThrough) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (any, error), dest any) (bool, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if c.lookup(ctx, key, dest) {
		recordHit(key)
		return true, nil
	}
	recordMiss(key)

	load := func(ctx context.Context) (any, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode value for key %s: %w", key, err)
		}
		c.populate(ctx, key, data, ttl)
		return data, nil
	}

	var (
		res any
		err error
	)
	if c.group != nil {
		// followers share the leader's result, so the leader's cancellation
		// must not fail them
		res, err, _ = c.group.Do(key, func() (any, error) {
			lctx, cancel := c.sharedContext(ctx)
			defer cancel()
			return load(lctx)
		})
	} else {
		res, err = load(ctx)
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(res.([]byte), dest); err != nil {
		return false, fmt.Errorf("failed to decode value for key %s: %w", key, err)
	}
	return false, nil
}

func (c *ReadThrough) lookup(ctx context.Context, key string, dest any) bool {
	opCtx, cancel := c.opContext(ctx)
	raw, ok, err := c.provider.Get(opCtx, key)
	cancel()
	if err != nil {
		c.log.Warnf("cache get %s failed, reading through: %v", key, err)
		return false
	}
	if !ok {
		return false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.log.Warnf("discarding corrupt cache entry %s: %v", key, err)
		return false
	}
	if entry.IsExpiredAt(c.now()) {
		return false
	}
	if err := json.Unmarshal(entry.Data, dest); err != nil {
		c.log.Warnf("discarding undecodable cache entry %s: %v", key, err)
		return false
	}
	return true
}

func (c *ReadThrough) populate(ctx context.Context, key string, data []byte, ttl time.Duration) {
	now := c.now()
	raw, err := json.Marshal(Entry{Data: data, CachedAt: now, ExpiresAt: now.Add(ttl)})
	if err != nil {
		c.log.Warnf("failed to encode cache entry %s: %v", key, err)
		return
	}
	opCtx, cancel := c.opContext(ctx)
	defer cancel()
	if err := c.provider.Set(opCtx, key, raw, ttl); err != nil {
		c.log.Warnf("cache set %s failed: %v", key, err)
	}
}

// Invalidate removes keys. Absent keys are ignored.
func (c *ReadThrough) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	opCtx, cancel := c.opContext(ctx)
	defer cancel()
	if err := c.provider.Delete(opCtx, keys...); err != nil {
		return err
	}
	for _, key := range keys {
		recordInvalidation(keyLabel(key))
	}
	return nil
}

// NamespaceKey places key under the current generation of namespace,
// creating the first generation if none exists yet.
func (c *ReadThrough) NamespaceKey(ctx context.Context, namespace, key string) (string, error) {
	gen, ok, err := c.generation(ctx, namespace)
	if err != nil {
		return "", err
	}
	if !ok {
		gen, err = c.rotate(ctx, namespace)
		if err != nil {
			return "", err
		}
	}
	return generationKey(namespace, gen, key), nil
}

// InvalidateNamespace retires every key of namespace at once by rotating its
// generation. Keys of the old generation become unreachable immediately. When
// sweeping is enabled they are removed in the background, otherwise their TTL
// takes care of them.
func (c *ReadThrough) InvalidateNamespace(ctx context.Context, namespace string) error {
	old, hadOld, err := c.generation(ctx, namespace)
	if err != nil {
		c.log.Debugf("reading generation of %s before rotation: %v", namespace, err)
	}
	if _, err := c.rotate(ctx, namespace); err != nil {
		return err
	}
	recordInvalidation(namespace)

	if c.sweep && hadOld {
		c.startSweep(ctx, namespace, old)
	}
	return nil
}

func (c *ReadThrough) startSweep(ctx context.Context, namespace, gen string) {
	pd, ok := c.provider.(PatternDeleter)
	if !ok {
		return
	}
	select {
	case c.sweeping <- struct{}{}:
	default:
		c.log.Debugf("sweep already running, generation %s of %s left to expire", gen, namespace)
		return
	}

	c.sweeps.Add(1)
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sweepTimeout)
	go func() {
		defer c.sweeps.Done()
		defer func() { <-c.sweeping }()
		defer cancel()
		n, err := pd.DeletePattern(sctx, namespace+":"+gen+":*")
		if err != nil {
			c.log.Warnf("sweeping retired generation %s of %s failed: %v", gen, namespace, err)
			return
		}
		c.log.Debugf("swept %d keys of retired generation %s of %s", n, gen, namespace)
	}()
}

func (c *ReadThrough) generation(ctx context.Context, namespace string) (string, bool, error) {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()
	raw, ok, err := c.provider.Get(opCtx, NamespaceGenerationKey(namespace))
	if err != nil || !ok {
		return "", false, err
	}
	return string(raw), true, nil
}

func (c *ReadThrough) rotate(ctx context.Context, namespace string) (string, error) {
	gen := uuid.NewString()
	opCtx, cancel := c.opContext(ctx)
	defer cancel()
	if err := c.provider.Set(opCtx, NamespaceGenerationKey(namespace), []byte(gen), 0); err != nil {
		return "", err
	}
	return gen, nil
}

// Ping checks the provider.
func (c *ReadThrough) Ping(ctx context.Context) error {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()
	return c.provider.Ping(opCtx)
}

// Close waits for a running sweep and closes the provider.
func (c *ReadThrough) Close() error {
	c.sweeps.Wait()
	return c.provider.Close()
}

func (c *ReadThrough) sharedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if c.computeTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, c.computeTimeout)
}

func (c *ReadThrough) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opTimeout)
}
