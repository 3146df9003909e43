package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

const memoryProviderName = "memory"

var errClosed = errors.New("provider closed")

// MemoryProvider is an in-process Provider backed by ristretto. Each entry
// costs 1, so maxEntries bounds the number of keys held.
type MemoryProvider struct {
	rc     *ristretto.Cache[string, []byte]
	closed atomic.Bool
}

func NewMemoryProvider(maxEntries int64) (*MemoryProvider, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("memory cache size must be positive, got %d", maxEntries)
	}
	rc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryProvider{rc: rc}, nil
}

func (m *MemoryProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	if m.closed.Load() {
		observe(memoryProviderName, "get", start, errClosed)
		return nil, false, NewCacheError("get", errClosed, false)
	}
	v, ok := m.rc.Get(key)
	observe(memoryProviderName, "get", start, nil)
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (m *MemoryProvider) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	start := time.Now()
	if m.closed.Load() {
		observe(memoryProviderName, "set", start, errClosed)
		return NewCacheError("set", errClosed, false)
	}
	m.rc.SetWithTTL(key, bytes.Clone(val), 1, ttl)
	m.rc.Wait()
	observe(memoryProviderName, "set", start, nil)
	return nil
}

func (m *MemoryProvider) Delete(_ context.Context, keys ...string) error {
	start := time.Now()
	if m.closed.Load() {
		observe(memoryProviderName, "delete", start, errClosed)
		return NewCacheError("delete", errClosed, false)
	}
	for _, key := range keys {
		m.rc.Del(key)
	}
	m.rc.Wait()
	observe(memoryProviderName, "delete", start, nil)
	return nil
}

func (m *MemoryProvider) Ping(context.Context) error {
	if m.closed.Load() {
		return NewCacheError("ping", errClosed, false)
	}
	return nil
}

func (m *MemoryProvider) Close() error {
	if m.closed.CompareAndSwap(false, true) {
		m.rc.Close()
	}
	return nil
}
