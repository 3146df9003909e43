// Package cachetest provides an in-memory cache provider with failure
// injection for tests.
package cachetest

import (
	"context"
	"errors"
	"path"
	"sort"
	"sync"
	"time"
)

// ErrInjected is returned by every operation while the provider is failing.
var ErrInjected = errors.New("cachetest: injected failure")

// Provider is a map-backed cache provider. TTLs are recorded but never
// enforced; freshness is left to the caller's clock.
type Provider struct {
	mu      sync.RWMutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	failing bool

	gets    int
	sets    int
	deletes int
}

func New() *Provider {
	return &Provider{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

// Fail makes every subsequent operation return ErrInjected until Recover.
func (p *Provider) Fail() {
	p.mu.Lock()
	p.failing = true
	p.mu.Unlock()
}

func (p *Provider) Recover() {
	p.mu.Lock()
	p.failing = false
	p.mu.Unlock()
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gets++
	if p.failing {
		return nil, false, ErrInjected
	}
	v, ok := p.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (p *Provider) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sets++
	if p.failing {
		return ErrInjected
	}
	p.data[key] = append([]byte(nil), val...)
	p.ttls[key] = ttl
	return nil
}

func (p *Provider) Delete(_ context.Context, keys ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletes++
	if p.failing {
		return ErrInjected
	}
	for _, k := range keys {
		delete(p.data, k)
		delete(p.ttls, k)
	}
	return nil
}

// DeletePattern removes keys matching a glob pattern.
func (p *Provider) DeletePattern(_ context.Context, pattern string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing {
		return 0, ErrInjected
	}
	var n int64
	for k := range p.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(p.data, k)
			delete(p.ttls, k)
			n++
		}
	}
	return n, nil
}

func (p *Provider) Ping(context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.failing {
		return ErrInjected
	}
	return nil
}

func (p *Provider) Close() error { return nil }

// Keys returns every stored key in sorted order.
func (p *Provider) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.data))
	for k := range p.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is stored.
func (p *Provider) Has(key string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.data[key]
	return ok
}

// TTL returns the ttl key was last stored with.
func (p *Provider) TTL(key string) time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ttls[key]
}

// Put stores raw bytes under key without counting a Set.
func (p *Provider) Put(key string, val []byte) {
	p.mu.Lock()
	p.data[key] = val
	p.mu.Unlock()
}

// Counts returns the Get, Set and Delete call counts.
func (p *Provider) Counts() (gets, sets, deletes int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gets, p.sets, p.deletes
}
