package services

import (
	"context"
	"time"
)

// ReadThroughCache is the part of the cache the services depend on.
// *cache.ReadThrough implements it.
type ReadThroughCache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (any, error), dest any) (bool, error)
	Invalidate(ctx context.Context, keys ...string) error
	NamespaceKey(ctx context.Context, namespace, key string) (string, error)
	InvalidateNamespace(ctx context.Context, namespace string) error
}
