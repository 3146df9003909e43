package services

import (
	"context"
	"time"

	"homeinsight-listings/pkg/cache"
	"homeinsight-listings/pkg/logger"
	"homeinsight-listings/pkg/metrics"
)

// Invalidator drops cache entries after a committed store write and before
// the write is acknowledged. It never fails the write: a failed invalidation
// is logged and the stale entries age out at their ttl.
type Invalidator struct {
	cache   ReadThroughCache
	log     *logger.Logger
	timeout time.Duration
}

func NewInvalidator(c ReadThroughCache, log *logger.Logger, timeout time.Duration) *Invalidator {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Invalidator{cache: c, log: log, timeout: timeout}
}

// ListingsChanged drops every cached listing search.
func (i *Invalidator) ListingsChanged(ctx context.Context, reason string) {
	ctx, cancel := i.detach(ctx)
	defer cancel()
	if err := i.cache.InvalidateNamespace(ctx, cache.ListingQueryNamespace); err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("invalidator", "invalidate_namespace").Inc()
		i.log.Errorf("failed to invalidate %s after %s: %v", cache.ListingQueryNamespace, reason, err)
		return
	}
	i.log.Debugf("invalidated %s after %s", cache.ListingQueryNamespace, reason)
}

// FavoritesChanged drops the favorites list of each user.
func (i *Invalidator) FavoritesChanged(ctx context.Context, userIDs ...string) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, len(userIDs))
	for n, id := range userIDs {
		keys[n] = cache.EncodeScope(cache.ScopeFavorites, id)
	}
	ctx, cancel := i.detach(ctx)
	defer cancel()
	if err := i.cache.Invalidate(ctx, keys...); err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("invalidator", "invalidate").Inc()
		i.log.Errorf("failed to invalidate favorites of %d users: %v", len(keys), err)
	}
}

// detach keeps invalidation running when the client goes away after the
// write committed.
func (i *Invalidator) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), i.timeout)
}
