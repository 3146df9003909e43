package cache

import (
	"time"

	"homeinsight-listings/pkg/metrics"
)

// observe records the duration of a provider operation and counts it as a
// failure when err is non-nil.
func observe(provider, operation string, start time.Time, err error) {
	metrics.CacheOperationDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CacheErrorsTotal.WithLabelValues(provider, operation).Inc()
	}
}

func recordHit(key string) {
	metrics.CacheHitsTotal.WithLabelValues(keyLabel(key)).Inc()
}

func recordMiss(key string) {
	metrics.CacheMissesTotal.WithLabelValues(keyLabel(key)).Inc()
}

func recordInvalidation(label string) {
	metrics.CacheInvalidationsTotal.WithLabelValues(label).Inc()
}
