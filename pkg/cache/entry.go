package cache

import (
	"encoding/json"
	"time"
)

// Entry is the envelope stored for every read-through value.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	CachedAt  time.Time       `json:"cached_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// IsExpiredAt reports whether the entry is stale at now.
func (e *Entry) IsExpiredAt(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
