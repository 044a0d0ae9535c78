package calendar

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// CacheEntry is a stored Result together with when and how it was produced.
type CacheEntry struct {
	Result    Result    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
	Source    Source    `json:"source"`
}

// Freshness holds the time-to-live applied to cache entries. Mock entries use
// their own, shorter TTL; zero means they are never served from cache.
type Freshness struct {
	TTL     time.Duration
	MockTTL time.Duration
}

// TTLFor returns the time-to-live for entries produced by source.
func (f Freshness) TTLFor(source Source) time.Duration {
	if source.Authoritative() {
		return f.TTL
	}
	return f.MockTTL
}

// Fresh reports whether the entry is still valid at now.
func (e CacheEntry) Fresh(now time.Time, f Freshness) bool {
	return now.Sub(e.CreatedAt) < f.TTLFor(e.Source)
}

// CacheKey derives the storage key for a queried identity. The identity is
// hashed as-is, so keys are case-sensitive.
func CacheKey(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:])
}
