package domain

import (
	"context"
	"time"
)

// SnapshotCache holds one canonical snapshot per cache key. Write
// replaces the previous entry atomically; readers never observe a
// half-written snapshot.
type SnapshotCache interface {
	Read(key string) (Snapshot, bool)
	Write(key string, snap Snapshot)
}

// CachedResponse is one row of the persisted response cache.
type CachedResponse struct {
	Key       string
	Payload   []byte
	FetchedAt time.Time
	ExpiresAt time.Time
}

// Valid reports whether the row is still within its stored TTL at now.
func (r *CachedResponse) Valid(now time.Time) bool {
	return now.Before(r.ExpiresAt)
}

// ResponseCacheStore is the persisted twin of SnapshotCache: a
// key-value table keyed by an opaque hash, holding the full provider
// payload as a blob plus an explicit expiry. It is the only gateway
// state that survives process restarts.
type ResponseCacheStore interface {
	Get(ctx context.Context, key string) (CachedResponse, error)
	Put(ctx context.Context, row CachedResponse) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RateLimiter provides per-client request limiting at the HTTP
// perimeter.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
