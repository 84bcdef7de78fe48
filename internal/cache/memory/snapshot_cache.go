// Package memory implements the in-process snapshot cache used by the
// gateway. One canonical snapshot is held per cache key; writes replace
// the previous entry wholesale under a mutex, so readers never observe
// a half-written snapshot or a fetch timestamp that disagrees with the
// data it belongs to.
package memory

import (
	"sync"

	"github.com/Widell98/MarketMind-sub004/internal/domain"
)

// SnapshotCache is a mutex-guarded map of cache key to snapshot. The
// zero value is not usable; construct with NewSnapshotCache.
type SnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]domain.Snapshot
}

// NewSnapshotCache creates an empty SnapshotCache.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{
		entries: make(map[string]domain.Snapshot),
	}
}

// Read returns the snapshot stored under key, if any.
func (c *SnapshotCache) Read(key string) (domain.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.entries[key]
	return snap, ok
}

// Write replaces the snapshot stored under key. The old value is fully
// superseded in one step.
func (c *SnapshotCache) Write(key string, snap domain.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = snap
}

// Compile-time interface check.
var _ domain.SnapshotCache = (*SnapshotCache)(nil)
