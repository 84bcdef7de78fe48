package domain

import "time"

// Snapshot is one cached copy of the upstream market list. ExpiresAt is
// always derived from FetchedAt plus the configured TTL, never set
// independently, and FetchedAt doubles as the "last successful upstream
// call" timestamp the refresh policy keys off — storing them in one
// value is what makes their update atomic.
type Snapshot struct {
	Markets   []Market
	FetchedAt time.Time
	ExpiresAt time.Time
}

// NewSnapshot builds a Snapshot fetched at the given instant with the
// given TTL.
func NewSnapshot(markets []Market, fetchedAt time.Time, ttl time.Duration) Snapshot {
	return Snapshot{
		Markets:   markets,
		FetchedAt: fetchedAt,
		ExpiresAt: fetchedAt.Add(ttl),
	}
}

// Valid reports whether the snapshot is still within its TTL at now.
func (s *Snapshot) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// QueryResult is what the gateway hands back for one inbound request:
// the filtered markets plus cache/staleness metadata the caller can use
// to present degraded data honestly.
type QueryResult struct {
	Markets   []Market
	FetchedAt time.Time
	CacheHit  bool
	Warning   string
	Degraded  bool
}

// LookupResult is the persisted-variant counterpart of QueryResult. The
// payload is an opaque blob the gateway stores and serves but does not
// interpret.
type LookupResult struct {
	Payload   []byte
	FetchedAt time.Time
	CacheHit  bool
	Warning   string
	Degraded  bool
}
