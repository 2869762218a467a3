// Package cache implements the two-tier response cache that sits in front
// of the GNews client: a thread-safe in-memory LRU with TTL expiration,
// and an optional SQL-backed persistent tier that survives process
// restarts. Tiered composes the two with read-through promotion.
//
// Entries are keyed by Fingerprint, a deterministic digest of the endpoint
// and its normalized parameters. Expired entries are treated as absent and
// removed lazily on lookup. Fetch failures are never stored.
package cache

import (
	"time"

	"github.com/ferro-labs/gnews-mcp/internal/gnews"
)

// Store is the lookup contract consumed by the tool handlers. A miss on a
// cold or empty cache is a normal result, never an error.
type Store interface {
	Get(key string) (*gnews.Envelope, bool)
	Set(key string, env *gnews.Envelope)
}

// PersistentStore is a durable second tier. Unlike Store, its operations
// can fail (disk, database); callers treat a failed read as a miss and a
// failed write as a no-op. Get reports the entry's remaining lifetime so a
// promoted in-memory copy expires no later than the stored row does.
type PersistentStore interface {
	Get(key string) (*gnews.Envelope, time.Duration, bool, error)
	Set(key string, env *gnews.Envelope, ttl time.Duration) error
	Close() error
}
