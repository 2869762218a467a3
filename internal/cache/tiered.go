package cache

import (
	"log/slog"
	"time"

	"github.com/ferro-labs/gnews-mcp/internal/gnews"
	"github.com/ferro-labs/gnews-mcp/internal/metrics"
)

// Tiered consults the in-memory tier first and falls back to the
// persistent tier when one is configured. A persistent-tier hit is promoted
// into the memory tier so subsequent lookups avoid the database round trip.
//
// Persistent-tier failures degrade to a miss (on read) or a dropped write;
// they are logged but never surfaced to the tool caller.
type Tiered struct {
	name       string
	memory     *Memory
	persistent PersistentStore // nil when the persistent tier is disabled
	ttl        time.Duration
}

// NewTiered composes the cache tiers for one tool. name labels log lines
// and metrics. persistent may be nil, degrading to memory-only caching.
func NewTiered(name string, memory *Memory, persistent PersistentStore, ttl time.Duration) *Tiered {
	return &Tiered{
		name:       name,
		memory:     memory,
		persistent: persistent,
		ttl:        ttl,
	}
}

// Get implements Store.
func (t *Tiered) Get(key string) (*gnews.Envelope, bool) {
	if env, ok := t.memory.Get(key); ok {
		metrics.CacheHits.WithLabelValues(t.name, "memory").Inc()
		return env, true
	}

	if t.persistent != nil {
		env, remaining, ok, err := t.persistent.Get(key)
		if err != nil {
			slog.Warn("persistent cache read failed, treating as miss",
				"cache", t.name, "error", err)
		} else if ok {
			// Promote with the remaining lifetime, not a fresh TTL: the
			// in-memory copy must expire when the stored row does.
			t.memory.SetWithTTL(key, env, remaining)
			metrics.CacheHits.WithLabelValues(t.name, "persistent").Inc()
			return env, true
		}
	}

	metrics.CacheMisses.WithLabelValues(t.name).Inc()
	return nil, false
}

// Set implements Store, writing through to both tiers.
func (t *Tiered) Set(key string, env *gnews.Envelope) {
	t.memory.Set(key, env)

	if t.persistent != nil {
		if err := t.persistent.Set(key, env, t.ttl); err != nil {
			slog.Warn("persistent cache write failed",
				"cache", t.name, "error", err)
		}
	}
}

// Close releases the persistent tier, if any. The memory tier needs no
// teardown.
func (t *Tiered) Close() error {
	if t.persistent != nil {
		return t.persistent.Close()
	}
	return nil
}
