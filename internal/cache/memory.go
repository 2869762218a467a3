package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/ferro-labs/gnews-mcp/internal/gnews"
)

type memoryEntry struct {
	key       string
	envelope  *gnews.Envelope
	expiresAt time.Time
}

// Memory is a thread-safe in-memory LRU cache with TTL expiration. It is
// the first tier consulted on every lookup.
type Memory struct {
	mu        sync.Mutex
	capacity  int
	ttl       time.Duration
	clock     clock.Clock
	items     map[string]*list.Element
	evictList *list.List
}

// NewMemory creates an in-memory cache holding at most capacity entries,
// each valid for ttl after insertion.
func NewMemory(capacity int, ttl time.Duration) *Memory {
	return NewMemoryWithClock(capacity, ttl, clock.New())
}

// NewMemoryWithClock is NewMemory with an injectable clock, used by tests
// to step time across TTL boundaries.
func NewMemoryWithClock(capacity int, ttl time.Duration, clk clock.Clock) *Memory {
	return &Memory{
		capacity:  capacity,
		ttl:       ttl,
		clock:     clk,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// Get returns the cached envelope for key, or false if missing or expired.
// Expired entries are removed on the spot.
func (m *Memory) Get(key string) (*gnews.Envelope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*memoryEntry)
	if !m.clock.Now().Before(entry.expiresAt) {
		m.removeElement(elem)
		return nil, false
	}

	m.evictList.MoveToFront(elem)
	return entry.envelope, true
}

// Set stores an envelope with the configured TTL, replacing any prior entry
// under the same key. The least recently used entry is evicted when the
// cache is full.
func (m *Memory) Set(key string, env *gnews.Envelope) {
	m.SetWithTTL(key, env, m.ttl)
}

// SetWithTTL stores an envelope with an explicit TTL, used when promoting a
// persistent-tier hit so the copy expires when the original row does rather
// than a full TTL later.
func (m *Memory) SetWithTTL(key string, env *gnews.Envelope, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[key]; ok {
		m.evictList.MoveToFront(elem)
		entry := elem.Value.(*memoryEntry)
		entry.envelope = env
		entry.expiresAt = m.clock.Now().Add(ttl)
		return
	}

	if m.evictList.Len() >= m.capacity {
		m.removeOldest()
	}

	entry := &memoryEntry{
		key:       key,
		envelope:  env,
		expiresAt: m.clock.Now().Add(ttl),
	}
	elem := m.evictList.PushFront(entry)
	m.items[key] = elem
}

// Len returns the number of entries currently held, including any that have
// expired but not yet been looked up.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evictList.Len()
}

// Clear removes all entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]*list.Element)
	m.evictList.Init()
}

func (m *Memory) removeOldest() {
	elem := m.evictList.Back()
	if elem != nil {
		m.removeElement(elem)
	}
}

func (m *Memory) removeElement(elem *list.Element) {
	m.evictList.Remove(elem)
	entry := elem.Value.(*memoryEntry)
	delete(m.items, entry.key)
}
