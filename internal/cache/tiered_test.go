package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/facebookgo/clock"

	"github.com/ferro-labs/gnews-mcp/internal/gnews"
)

type fakeEntry struct {
	env       *gnews.Envelope
	remaining time.Duration
}

// fakePersistent records calls and can be forced to fail.
type fakePersistent struct {
	entries map[string]fakeEntry
	gets    int
	sets    int
	failGet bool
	failSet bool
	closed  bool
	lastTTL time.Duration
}

func newFakePersistent() *fakePersistent {
	return &fakePersistent{entries: map[string]fakeEntry{}}
}

func (f *fakePersistent) put(key string, env *gnews.Envelope, remaining time.Duration) {
	f.entries[key] = fakeEntry{env: env, remaining: remaining}
}

func (f *fakePersistent) Get(key string) (*gnews.Envelope, time.Duration, bool, error) {
	f.gets++
	if f.failGet {
		return nil, 0, false, errors.New("disk unavailable")
	}
	entry, ok := f.entries[key]
	if !ok {
		return nil, 0, false, nil
	}
	return entry.env, entry.remaining, true, nil
}

func (f *fakePersistent) Set(key string, env *gnews.Envelope, ttl time.Duration) error {
	f.sets++
	f.lastTTL = ttl
	if f.failSet {
		return errors.New("disk full")
	}
	f.entries[key] = fakeEntry{env: env, remaining: ttl}
	return nil
}

func (f *fakePersistent) Close() error {
	f.closed = true
	return nil
}

func TestTiered_MemoryHitSkipsPersistent(t *testing.T) {
	persistent := newFakePersistent()
	c := NewTiered("search_news", NewMemory(10, time.Minute), persistent, time.Minute)

	c.Set("fp1", envelope(1))
	if _, ok := c.Get("fp1"); !ok {
		t.Fatal("expected hit")
	}
	if persistent.gets != 0 {
		t.Errorf("expected persistent tier untouched on memory hit, gets=%d", persistent.gets)
	}
}

func TestTiered_PersistentHitPromotes(t *testing.T) {
	persistent := newFakePersistent()
	persistent.put("fp1", envelope(5), time.Minute)

	// Fresh memory tier simulates a restarted process.
	c := NewTiered("search_news", NewMemory(10, time.Minute), persistent, time.Minute)

	got, ok := c.Get("fp1")
	if !ok {
		t.Fatal("expected persistent-tier hit")
	}
	if got.Total != 5 {
		t.Errorf("unexpected envelope: %+v", got)
	}
	if persistent.gets != 1 {
		t.Fatalf("expected one persistent read, got %d", persistent.gets)
	}

	// The hit was promoted: a second lookup stays in memory.
	if _, ok := c.Get("fp1"); !ok {
		t.Fatal("expected memory hit after promotion")
	}
	if persistent.gets != 1 {
		t.Errorf("expected promotion to avoid further persistent reads, gets=%d", persistent.gets)
	}
}

func TestTiered_PromotionKeepsOriginalExpiry(t *testing.T) {
	mock := clock.NewMock()
	persistent := newFakePersistent()
	// A row written 9m59s ago under a 10m TTL has one second left.
	persistent.put("fp1", envelope(1), time.Second)

	c := NewTiered("search_news",
		NewMemoryWithClock(10, 10*time.Minute, mock), persistent, 10*time.Minute)

	if _, ok := c.Get("fp1"); !ok {
		t.Fatal("expected persistent-tier hit")
	}

	// Past the row's original expiry the promoted copy must be gone too,
	// even though the memory tier's own TTL is far longer.
	mock.Add(2 * time.Second)
	delete(persistent.entries, "fp1")
	if _, ok := c.Get("fp1"); ok {
		t.Fatal("promoted copy served past the persistent row's expiry")
	}
	if persistent.gets != 2 {
		t.Errorf("expected the expired lookup to fall through to the persistent tier, gets=%d", persistent.gets)
	}
}

func TestTiered_MissInBothTiers(t *testing.T) {
	c := NewTiered("search_news", NewMemory(10, time.Minute), newFakePersistent(), time.Minute)
	if _, ok := c.Get("absent"); ok {
		t.Error("expected overall miss")
	}
}

func TestTiered_PersistentReadErrorDegradesToMiss(t *testing.T) {
	persistent := newFakePersistent()
	persistent.put("fp1", envelope(1), time.Minute)
	persistent.failGet = true

	c := NewTiered("search_news", NewMemory(10, time.Minute), persistent, time.Minute)
	if _, ok := c.Get("fp1"); ok {
		t.Error("expected read error to degrade to a miss")
	}
}

func TestTiered_SetWritesBothTiers(t *testing.T) {
	persistent := newFakePersistent()
	ttl := 10 * time.Minute
	c := NewTiered("search_news", NewMemory(10, ttl), persistent, ttl)

	c.Set("fp1", envelope(1))

	if persistent.sets != 1 {
		t.Fatalf("expected one persistent write, got %d", persistent.sets)
	}
	if persistent.lastTTL != ttl {
		t.Errorf("expected configured TTL %v, got %v", ttl, persistent.lastTTL)
	}
}

func TestTiered_PersistentWriteErrorIgnored(t *testing.T) {
	persistent := newFakePersistent()
	persistent.failSet = true

	c := NewTiered("search_news", NewMemory(10, time.Minute), persistent, time.Minute)
	c.Set("fp1", envelope(1))

	// The memory tier still serves the entry.
	if _, ok := c.Get("fp1"); !ok {
		t.Error("expected memory hit despite persistent write failure")
	}
}

func TestTiered_MemoryOnly(t *testing.T) {
	c := NewTiered("top_headlines", NewMemory(10, time.Minute), nil, time.Minute)

	c.Set("fp1", envelope(1))
	if _, ok := c.Get("fp1"); !ok {
		t.Error("expected hit with no persistent tier configured")
	}
	if err := c.Close(); err != nil {
		t.Errorf("expected nil Close with no persistent tier, got %v", err)
	}
}

func TestTiered_CloseReleasesPersistent(t *testing.T) {
	persistent := newFakePersistent()
	c := NewTiered("search_news", NewMemory(10, time.Minute), persistent, time.Minute)

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !persistent.closed {
		t.Error("expected persistent tier to be closed")
	}
}
