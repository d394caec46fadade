// Package rcache implements the TTL-scoped answer cache the pipeline
// driver consults between the filter and upstream lookup stages.
package rcache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/donos-project/donosd/internal/helpers"
	"github.com/donos-project/donosd/internal/wire"
)

// Key identifies a cache entry by lowercased name and query type.
type Key struct {
	Name string
	Type wire.QType
}

func newKey(name string, qtype wire.QType) Key {
	return Key{Name: strings.ToLower(name), Type: qtype}
}

// entry holds a cached answer set, its absolute expiry deadline, and its
// position in the LRU list.
type entry struct {
	key     Key
	records []wire.Record
	expires time.Time
	elem    *list.Element
}

// Cache is a thread-safe, capacity-bounded, TTL-scoped mapping from
// (name, qtype) to answer records. Eviction on capacity overflow is LRU;
// strict TTL ordering is not required.
//
// One entry shape: a single deadline and records slice per key, with no
// negative-cache subtype or per-type TTL caps.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	lru        *list.List
	data       map[Key]*entry

	now func() time.Time // overridable for tests
}

// New creates a cache bounded to maxEntries. maxEntries <= 0 is treated as 1.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Cache{
		maxEntries: maxEntries,
		lru:        list.New(),
		data:       make(map[Key]*entry),
		now:        time.Now,
	}
}

// Get returns the cached records for (name, qtype), with each record's
// TTL rewritten to the number of whole seconds remaining until expiry.
// An entry found past its deadline is evicted and reported as a miss.
func (c *Cache) Get(name string, qtype wire.QType) ([]wire.Record, bool) {
	key := newKey(name, qtype)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok {
		return nil, false
	}

	if !e.expires.After(now) {
		c.evict(key, e)
		return nil, false
	}

	c.lru.MoveToBack(e.elem)

	remaining := helpers.ClampIntToUint32(int(e.expires.Sub(now).Seconds()))
	out := make([]wire.Record, len(e.records))
	for i, r := range e.records {
		out[i] = r.WithTTL(remaining)
	}
	return out, true
}

// Put inserts records under (name, qtype). The entry's deadline is now
// plus the minimum TTL across records. An empty records slice is a no-op:
// there is nothing with a TTL to derive a deadline from.
func (c *Cache) Put(name string, qtype wire.QType, records []wire.Record) {
	if len(records) == 0 {
		return
	}

	minTTL := records[0].TTL
	for _, r := range records[1:] {
		if r.TTL < minTTL {
			minTTL = r.TTL
		}
	}

	key := newKey(name, qtype)
	expires := c.now().Add(time.Duration(minTTL) * time.Second)

	stored := make([]wire.Record, len(records))
	copy(stored, records)

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.data[key]; ok {
		existing.records = stored
		existing.expires = expires
		c.lru.MoveToBack(existing.elem)
		return
	}

	e := &entry{key: key, records: stored, expires: expires}
	e.elem = c.lru.PushBack(key)
	c.data[key] = e

	c.evictOverflow()
}

// evict removes a single entry, assumed to already be under the lock.
func (c *Cache) evict(key Key, e *entry) {
	c.lru.Remove(e.elem)
	delete(c.data, key)
}

// evictOverflow removes least-recently-used entries until the cache is
// back under its configured capacity.
func (c *Cache) evictOverflow() {
	for len(c.data) > c.maxEntries {
		front := c.lru.Front()
		if front == nil {
			return
		}
		key := front.Value.(Key)
		c.lru.Remove(front)
		delete(c.data, key)
	}
}

// Len returns the current number of live entries, including ones that
// have expired but have not yet been read (and so not yet evicted).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
