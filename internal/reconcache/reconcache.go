// Package reconcache implements the bounded LRU reconstruction cache
// (tier 2 of the read path): a (polygon id, time) -> point list cache
// with least-recently-used eviction and a reverse index for O(k)
// per-polygon invalidation. Modeled on the teacher's MVT tile cache
// (internal/geospatial/tilecache.go), generalized from a TTL-expiring
// string-keyed cache to a pure-LRU cache keyed by (polygon id, time),
// with the doubly-linked-list-plus-map shape spec §4.6 requires instead
// of the teacher's slice-based LRU order.
package reconcache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/temporal-polygon/internal/temporal"
)

// DefaultCapacity is the cache size used when none is configured.
const DefaultCapacity = 100

// Key identifies one cached reconstruction.
type Key struct {
	PolygonID uuid.UUID
	Time      int64 // UnixNano
}

type entry struct {
	key    Key
	points []temporal.Point
}

// Cache is a bounded (polygon id, time) -> []Point LRU cache. Reads move
// the backing list node to the tail; writes insert at the tail and evict
// the head on overflow. A reverse index keyed by polygon id enables
// Invalidate to drop only the entries belonging to one polygon without a
// full flush (spec §4.6).
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	index    map[Key]*list.Element
	reverse  map[uuid.UUID]map[Key]struct{}

	hits   atomic.Int64
	misses atomic.Int64
}

// New constructs a Cache with the given capacity. capacity <= 0 falls
// back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[Key]*list.Element),
		reverse:  make(map[uuid.UUID]map[Key]struct{}),
	}
}

// Get returns a copy of the cached reconstruction for (pid, t), moving
// it to the most-recently-used position on a hit.
func (c *Cache) Get(pid uuid.UUID, t time.Time) ([]temporal.Point, bool) {
	key := Key{PolygonID: pid, Time: t.UnixNano()}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.ll.MoveToBack(el)
	c.hits.Add(1)
	e := el.Value.(*entry)
	return append([]temporal.Point(nil), e.points...), true
}

// Put inserts a reconstruction for (pid, t), evicting the
// least-recently-used entry if the cache is at capacity.
func (c *Cache) Put(pid uuid.UUID, t time.Time, points []temporal.Point) {
	key := Key{PolygonID: pid, Time: t.UnixNano()}
	stored := append([]temporal.Point(nil), points...)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		el.Value.(*entry).points = stored
		c.ll.MoveToBack(el)
		return
	}

	for c.ll.Len() >= c.capacity {
		c.evictOldestLocked()
	}

	el := c.ll.PushBack(&entry{key: key, points: stored})
	c.index[key] = el
	c.addReverseLocked(pid, key)
}

func (c *Cache) evictOldestLocked() {
	front := c.ll.Front()
	if front == nil {
		return
	}
	e := front.Value.(*entry)
	c.ll.Remove(front)
	delete(c.index, e.key)
	c.removeReverseLocked(e.key.PolygonID, e.key)
}

func (c *Cache) addReverseLocked(pid uuid.UUID, key Key) {
	if c.reverse[pid] == nil {
		c.reverse[pid] = make(map[Key]struct{})
	}
	c.reverse[pid][key] = struct{}{}
}

func (c *Cache) removeReverseLocked(pid uuid.UUID, key Key) {
	if m := c.reverse[pid]; m != nil {
		delete(m, key)
		if len(m) == 0 {
			delete(c.reverse, pid)
		}
	}
}

// Invalidate removes every cached entry belonging to pid in O(k) time,
// k being the number of entries cached for that polygon. Entries for
// other polygons are untouched (spec §4.6).
func (c *Cache) Invalidate(pid uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.reverse[pid]
	for key := range keys {
		if el, ok := c.index[key]; ok {
			c.ll.Remove(el)
			delete(c.index, key)
		}
	}
	delete(c.reverse, pid)
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats reports cache hit/miss/entry counts, the same shape as the
// teacher's TileCache.Stats().
type Stats struct {
	Entries    int
	MaxEntries int
	Hits       int64
	Misses     int64
	HitRate    float64
}

// Stats returns current cache performance statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	entries := c.ll.Len()
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Entries:    entries,
		MaxEntries: c.capacity,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}
