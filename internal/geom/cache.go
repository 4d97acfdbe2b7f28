package geom

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheCapacity is the reference vertex-cost cap from spec.md
// §4.7: "a concrete reference cap of 100000 total vertices".
const DefaultCacheCapacity = 100000

type cacheEntry struct {
	key  string
	poly Polyhedron
	cost int
}

// Cache is the content-addressed, cost-weighted, LRU-evicted
// polyhedron cache of spec.md §4.7. Insert stores an owned entry;
// Lookup returns it directly — callers must not mutate a returned
// Polyhedron, since Polyhedron values are themselves treated as
// immutable once built (mirroring Polyset's immutability, spec.md §5).
//
// Lookup, Insert and Stats hold mu, so a cache may be shared between
// compilations (spec.md §5 "may share the polyhedron cache provided
// the cache's internal structure is guarded"). GetOrBuild coalesces
// concurrent builds of the same key with singleflight; plain Lookup
// and Insert calls are not coalesced, so two callers that both miss
// can each build the same polyhedron.
type Cache struct {
	mu       sync.Mutex
	capacity int
	cost     int
	items    map[string]*list.Element
	order    *list.List // front = most recently used

	group singleflight.Group

	hits   int64
	misses int64
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Lookup returns the cached polyhedron for key, if present, touching
// it as most-recently-used.
func (c *Cache) Lookup(key string) (Polyhedron, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(el)
	c.hits++
	return el.Value.(*cacheEntry).poly, true
}

// Insert stores poly under key with the given vertex cost. An
// oversize result (cost alone exceeds capacity) is dropped silently
// per spec.md §7 "Cache miss with oversize result". Eviction proceeds
// least-recently-used first until the new entry fits.
func (c *Cache) Insert(key string, poly Polyhedron, cost int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cost > c.capacity {
		return
	}
	if el, ok := c.items[key]; ok {
		c.cost -= el.Value.(*cacheEntry).cost
		c.order.Remove(el)
		delete(c.items, key)
	}
	for c.cost+cost > c.capacity && c.order.Len() > 0 {
		oldest := c.order.Back()
		entry := oldest.Value.(*cacheEntry)
		c.order.Remove(oldest)
		delete(c.items, entry.key)
		c.cost -= entry.cost
	}
	el := c.order.PushFront(&cacheEntry{key: key, poly: poly, cost: cost})
	c.items[key] = el
	c.cost += cost
}

// GetOrBuild performs the Lookup/build/Insert sequence of
// render_polyhedron's cache step atomically with respect to other
// callers racing on the same key: only one build runs, the rest
// observe its result.
func (c *Cache) GetOrBuild(key string, build func() (Polyhedron, int, error)) (Polyhedron, error) {
	if p, ok := c.Lookup(key); ok {
		return p, nil
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if p, ok := c.Lookup(key); ok {
			return p, nil
		}
		p, cost, err := build()
		if err != nil {
			return nil, err
		}
		c.Insert(key, p, cost)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Polyhedron), nil
}

// Stats summarizes current cache occupancy for diagnostics/CLI output.
type Stats struct {
	Count      int
	TotalCost  int
	Capacity   int
	Hits       int64
	Misses     int64
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Count:     c.order.Len(),
		TotalCost: c.cost,
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
	}
}

// String renders Stats with humanized vertex counts, used by the CLI
// --cache-stats surface.
func (s Stats) String() string {
	return fmt.Sprintf("polyhedra=%s cost=%s/%s hits=%s misses=%s",
		humanize.Comma(int64(s.Count)),
		humanize.Comma(int64(s.TotalCost)),
		humanize.Comma(int64(s.Capacity)),
		humanize.Comma(s.Hits),
		humanize.Comma(s.Misses))
}
