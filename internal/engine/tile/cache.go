package tile

import (
	"container/list"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// Key is the logical identity of a quadtree tile.
type Key struct {
	LOD uint8
	X   uint32
	Y   uint32
}

// String formats the key as lod/x/y.
func (k Key) String() string {
	return fmt.Sprintf("%d/%d/%d", k.LOD, k.X, k.Y)
}

// PopulateFunc fills a tile's slice with content for the key being loaded.
type PopulateFunc func(t *Tile)

// Stats counts cache activity since creation.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// entry is one resident tile. The tile is borrowed from the pool.
type entry struct {
	key  Key
	tile *Tile
}

// Cache maps tile keys to pool slots with least-recently-used eviction.
// The lru list and the index always hold the same entries; the front of the
// list is the most recently accessed one.
type Cache struct {
	pool  *Pool
	lru   *list.List // of *entry
	index map[Key]*list.Element
	stats Stats
}

// NewCache creates an empty cache drawing slots from pool.
func NewCache(pool *Pool) *Cache {
	return &Cache{
		pool:  pool,
		lru:   list.New(),
		index: make(map[Key]*list.Element, pool.Capacity()),
	}
}

// GetOrLoad returns the tile resident for key. On a hit populate is not
// called. On a miss a free slot is acquired, or the least recently used
// entry is evicted and its slot reused in place; populate is then called on
// the slot before it is returned.
func (c *Cache) GetOrLoad(key Key, populate PopulateFunc) *Tile {
	if el, ok := c.index[key]; ok {
		c.lru.MoveToFront(el)
		c.stats.Hits++
		instrumentHit()
		return el.Value.(*entry).tile
	}

	c.stats.Misses++

	if t, ok := c.pool.Acquire(); ok {
		populate(t)
		c.index[key] = c.lru.PushFront(&entry{key: key, tile: t})
		instrumentMiss(false)
		instrumentEntries(c.lru.Len())
		return t
	}

	back := c.lru.Back()
	if back == nil {
		panic(fmt.Sprintf("tile: pool saturated (%d in use) but cache is empty", c.pool.InUse()))
	}

	e := back.Value.(*entry)
	delete(c.index, e.key)
	logger.Debug("tile evicted",
		zap.Stringer("old", e.key),
		zap.Stringer("new", key),
		zap.Int("slice", e.tile.Slice()),
	)

	populate(e.tile)
	e.key = key
	c.index[key] = back
	c.lru.MoveToFront(back)

	c.stats.Evictions++
	instrumentMiss(true)
	return e.tile
}

// Contains reports whether key is resident without touching its recency.
func (c *Cache) Contains(key Key) bool {
	_, ok := c.index[key]
	return ok
}

// Len returns the number of resident tiles.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Keys returns the resident keys from most to least recently used.
func (c *Cache) Keys() []Key {
	keys := make([]Key, 0, c.lru.Len())
	for el := c.lru.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry).key)
	}
	return keys
}

// Stats returns the activity counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

// Pool returns the pool the cache draws from.
func (c *Cache) Pool() *Pool {
	return c.pool
}

// Purge releases every resident tile back to the pool.
func (c *Cache) Purge() {
	for el := c.lru.Front(); el != nil; el = el.Next() {
		c.pool.Release(el.Value.(*entry).tile)
	}
	c.lru.Init()
	clear(c.index)
	instrumentEntries(0)
}
