// Package atomiccowcache provides a copy-on-write cache whose read path is
// a single atomic load.  Generation of missing values is serialized; reads
// of already-generated values never contend.
package atomiccowcache

import (
	"sync"
	"sync/atomic"
)

type cacheData[K comparable, V any] struct {
	data map[K]V
}

type Cache[K comparable, V any] struct {
	gen func(K) V

	fastMap  atomic.Pointer[cacheData[K, V]]
	slowLock sync.Mutex
	slowMap  map[K]V
}

// NewCache builds a cache which generates missing values with gen.  gen
// must be pure: it is invoked at most once per key, holding the cache's
// write lock.
func NewCache[K comparable, V any](gen func(K) V) *Cache[K, V] {
	c := &Cache[K, V]{
		gen:     gen,
		slowMap: make(map[K]V),
	}
	c.rebuildFastMapLocked()
	return c
}

func (c *Cache[K, V]) rebuildFastMapLocked() {
	newFastMap := make(map[K]V, len(c.slowMap))
	for k, v := range c.slowMap {
		newFastMap[k] = v
	}
	c.fastMap.Store(&cacheData[K, V]{
		data: newFastMap,
	})
}

// Get returns the cached value for k, generating it on first use.
func (c *Cache[K, V]) Get(k K) V {
	fastMap := c.fastMap.Load().data
	if v, ok := fastMap[k]; ok {
		return v
	}

	c.slowLock.Lock()

	if v, ok := c.slowMap[k]; ok {
		c.slowLock.Unlock()
		return v
	}

	v := c.gen(k)
	c.slowMap[k] = v
	c.rebuildFastMapLocked()

	c.slowLock.Unlock()

	return v
}
