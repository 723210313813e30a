package weather

import (
	"container/list"
	"sync"

	"floe/internal/external"
)

// geocodeCache is a small thread-safe LRU cache for geocoding results.
// Only successful lookups are cached, so transient "not found" responses and
// provider failures can be retried on the next request.
type geocodeCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
}

type cacheEntry struct {
	key   string
	value external.GeocodedCity
}

// newGeocodeCache creates an LRU cache holding up to maxEntries results.
// A non-positive maxEntries disables caching.
func newGeocodeCache(maxEntries int) *geocodeCache {
	return &geocodeCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

func (c *geocodeCache) get(key string) (external.GeocodedCity, bool) {
	if c.maxEntries <= 0 {
		return external.GeocodedCity{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return external.GeocodedCity{}, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).value, true
}

func (c *geocodeCache) put(key string, value external.GeocodedCity) {
	if c.maxEntries <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	elem := c.order.PushFront(&cacheEntry{key: key, value: value})
	c.entries[key] = elem

	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}
