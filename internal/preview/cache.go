package preview

import "sync"

// Cache maps a (title, artist) key to a playable preview URL. One cache is
// shared by every Player for the lifetime of the process.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, url string)
	Len() int
}

// Key builds the cache key. Distinct songs with the same title and artist
// collide; this is a known limitation.
func Key(title, artist string) string {
	return title + "-" + artist
}

// MemoryCache is an in-memory Cache. Entries are never evicted and the map
// grows with every distinct song resolved.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.entries[key]
	return url, ok
}

func (c *MemoryCache) Set(key, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = url
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
