package auth

import "sync"

// Cache keeps the last challenge that was accepted by each camera host.
// Entries are replaced as a whole, a reader never sees a half-written one.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Challenge
}

func NewCache() *Cache {
	return &Cache{entries: map[string]Challenge{}}
}

func (c *Cache) Get(host string) Challenge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[host]
}

func (c *Cache) Put(host string, ch Challenge) {
	c.mu.Lock()
	c.entries[host] = ch
	c.mu.Unlock()
}

func (c *Cache) Invalidate(host string) {
	c.mu.Lock()
	delete(c.entries, host)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
