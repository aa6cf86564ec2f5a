package screen

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache keeps the last value fetched per session and screen key. Writes
// overwrite; the last one wins.
type Cache struct {
	mu      sync.Mutex
	entries map[string]map[string]entry
	seen    map[string]time.Time
	now     func() time.Time
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]map[string]entry),
		seen:    make(map[string]time.Time),
		now:     time.Now,
	}
}

// Get returns the value stored for a session and key with its fetch time
func (c *Cache) Get(sid, key string) (any, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.touch(sid)
	e, ok := c.entries[sid][key]
	return e.value, e.fetchedAt, ok
}

// Put stores a freshly fetched value
func (c *Cache) Put(sid, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.touch(sid)
	c.put(sid, key, value, c.now())
}

// Update replaces a stored value with fn applied to it, keeping its fetch
// time. Nothing happens when no value is stored, so the next load fetches
// the whole collection.
func (c *Cache) Update(sid, key string, fn func(any) any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.touch(sid)
	e, ok := c.entries[sid][key]
	if !ok {
		return
	}
	c.put(sid, key, fn(e.value), e.fetchedAt)
}

// Drop forgets everything cached for a session
func (c *Cache) Drop(sid string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, sid)
	delete(c.seen, sid)
}

// Cleanup drops sessions unused for longer than idle until ctx ends. Every
// evicted session id is also passed to drop, so other per-session state
// goes with it.
func (c *Cache) Cleanup(ctx context.Context, every, idle time.Duration, drop ...func(sid string)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, sid := range c.evict(c.now().Add(-idle)) {
				for _, d := range drop {
					d(sid)
				}
			}
		}
	}
}

func (c *Cache) evict(before time.Time) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var evicted []string
	for sid, at := range c.seen {
		if at.Before(before) {
			delete(c.seen, sid)
			delete(c.entries, sid)
			evicted = append(evicted, sid)
		}
	}
	return evicted
}

func (c *Cache) touch(sid string) {
	c.seen[sid] = c.now()
}

func (c *Cache) put(sid, key string, value any, at time.Time) {
	perSession, ok := c.entries[sid]
	if !ok {
		perSession = make(map[string]entry)
		c.entries[sid] = perSession
	}
	perSession[key] = entry{value: value, fetchedAt: at}
}
