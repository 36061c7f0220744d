package pathfind

import (
	"sync"

	"github.com/deadside-tools/deadside-ingest/internal/domain"
)

// cacheKey scopes cache entries to a tenant and category. Keys always
// carry the guild ID so two guilds naming a server identically can never
// collide.
type cacheKey struct {
	guildID  string
	serverID string
	category domain.Category
}

// cacheEntry holds the last validated path plus every path that ever
// validated for this key, in first-seen order. The history survives
// invalidation: a path that worked once is still a better-than-nothing
// candidate after the current value goes stale.
type cacheEntry struct {
	current string
	history []string
}

// Cache is the per-tenant, per-category record of last-known-good paths.
// It is the only shared mutable state in this package and is safe for
// concurrent use. Entries are invalidated lazily when re-validation
// fails, never by a background sweep.
//
// Construct one per process and inject it; there is deliberately no
// package-level instance.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*cacheEntry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]*cacheEntry)}
}

// Get returns the last validated path for a server/category, if any.
// Get never validates; the resolver re-validates every hit before
// trusting it.
func (c *Cache) Get(server *domain.GameServer, cat domain.Category) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[keyFor(server, cat)]
	if !ok || e.current == "" {
		return "", false
	}

	return e.current, true
}

// Put records a validated path. Re-recording the same path is a no-op,
// so the validator and resolver may both cache without double entries.
func (c *Cache) Put(server *domain.GameServer, cat domain.Category, path string) {
	if path == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := keyFor(server, cat)

	e, ok := c.entries[k]
	if !ok {
		e = &cacheEntry{}
		c.entries[k] = e
	}

	e.current = path

	for _, h := range e.history {
		if h == path {
			return
		}
	}

	e.history = append(e.history, path)
}

// Invalidate drops the current value for a server/category. The success
// history is kept so the generator can still propose proven paths.
func (c *Cache) Invalidate(server *domain.GameServer, cat domain.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[keyFor(server, cat)]; ok {
		e.current = ""
	}
}

// History returns every path that ever validated for a server/category,
// in first-seen order. The returned slice is a copy.
func (c *Cache) History(server *domain.GameServer, cat domain.Category) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[keyFor(server, cat)]
	if !ok || len(e.history) == 0 {
		return nil
	}

	out := make([]string, len(e.history))
	copy(out, e.history)

	return out
}

// Clear wipes the cache. Test escape hatch.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[cacheKey]*cacheEntry)
}

func keyFor(server *domain.GameServer, cat domain.Category) cacheKey {
	return cacheKey{
		guildID:  server.GuildID,
		serverID: server.ServerID,
		category: cat,
	}
}
