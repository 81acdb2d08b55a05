package cache

import (
	"sync"
	"time"

	"github.com/use-agent/audit-seo/models"
)

// Result is a cached fetch result: an outcome, or the error that
// replaced it.
type Result struct {
	Outcome *models.FetchOutcome
	Err     error
}

// entry holds a cached result with its creation timestamp.
type entry struct {
	result    Result
	createdAt time.Time
}

// Cache is a small in-memory store of fetch results keyed by URL.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	store      map[string]*entry
	maxEntries int
	maxAge     time.Duration
	now        func() time.Time
}

// New creates a Cache holding at most maxEntries results. Entries older
// than maxAge are treated as missing; maxAge <= 0 means they never expire.
func New(maxEntries int, maxAge time.Duration) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Set stores the result of fetching url. If the cache is at capacity,
// a random entry is evicted to make room.
func (c *Cache) Set(url string, outcome *models.FetchOutcome, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store[url]; !ok && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[url] = &entry{
		result:    Result{Outcome: outcome, Err: err},
		createdAt: c.now(),
	}
}

// Take returns and removes the cached result for url. ok is false when
// nothing fresh is cached.
func (c *Cache) Take(url string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.store[url]
	if !found {
		return Result{}, false
	}
	delete(c.store, url)

	if c.maxAge > 0 && c.now().Sub(e.createdAt) > c.maxAge {
		return Result{}, false
	}
	return e.result, true
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}
