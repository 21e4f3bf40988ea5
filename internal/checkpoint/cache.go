package checkpoint

import (
	"sync"
	"time"
)

// listCache memoizes successful ListProjects results so UI refresh loops and
// the API server do not rescan the storage root on every call. With ttl=0
// (the default) caching is off and every call rescans; mutating operations
// reset the cache either way.
type listCache struct {
	mu       sync.RWMutex
	ttl      time.Duration
	cached   bool
	cachedAt time.Time

	summaries []ProjectSummary
	diags     ListDiagnostics
}

func (c *listCache) setTTL(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = d
}

// get returns the cached result and whether it is still fresh.
func (c *listCache) get() ([]ProjectSummary, ListDiagnostics, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.cached || c.ttl <= 0 {
		return nil, ListDiagnostics{}, false
	}
	if time.Since(c.cachedAt) > c.ttl {
		return nil, ListDiagnostics{}, false
	}
	return c.summaries, c.diags, true
}

func (c *listCache) set(summaries []ProjectSummary, diags ListDiagnostics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl <= 0 {
		return
	}
	c.cached = true
	c.cachedAt = time.Now()
	c.summaries = summaries
	c.diags = diags
}

// reset drops the cached result, forcing the next list to rescan.
func (c *listCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = false
	c.summaries = nil
	c.diags = ListDiagnostics{}
}
