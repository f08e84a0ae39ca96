package robots

import (
	"context"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// Cache memoizes robots.txt policies per origin for the lifetime of a
// single batch request, so a batch of twenty URLs on one host downloads
// robots.txt once instead of twenty times. Create one per request and
// discard it; nothing here outlives the request that made it.
type Cache struct {
	checker *Checker

	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	data    *robotstxt.RobotsData // nil: no usable policy, allow
	warning string
}

// NewCache wraps checker with per-origin memoization.
func NewCache(checker *Checker) *Cache {
	return &Cache{
		checker: checker,
		entries: make(map[string]*cacheEntry),
	}
}

// Check mirrors Checker.Check but downloads each origin's robots.txt at
// most once. Concurrent workers racing on a cold origin may both fetch;
// the download is idempotent so last write simply wins.
func (rc *Cache) Check(ctx context.Context, pageURL *url.URL) (allowed bool, warning string) {
	key := pageURL.Scheme + "://" + pageURL.Host

	rc.mu.RLock()
	e, ok := rc.entries[key]
	rc.mu.RUnlock()

	if !ok {
		data, warning := rc.checker.fetch(ctx, pageURL)
		e = &cacheEntry{data: data, warning: warning}
		rc.mu.Lock()
		rc.entries[key] = e
		rc.mu.Unlock()
	}

	if e.data == nil {
		return true, e.warning
	}
	return e.data.TestAgent(pathWithQuery(pageURL), rc.checker.agent), e.warning
}
