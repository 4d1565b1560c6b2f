package sales

import (
	"context"
	"sync"
	"time"

	"github.com/mamadbah2/salesdesk/internal/form"
)

// CatalogLookup resolves the current per-batch rates of a catalog item.
type CatalogLookup interface {
	Lookup(ctx context.Context, ref string) (form.Rates, error)
}

// rateCache is the RateBook shared by every open form. Entries are filled by
// lookups and expire after ttl so catalog edits reach new rows.
type rateCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cachedRates
}

type cachedRates struct {
	rates   form.Rates
	expires time.Time
}

func newRateCache(ttl time.Duration) *rateCache {
	return &rateCache{ttl: ttl, now: time.Now, entries: make(map[string]cachedRates)}
}

// Rates implements form.RateBook.
func (c *rateCache) Rates(ref string) (form.Rates, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[ref]
	if !ok || c.now().After(entry.expires) {
		return form.Rates{}, false
	}
	return entry.rates, true
}

func (c *rateCache) put(ref string, rates form.Rates) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ref] = cachedRates{rates: rates, expires: c.now().Add(c.ttl)}
}

func (c *rateCache) forget(ref string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ref)
}
