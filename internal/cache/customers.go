package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/summitops/event-pay-gateway/internal/model"
)

const (
	DefaultCustomerTTL  = 10 * time.Minute
	DefaultMaxCustomers = 1000
)

type entry struct {
	customer     *model.CustomerRecord
	timestamp    time.Time // creation time, drives TTL and eviction
	lastAccessed time.Time
}

// CustomerCache is a process-wide, time- and size-bounded map from normalized
// email to the Stripe customer previously resolved for it. It exists to
// collapse repeated lookups for the same email into one upstream call within
// the TTL window. Memory-only: entries do not survive a process restart.
//
// Eviction is by creation timestamp, not lastAccessed. lastAccessed is
// maintained and reported but does not influence which entries are dropped.
type CustomerCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

// NewCustomerCache builds an independent cache instance; non-positive
// arguments fall back to the defaults. Callers share one instance per
// process, tests construct their own.
func NewCustomerCache(ttl time.Duration, maxSize int) *CustomerCache {
	if ttl <= 0 {
		ttl = DefaultCustomerTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxCustomers
	}
	return &CustomerCache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the cached customer for email, or nil on miss. An entry older
// than the TTL is deleted as a side effect of the read that discovered it.
func (c *CustomerCache) Get(email string) *model.CustomerRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[email]
	if !ok {
		return nil
	}
	now := c.now()
	if now.Sub(e.timestamp) > c.ttl {
		delete(c.entries, email)
		return nil
	}
	e.lastAccessed = now
	return e.customer
}

// Set stores customer under email, replacing any previous entry. The sweep,
// eviction and insert run under one lock so the size bound holds even with
// handlers writing concurrently.
func (c *CustomerCache) Set(email string, customer *model.CustomerRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweepExpired(now)
	c.evictOldestIfFull()
	c.entries[email] = &entry{customer: customer, timestamp: now, lastAccessed: now}
}

// Invalidate drops the entry for email, if present.
func (c *CustomerCache) Invalidate(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, email)
}

// Stats is advisory introspection for operational monitoring; never use Size
// to drive business decisions.
type Stats struct {
	Size    int           `json:"size"`
	MaxSize int           `json:"max_size"`
	TTL     time.Duration `json:"ttl"`
}

func (c *CustomerCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Size: len(c.entries), MaxSize: c.maxSize, TTL: c.ttl}
}

func (c *CustomerCache) sweepExpired(now time.Time) {
	for k, e := range c.entries {
		if now.Sub(e.timestamp) > c.ttl {
			delete(c.entries, k)
		}
	}
}

// evictOldestIfFull removes the oldest tenth of the table (by creation time)
// once it is at capacity, so a burst of new emails does not thrash one slot
// at a time. At least one entry goes, or the following insert could breach
// the bound on tiny capacities.
func (c *CustomerCache) evictOldestIfFull() {
	if len(c.entries) < c.maxSize {
		return
	}

	type aged struct {
		key string
		ts  time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, ts: e.timestamp})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ts.Before(all[j].ts) })

	n := c.maxSize / 10
	if n < 1 {
		n = 1
	}
	if n > len(all) {
		n = len(all)
	}
	for _, a := range all[:n] {
		delete(c.entries, a.key)
	}
}
