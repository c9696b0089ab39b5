package stats

import (
	"context"
	"maps"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const totalsKey = "totals"

// Cached serves Totals from memory for ttl after each successful read.
// Failed reads are not cached.
type Cached struct {
	src *Aggregator
	c   *gocache.Cache
}

// NewCached wraps a. A non-positive ttl disables caching.
func NewCached(a *Aggregator, ttl time.Duration) *Cached {
	if ttl <= 0 {
		return &Cached{src: a}
	}
	return &Cached{src: a, c: gocache.New(ttl, time.Minute)}
}

// Totals returns a copy of the cached totals or queries the aggregator.
func (c *Cached) Totals(ctx context.Context) (map[string]int64, error) {
	if c.c == nil {
		return c.src.Totals(ctx)
	}
	if v, ok := c.c.Get(totalsKey); ok {
		if m, ok := v.(map[string]int64); ok {
			return maps.Clone(m), nil
		}
	}
	m, err := c.src.Totals(ctx)
	if err != nil {
		return nil, err
	}
	c.c.SetDefault(totalsKey, maps.Clone(m))
	return m, nil
}

// Invalidate drops the cached totals.
func (c *Cached) Invalidate() {
	if c.c != nil {
		c.c.Delete(totalsKey)
	}
}
