package collector

import (
	"context"
	"sync"
	"time"

	"StockScreener/internal/model"
)

// CacheObserver receives one call per cache lookup. kind is "prices" or "fundamentals".
type CacheObserver interface {
	ObserveCache(kind string, hit bool)
}

type priceEntry struct {
	series  *model.PriceSeries
	expires time.Time
}

type fundamentalsEntry struct {
	snap    model.FundamentalSnapshot
	expires time.Time
}

// CachedFetcher is an in-memory TTL cache in front of another Fetcher.
// Callers always receive their own copy of cached data.
type CachedFetcher struct {
	next     Fetcher
	ttl      time.Duration
	observer CacheObserver
	now      func() time.Time

	mu           sync.Mutex
	prices       map[string]priceEntry
	fundamentals map[string]fundamentalsEntry
	hits, misses int
}

// NewCachedFetcher wraps next. A non-positive ttl disables caching.
func NewCachedFetcher(next Fetcher, ttl time.Duration, observer CacheObserver) *CachedFetcher {
	return &CachedFetcher{
		next:         next,
		ttl:          ttl,
		observer:     observer,
		now:          time.Now,
		prices:       make(map[string]priceEntry),
		fundamentals: make(map[string]fundamentalsEntry),
	}
}

func (c *CachedFetcher) Name() string { return c.next.Name() + "+cache" }

func (c *CachedFetcher) FetchPriceHistory(ctx context.Context, ticker, period string) (*model.PriceSeries, error) {
	key := ticker + "|" + period
	c.mu.Lock()
	e, ok := c.prices[key]
	hit := ok && c.now().Before(e.expires)
	c.record("prices", hit)
	c.mu.Unlock()
	if hit {
		return e.series.Clone(), nil
	}

	series, err := c.next.FetchPriceHistory(ctx, ticker, period)
	if err != nil {
		return nil, err
	}
	if c.ttl > 0 {
		c.mu.Lock()
		c.prices[key] = priceEntry{series: series.Clone(), expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
	}
	return series, nil
}

func (c *CachedFetcher) FetchFundamentals(ctx context.Context, ticker string) (*model.FundamentalSnapshot, error) {
	c.mu.Lock()
	e, ok := c.fundamentals[ticker]
	hit := ok && c.now().Before(e.expires)
	c.record("fundamentals", hit)
	c.mu.Unlock()
	if hit {
		snap := e.snap
		return &snap, nil
	}

	snap, err := c.next.FetchFundamentals(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if c.ttl > 0 && snap != nil {
		c.mu.Lock()
		c.fundamentals[ticker] = fundamentalsEntry{snap: *snap, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
	}
	return snap, nil
}

// record must be called with mu held.
func (c *CachedFetcher) record(kind string, hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	if c.observer != nil {
		c.observer.ObserveCache(kind, hit)
	}
}

// Sweep evicts entries that expired at or before now and returns how many were removed.
func (c *CachedFetcher) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.prices {
		if !now.Before(e.expires) {
			delete(c.prices, k)
			removed++
		}
	}
	for k, e := range c.fundamentals {
		if !now.Before(e.expires) {
			delete(c.fundamentals, k)
			removed++
		}
	}
	return removed
}

// Stats returns cumulative hit and miss counts.
func (c *CachedFetcher) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached entries.
func (c *CachedFetcher) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prices) + len(c.fundamentals)
}
