package fetch

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Cached memoizes successful responses per URL for ttl. Failures are not cached,
// so the next call makes a fresh attempt.
func Cached(next Fetcher, ttl time.Duration) Fetcher {
	return &cachedFetcher{
		next:  next,
		ttl:   ttl,
		items: make(map[string]cacheItem),
		now:   time.Now,
	}
}

type cacheItem struct {
	resp    *Response
	expTime time.Time
}

type cachedFetcher struct {
	next  Fetcher
	ttl   time.Duration
	mu    sync.Mutex
	items map[string]cacheItem
	now   func() time.Time
}

func (c *cachedFetcher) Fetch(ctx context.Context, url string) *Response {
	now := c.now()

	c.mu.Lock()
	item, ok := c.items[url]
	if ok && now.Before(item.expTime) {
		c.mu.Unlock()
		return item.resp
	}
	// expired entries are dropped lazily
	delete(c.items, url)
	c.mu.Unlock()

	resp := c.next.Fetch(ctx, url)
	if resp == nil {
		return nil
	}

	c.mu.Lock()
	c.items[url] = cacheItem{resp: resp, expTime: now.Add(c.ttl)}
	c.mu.Unlock()
	return resp
}

// RateLimited spaces outbound calls at least interval apart. A cancelled wait
// counts as a failed fetch.
func RateLimited(next Fetcher, interval time.Duration) Fetcher {
	return &limitedFetcher{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

type limitedFetcher struct {
	next    Fetcher
	limiter *rate.Limiter
}

func (l *limitedFetcher) Fetch(ctx context.Context, url string) *Response {
	if err := l.limiter.Wait(ctx); err != nil {
		log.Printf("Fetch: rate limit wait for %s: %v", url, err)
		return nil
	}
	return l.next.Fetch(ctx, url)
}

// WithPolicy wraps f in the configured layers. Zero durations disable a layer.
// The cache sits outside the limiter so hits never wait.
func WithPolicy(f Fetcher, cacheTTL, rateInterval time.Duration) Fetcher {
	if rateInterval > 0 {
		f = RateLimited(f, rateInterval)
	}
	if cacheTTL > 0 {
		f = Cached(f, cacheTTL)
	}
	return f
}
