package fetch

import (
	"context"
	"log"
	"time"
)

// DefaultCacheTTL is how long a fetched job description is reused.
const DefaultCacheTTL = 24 * time.Hour

// PageCache stores extracted job descriptions by URL.
type PageCache interface {
	// GetJobPage returns the cached text for url if it was stored within maxAge.
	GetJobPage(ctx context.Context, url string, maxAge time.Duration) (text string, ok bool, err error)
	SaveJobPage(ctx context.Context, url, text string) error
}

// CachedFetcher wraps a Fetcher with a PageCache. Cache failures are logged and never fail the
// fetch.
type CachedFetcher struct {
	cache    PageCache
	fetcher  *Fetcher
	cacheTTL time.Duration
}

// NewCachedFetcher creates a cached fetcher. A non-positive ttl means DefaultCacheTTL.
func NewCachedFetcher(cache PageCache, fetcher *Fetcher, ttl time.Duration) *CachedFetcher {
	if fetcher == nil {
		fetcher = NewFetcher(nil)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFetcher{cache: cache, fetcher: fetcher, cacheTTL: ttl}
}

// JobDescription returns the cached description for urlStr when fresh, otherwise fetches and
// stores it.
func (f *CachedFetcher) JobDescription(ctx context.Context, urlStr string) (string, error) {
	if f.cache != nil {
		text, ok, err := f.cache.GetJobPage(ctx, urlStr, f.cacheTTL)
		switch {
		case err != nil:
			log.Printf("[fetch] cache lookup failed for %s: %v", urlStr, err)
		case ok:
			return text, nil
		}
	}

	text, err := f.fetcher.JobDescription(ctx, urlStr)
	if err != nil {
		return "", err
	}

	if f.cache != nil {
		if err := f.cache.SaveJobPage(ctx, urlStr, text); err != nil {
			log.Printf("[fetch] failed to cache %s: %v", urlStr, err)
		}
	}
	return text, nil
}
