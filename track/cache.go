package track

import (
	"context"
	"time"

	"github.com/melody-cli/melody/filesystem"
	"github.com/melody-cli/melody/log"
	"github.com/metafates/gache"
)

// CachedFetcher serves the last fetched track list from disk until it expires.
type CachedFetcher struct {
	fetcher Fetcher
	cacher  *gache.Cache[[]Track]
}

// Cached wraps fetcher with an on-disk snapshot at path that lives for lifetime.
func Cached(fetcher Fetcher, path string, lifetime time.Duration) *CachedFetcher {
	return &CachedFetcher{
		fetcher: fetcher,
		cacher: gache.New[[]Track](&gache.Options{
			Path:       path,
			Lifetime:   lifetime,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

func (c *CachedFetcher) FetchTracks(ctx context.Context) ([]Track, error) {
	cached, expired, err := c.cacher.Get()
	if err == nil && !expired && len(cached) > 0 {
		return cached, nil
	}

	tracks, err := c.fetcher.FetchTracks(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.cacher.Set(tracks); err != nil {
		log.Warnf("catalog snapshot not saved: %v", err)
	}
	return tracks, nil
}

// Invalidate drops the snapshot so the next fetch goes to the source.
func (c *CachedFetcher) Invalidate() error {
	return c.cacher.Set(nil)
}
