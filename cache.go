package sitekit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/xpertai/sitekit/backend"
)

// feedCache holds the published post list for sitemap and RSS generation.
// Page navigations always hit the backend fresh; only the crawler-facing
// feeds are cached, with singleflight collapsing concurrent refreshes.
type feedCache struct {
	mu      sync.RWMutex
	posts   []backend.BlogPost
	fetched time.Time
	ttl     time.Duration
	client  *backend.Client
	group   singleflight.Group
}

func newFeedCache(client *backend.Client, ttl time.Duration) *feedCache {
	return &feedCache{client: client, ttl: ttl}
}

// PublishedPosts returns the cached post list, refreshing it when stale.
func (f *feedCache) PublishedPosts(ctx context.Context) ([]backend.BlogPost, error) {
	f.mu.RLock()
	if f.posts != nil && time.Since(f.fetched) < f.ttl {
		posts := f.posts
		f.mu.RUnlock()
		return posts, nil
	}
	f.mu.RUnlock()

	v, err, _ := f.group.Do("posts", func() (any, error) {
		posts, err := f.client.PublishedPosts(ctx)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.posts = posts
		f.fetched = time.Now()
		f.mu.Unlock()
		return posts, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]backend.BlogPost), nil
}

// Invalidate clears the cache so the next read triggers a fresh load.
// Called after admin blog mutations.
func (f *feedCache) Invalidate() {
	f.mu.Lock()
	f.posts = nil
	f.mu.Unlock()
}
