package reviewengine

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/reviewengine/content"
)

// PublishedCache is an in-memory cache of published posts, newest first,
// with their references resolved. The feed and the sitemap read from it.
type PublishedCache struct {
	mu      sync.RWMutex
	posts   []content.PostView
	fetched time.Time
	ttl     time.Duration
	store   *content.Store
	now     func() time.Time
}

// NewPublishedCache creates a PublishedCache backed by the given Store.
func NewPublishedCache(s *content.Store, ttl time.Duration) *PublishedCache {
	return &PublishedCache{store: s, ttl: ttl, now: time.Now}
}

func (c *PublishedCache) valid() bool {
	return c.posts != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PublishedCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

func (c *PublishedCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	all, err := c.store.Posts.All(ctx)
	if err != nil {
		return err
	}
	published := make([]content.BlogPost, 0, len(all))
	for _, p := range all {
		if p.Published {
			published = append(published, p)
		}
	}
	content.SortPosts(published, true)
	views, err := c.store.AssemblePosts(ctx, published)
	if err != nil {
		return err
	}
	if views == nil {
		views = []content.PostView{}
	}
	c.posts = views
	c.fetched = c.now()
	return nil
}

// Posts returns the cached published posts, reloading them when stale.
// It tries a read lock first and only takes the write lock to reload.
func (c *PublishedCache) Posts(ctx context.Context) ([]content.PostView, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c.posts, nil
}

// Latest returns up to n of the newest published posts.
func (c *PublishedCache) Latest(ctx context.Context, n int) ([]content.PostView, error) {
	posts, err := c.Posts(ctx)
	if err != nil {
		return nil, err
	}
	if len(posts) > n {
		posts = posts[:n]
	}
	return posts, nil
}

// invalidateOnWrite drops the cache after every successful mutating API
// request. Renames of users, categories and tags show in the feed too.
func (c *PublishedCache) invalidateOnWrite(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		err := next(ctx)
		switch ctx.Request().Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return err
		}
		if err == nil && ctx.Response().Status < http.StatusBadRequest {
			c.Invalidate()
		}
		return err
	}
}
