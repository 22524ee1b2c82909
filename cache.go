package folio

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/folio/content"
)

// PostCache is an in-memory cache of published posts and drafts with TTL.
type PostCache struct {
	mu       sync.RWMutex
	posts    []content.Post
	drafts   []content.Post
	fetched  time.Time
	ttl      time.Duration
	provider content.Provider

	// Logger receives draft listing failures, which never hide published
	// posts. Nil discards them.
	Logger *log.Logger
}

// NewPostCache creates a PostCache backed by the given provider.
func NewPostCache(p content.Provider, ttl time.Duration) *PostCache {
	return &PostCache{provider: p, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.drafts = nil
	c.mu.Unlock()
}

// SetProvider swaps the backing provider and invalidates the cache.
func (c *PostCache) SetProvider(p content.Provider) {
	c.mu.Lock()
	c.provider = p
	c.posts = nil
	c.drafts = nil
	c.mu.Unlock()
}

func (c *PostCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	posts, err := c.provider.Posts(ctx)
	if err != nil {
		return err
	}
	drafts, err := c.provider.Drafts(ctx)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Warnf("listing drafts: %v", err)
		}
		drafts = nil
	}
	if posts == nil {
		posts = []content.Post{}
	}
	c.posts = posts
	c.drafts = drafts
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts and drafts after ensuring the cache is
// fresh. It tries a read lock first; only takes a write lock if a reload is
// needed.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]content.Post, []content.Post, error) {
	c.mu.RLock()
	if c.valid() {
		posts, drafts := c.posts, c.drafts
		c.mu.RUnlock()
		return posts, drafts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, err
	}
	return c.posts, c.drafts, nil
}

// ListPosts returns published posts, newest first. With drafts set, drafts
// are merged into the listing.
func (c *PostCache) ListPosts(ctx context.Context, drafts bool) ([]content.Post, error) {
	posts, ds, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if !drafts || len(ds) == 0 {
		return posts, nil
	}
	all := make([]content.Post, 0, len(posts)+len(ds))
	all = append(all, posts...)
	all = append(all, ds...)
	content.SortNewestFirst(all)
	return all, nil
}

// GetPost returns a post or draft by slug from the cache.
func (c *PostCache) GetPost(ctx context.Context, slug string) (content.Post, error) {
	posts, drafts, err := c.ensureLoaded(ctx)
	if err != nil {
		return content.Post{}, err
	}
	for _, list := range [][]content.Post{posts, drafts} {
		for _, p := range list {
			if p.Slug == slug {
				return p, nil
			}
		}
	}
	return content.Post{}, &content.NotFoundError{Slug: slug}
}
