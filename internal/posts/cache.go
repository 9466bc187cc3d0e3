package posts

import (
	"context"
	"sync"

	fp "zazasite/internal/domain/build"
	"zazasite/internal/domain/content"
)

// Loader produces a fresh set of posts, e.g. by ingesting the content directory.
type Loader func(ctx context.Context) ([]content.Post, error)

// Cache holds the current Collection. It loads lazily on first Get and can be
// reloaded or invalidated explicitly, e.g. from a file watcher.
type Cache struct {
	load Loader

	mu          sync.RWMutex
	coll        *Collection
	fingerprint fp.Fingerprint
}

func NewCache(load Loader) *Cache {
	return &Cache{load: load}
}

func (c *Cache) Get(ctx context.Context) (*Collection, error) {
	c.mu.RLock()
	coll := c.coll
	c.mu.RUnlock()
	if coll != nil {
		return coll, nil
	}
	coll, _, err := c.reload(ctx)
	return coll, err
}

// Reload replaces the cached collection and reports whether its content changed.
// On error the previous collection is kept.
func (c *Cache) Reload(ctx context.Context) (bool, error) {
	_, changed, err := c.reload(ctx)
	return changed, err
}

func (c *Cache) reload(ctx context.Context) (*Collection, bool, error) {
	items, err := c.load(ctx)
	if err != nil {
		return nil, false, err
	}
	next := Fingerprinted(items)
	coll := New(items)

	c.mu.Lock()
	defer c.mu.Unlock()
	changed := c.coll == nil || !c.fingerprint.Same(next)
	c.coll = coll
	c.fingerprint = next
	return coll, changed, nil
}

// Invalidate drops the cached collection; the next Get loads again.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.coll = nil
	c.fingerprint = fp.Fingerprint{}
	c.mu.Unlock()
}

// Fingerprinted returns the snapshot fingerprint of a set of posts.
func Fingerprinted(items []content.Post) fp.Fingerprint {
	hashes := make([]string, 0, len(items))
	for _, p := range items {
		h := p.ContentHash
		if h == "" {
			h = fp.HashString(p.Slug + "\x00" + p.Content)
		}
		hashes = append(hashes, h)
	}
	f := fp.Fingerprint{ContentHash: fp.CombineHashes(hashes)}
	f.ComputeSnapshotHash()
	return f
}
