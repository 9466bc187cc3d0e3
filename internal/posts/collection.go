// Package posts serves queries over an immutable, date-ordered set of posts.
package posts

import (
	"sort"
	"time"

	"zazasite/internal/domain/content"
	"zazasite/internal/ingest"
)

const PopularLimit = 10

// Collection is safe for concurrent readers; it is never mutated after New.
type Collection struct {
	all    []content.Post
	bySlug map[string]int
	now    func() time.Time
}

// New orders posts by date, newest first. Posts with equal dates keep the
// order they were given in.
func New(items []content.Post) *Collection {
	all := make([]content.Post, len(items))
	copy(all, items)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})
	bySlug := make(map[string]int, len(all))
	for i, p := range all {
		if _, ok := bySlug[p.Slug]; !ok {
			bySlug[p.Slug] = i
		}
	}
	return &Collection{all: all, bySlug: bySlug, now: time.Now}
}

// WithClock returns a view of c that uses now for Recent.
func (c *Collection) WithClock(now func() time.Time) *Collection {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Collection) Len() int { return len(c.all) }

// All returns a copy of every post, newest first.
func (c *Collection) All() []content.Post {
	return clonePosts(c.all)
}

func (c *Collection) BySlug(slug string) (content.Post, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return content.Post{}, false
	}
	return c.all[i], true
}

// Featured returns the featured posts, or the newest post when none is flagged.
func (c *Collection) Featured() []content.Post {
	var out []content.Post
	for _, p := range c.all {
		if p.Featured {
			out = append(out, p)
		}
	}
	if len(out) == 0 && len(c.all) > 0 {
		return []content.Post{c.all[0]}
	}
	return out
}

// ByCategory filters on the normalized category. An empty category or
// "All Articles" selects everything.
func (c *Collection) ByCategory(cat string) []content.Post {
	if ingest.IsAllCategories(cat) {
		return c.All()
	}
	want := ingest.NormalizeCategory(cat)
	var out []content.Post
	for _, p := range c.all {
		if p.Category == want {
			out = append(out, p)
		}
	}
	return out
}

// Recent returns posts dated within the last days days.
func (c *Collection) Recent(days int) []content.Post {
	cutoff := c.now().AddDate(0, 0, -days)
	var out []content.Post
	for _, p := range c.all {
		if p.HasDate() && !p.Date.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// Popular ranks by views plus featured and editor's pick bonuses.
func (c *Collection) Popular() []content.Post {
	out := clonePosts(c.all)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PopularityScore() > out[j].PopularityScore()
	})
	if len(out) > PopularLimit {
		out = out[:PopularLimit]
	}
	return out
}

// Categories counts posts per category.
func (c *Collection) Categories() map[string]int {
	out := make(map[string]int)
	for _, p := range c.all {
		out[p.Category]++
	}
	return out
}

func clonePosts(in []content.Post) []content.Post {
	out := make([]content.Post, len(in))
	copy(out, in)
	return out
}
