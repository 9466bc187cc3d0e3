// Package cover picks a cover image for a post from its frontmatter,
// falling back to title keywords, a per-category pool and a default image.
package cover

import (
	"strings"
)

const DefaultImage = "/images/blog/default-cover.jpg"

// ImageFields are the frontmatter keys checked for an explicit image, in priority order.
var ImageFields = []string{"image", "featuredImage", "ogImage", "heroImage", "coverImage", "thumbnail"}

type keywordRule struct {
	words []string
	image string
}

var defaultKeywordRules = []keywordRule{
	{words: []string{"parent", "communication"}, image: "/images/blog/parent-communication.jpg"},
	{words: []string{"report"}, image: "/images/blog/report-writing.jpg"},
	{words: []string{"lesson", "planning"}, image: "/images/blog/lesson-planning.jpg"},
	{words: []string{"feedback", "marking"}, image: "/images/blog/feedback.jpg"},
	{words: []string{"wellbeing", "burnout", "stress"}, image: "/images/blog/teacher-wellbeing.jpg"},
	{words: []string{"behaviour", "behavior", "classroom"}, image: "/images/blog/classroom.jpg"},
	{words: []string{"chatgpt", "prompt", "artificial intelligence"}, image: "/images/blog/ai-tools.jpg"},
}

var defaultCategoryPools = map[string][]string{
	"AI Tools": {
		"/images/blog/ai-tools.jpg",
		"/images/blog/ai-tools-2.jpg",
		"/images/blog/ai-tools-3.jpg",
	},
	"Teacher Tips": {
		"/images/blog/teacher-tips.jpg",
		"/images/blog/teacher-tips-2.jpg",
	},
	"Classroom Management": {
		"/images/blog/classroom.jpg",
		"/images/blog/classroom-2.jpg",
	},
	"Parent Communication": {"/images/blog/parent-communication.jpg"},
	"Lesson Planning":      {"/images/blog/lesson-planning.jpg"},
	"Assessment & Feedback": {
		"/images/blog/feedback.jpg",
		"/images/blog/report-writing.jpg",
	},
	"Teacher Wellbeing": {"/images/blog/teacher-wellbeing.jpg"},
	"EdTech":            {"/images/blog/edtech.jpg", "/images/blog/edtech-2.jpg"},
	"Product Updates":   {"/images/blog/product-updates.jpg"},
}

// Resolver is safe for concurrent use; it never mutates its tables.
type Resolver struct {
	keywords []keywordRule
	pools    map[string][]string
	fallback string
}

func NewResolver() *Resolver {
	return &Resolver{
		keywords: defaultKeywordRules,
		pools:    defaultCategoryPools,
		fallback: DefaultImage,
	}
}

// WithPools returns a copy of r using the given category pools.
func (r *Resolver) WithPools(pools map[string][]string) *Resolver {
	cp := *r
	cp.pools = pools
	return &cp
}

// Resolve returns a non-empty image URL. index is the post's position in
// its batch and spreads posts of one category across the category pool.
func (r *Resolver) Resolve(fm map[string]any, title, category string, index int) string {
	if img := ExplicitImage(fm); img != "" {
		return img
	}

	lt := strings.ToLower(title)
	for _, rule := range r.keywords {
		for _, w := range rule.words {
			if strings.Contains(lt, w) {
				return rule.image
			}
		}
	}

	if pool := r.pools[category]; len(pool) > 0 {
		if index < 0 {
			index = 0
		}
		return pool[index%len(pool)]
	}
	return r.fallback
}

// ExplicitImage returns the first non-empty image named in fm.
func ExplicitImage(fm map[string]any) string {
	for _, key := range ImageFields {
		if s := imageValue(fm[key]); s != "" {
			return s
		}
	}
	return ""
}

func imageValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		for _, k := range []string{"src", "url"} {
			if s, ok := t[k].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
