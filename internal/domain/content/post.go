package content

import (
	"strings"
	"time"
)

// EpochDate is the sentinel date of posts without a usable date.
var EpochDate = time.Unix(0, 0).UTC()

// Post is a normalized blog entry. JSON keys are part of the posts.json contract.
type Post struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Author      string    `json:"author"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	ReadingTime int       `json:"readingTime"`
	Image       string    `json:"image"`
	Featured    bool      `json:"featured"`
	EditorsPick bool      `json:"editorsPick"`
	Views       int       `json:"views"`
	Content     string    `json:"content"`

	SourcePath  string `json:"-"`
	ContentHash string `json:"-"`
}

// HasDate reports whether the post carries a real date.
func (p Post) HasDate() bool {
	return !p.Date.Equal(EpochDate)
}

// PopularityScore ranks posts for the popular listing.
func (p Post) PopularityScore() int {
	score := p.Views
	if p.Featured {
		score += 1000
	}
	if p.EditorsPick {
		score += 500
	}
	return score
}

func (p *Post) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = strings.TrimSpace(p.Slug)
	p.Category = strings.TrimSpace(p.Category)
	p.Tags = normalizeStrings(p.Tags)
	if p.Views < 0 {
		p.Views = 0
	}
	if p.ReadingTime < 1 {
		p.ReadingTime = 1
	}
}

func normalizeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		item = strings.ToLower(item)
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
