package ingest

import (
	"strings"

	"zazasite/internal/cover"
	"zazasite/internal/domain/content"
)

const DefaultAuthor = "Zaza Team"

// Normalizer turns loosely typed frontmatter into a canonical Post.
type Normalizer struct {
	DefaultAuthor string
	Covers        *cover.Resolver
}

func NewNormalizer(defaultAuthor string) *Normalizer {
	if strings.TrimSpace(defaultAuthor) == "" {
		defaultAuthor = DefaultAuthor
	}
	return &Normalizer{DefaultAuthor: defaultAuthor, Covers: cover.NewResolver()}
}

// Normalize never fails: missing or malformed optional fields get defaults.
func (n *Normalizer) Normalize(fm map[string]any, body []byte, path string, index int) content.Post {
	if fm == nil {
		fm = map[string]any{}
	}
	text := string(body)

	p := content.Post{
		Slug:        ResolveSlug(fm, path),
		Title:       stringField(fm, "title"),
		Author:      n.author(fm["author"]),
		Category:    NormalizeCategory(stringField(fm, "category")),
		Tags:        stringsField(fm, "tags"),
		Featured:    boolField(fm, "featured"),
		EditorsPick: boolField(fm, "editorsPick"),
		Content:     text,
		SourcePath:  path,
	}

	p.Date = content.EpochDate
	for _, key := range []string{"date", "publishDate"} {
		if t, ok := ParseTime(fm[key]); ok {
			p.Date = t
			break
		}
	}

	if rt, ok := intField(fm, "readingTime", "readTime"); ok {
		p.ReadingTime = rt
	} else {
		p.ReadingTime = ReadingMinutes(WordCount(text))
	}

	if d := stringField(fm, "description", "excerpt"); d != "" {
		p.Description = d
	} else {
		p.Description = Excerpt(text, ExcerptWords)
	}

	if v, ok := intField(fm, "views"); ok {
		p.Views = v
	}

	covers := n.Covers
	if covers == nil {
		covers = cover.NewResolver()
	}
	p.Image = covers.Resolve(fm, p.Title, p.Category, index)

	p.Normalize()
	return p
}

func (n *Normalizer) author(v any) string {
	switch a := v.(type) {
	case string:
		if s := strings.TrimSpace(a); s != "" {
			return s
		}
	case map[string]any:
		if s, ok := a["name"].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return n.DefaultAuthor
}
