package content

import "fmt"

const (
	DefaultResourceVersion = "1.0"
	DefaultResourceLang    = "en"
)

// Resource is the frontmatter of a downloadable teaching resource.
type Resource struct {
	Title         string `yaml:"title" validate:"required"`
	Slug          string `yaml:"slug" validate:"required"`
	Category      string `yaml:"category" validate:"required"`
	Version       string `yaml:"version"`
	Lang          string `yaml:"lang"`
	CoverTitle    string `yaml:"coverTitle"`
	CoverSubtitle string `yaml:"coverSubtitle"`
	CoverBadge    string `yaml:"coverBadge"`
	TOC           bool   `yaml:"toc"`
	Description   string `yaml:"description"`
}

// Stem is the versioned, language-qualified file name without extension.
func (r Resource) Stem() string {
	return fmt.Sprintf("%s-v%s-%s", r.Slug, r.Version, r.Lang)
}

// ManifestEntry is one line of resources.manifest.json.
type ManifestEntry struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Category string `json:"category"`
	Lang     string `json:"lang"`
	Version  string `json:"version"`
	PDF      string `json:"pdf"`
	HTML     string `json:"html"`
	Size     string `json:"size"`
}
