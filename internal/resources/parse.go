package resources

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"zazasite/internal/domain/content"
	domainerr "zazasite/internal/domain/errors"
	"zazasite/internal/ingest"
)

var (
	yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)
	validate   = validator.New()
)

// ParseResource reads the frontmatter of a resource file and fills defaults
// for version and lang. It does not validate required fields.
func ParseResource(raw []byte) (content.Resource, []byte, error) {
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))

	var res content.Resource
	body, err := frontmatter.Parse(bytes.NewReader(raw), &res, yamlFormat)
	if err != nil {
		return content.Resource{}, nil, fmt.Errorf("parse front matter: %w", err)
	}
	res.Title = strings.TrimSpace(res.Title)
	res.Slug = ingest.Slugify(res.Slug)
	res.Category = strings.TrimSpace(res.Category)
	res.Version = strings.TrimPrefix(strings.TrimSpace(res.Version), "v")
	if res.Version == "" {
		res.Version = content.DefaultResourceVersion
	}
	res.Lang = strings.ToLower(strings.TrimSpace(res.Lang))
	if res.Lang == "" {
		res.Lang = content.DefaultResourceLang
	}
	return res, bytes.TrimSpace(body), nil
}

// ValidateResource requires title, slug and category.
func ValidateResource(res content.Resource) error {
	if err := validate.Struct(res); err != nil {
		return domainerr.FromValidator(err)
	}
	return nil
}
