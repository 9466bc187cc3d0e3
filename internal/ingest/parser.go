package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

var errInvalidFrontMatter = errors.New("invalid front matter")

// yamlFormat decodes with yaml.v3 so nested objects come back as map[string]any.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// ParseFrontMatter splits raw into its YAML frontmatter and body.
// A file without frontmatter returns an empty map and the whole input as body.
func ParseFrontMatter(raw []byte) (map[string]any, []byte, error) {
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))

	fm := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm, yamlFormat)
	if err != nil {
		return nil, raw, fmt.Errorf("%w: %v", errInvalidFrontMatter, err)
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return fm, bytes.TrimSpace(body), nil
}

// ResolveSlug prefers the frontmatter slug and falls back to the file name.
func ResolveSlug(fm map[string]any, path string) string {
	if s := stringField(fm, "slug"); s != "" {
		return Slugify(s)
	}
	base := filepath.Base(path)
	return Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
}

var dateLayouts = []string{
	time.RFC3339,
	time.DateOnly,
	"2006-01-02 15:04",
	time.DateTime,
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseTime parses a frontmatter date value. Values without a zone are UTC.
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if tm, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return tm.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

func Slugify(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var out []rune
	lastDash := false

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]

		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			out = append(out, unicode.ToLower(r))
			lastDash = false
		default:
			if !lastDash && len(out) > 0 {
				out = append(out, '-')
				lastDash = true
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	return string(out)
}

func stringField(fm map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := fm[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case int, int64, float64:
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return ""
}

func boolField(fm map[string]any, key string) bool {
	switch v := fm[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true
		}
	}
	return false
}

var nonDigits = regexp.MustCompile(`[^0-9]+`)

// intField reads a positive integer; strings have every non-digit removed first.
func intField(fm map[string]any, keys ...string) (int, bool) {
	for _, k := range keys {
		switch v := fm[k].(type) {
		case int:
			if v > 0 {
				return v, true
			}
		case int64:
			if v > 0 {
				return int(v), true
			}
		case float64:
			if v >= 1 {
				return int(v), true
			}
		case string:
			if n, err := strconv.Atoi(nonDigits.ReplaceAllString(v, "")); err == nil && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}

func stringsField(fm map[string]any, key string) []string {
	switch v := fm[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		return strings.Split(v, ",")
	}
	return nil
}
