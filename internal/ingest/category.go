package ingest

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultCategory = "General"

// AllCategories is the pseudo-category that selects every post.
const AllCategories = "All Articles"

var categoryAliases = map[string][]string{
	"AI Tools":              {"ai tools", "ai tool", "artificial intelligence", "ai"},
	"Teacher Tips":          {"teaching strategies", "teaching tips", "teacher tip", "tips"},
	"Classroom Management":  {"classroom", "behaviour management", "behavior management"},
	"Parent Communication":  {"parents", "parent engagement", "parent communications"},
	"Lesson Planning":       {"lesson plans", "lesson plan", "planning"},
	"Assessment & Feedback": {"assessment", "feedback", "marking", "report writing"},
	"Teacher Wellbeing":     {"wellbeing", "well being", "teacher wellness"},
	"EdTech":                {"ed tech", "education technology", "edtech news"},
	"Product Updates":       {"product", "updates", "news", "release notes"},
	DefaultCategory:         {"uncategorized", "uncategorised"},
}

var categoryTable = buildCategoryTable(categoryAliases)

func buildCategoryTable(aliases map[string][]string) map[string]string {
	t := make(map[string]string)
	for canonical, list := range aliases {
		t[categoryKey(canonical)] = canonical
		for _, a := range list {
			t[categoryKey(a)] = canonical
		}
	}
	return t
}

// categoryKey lower-cases s, drops punctuation and joins words with single spaces.
func categoryKey(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case r == '-' || r == '_' || unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}

var aiWord = regexp.MustCompile(`\bAi\b`)

// NormalizeCategory maps a raw category to its display form.
// NormalizeCategory(NormalizeCategory(x)) == NormalizeCategory(x) for every x.
func NormalizeCategory(raw string) string {
	key := categoryKey(raw)
	if key == "" {
		return DefaultCategory
	}
	if c, ok := categoryTable[key]; ok {
		return c
	}
	title := cases.Title(language.English).String(key)
	return aiWord.ReplaceAllString(title, "AI")
}

// IsAllCategories reports whether cat selects every post.
func IsAllCategories(cat string) bool {
	cat = strings.TrimSpace(cat)
	return cat == "" || strings.EqualFold(cat, AllCategories)
}
