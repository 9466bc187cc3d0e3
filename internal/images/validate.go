// Package images checks that cover images referenced by posts exist under
// the public directory.
package images

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"zazasite/internal/cover"
	"zazasite/internal/domain/content"
)

type Missing struct {
	Slug  string `json:"slug"`
	Image string `json:"image"`
	Path  string `json:"path"`
}

type Report struct {
	Checked int
	Remote  int
	Missing []Missing
}

func (r Report) OK() bool { return len(r.Missing) == 0 }

// IsLocal reports whether an image URL points into the site itself.
func IsLocal(image string) bool {
	if image == "" || strings.HasPrefix(image, "//") || strings.HasPrefix(image, "data:") {
		return false
	}
	u, err := url.Parse(image)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// LocalPath maps a site-relative image URL to a file under publicDir.
// Query strings and fragments are ignored and ".." cannot escape the root.
func LocalPath(publicDir, image string) string {
	if i := strings.IndexAny(image, "?#"); i >= 0 {
		image = image[:i]
	}
	clean := path.Clean("/" + image)
	return filepath.Join(publicDir, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
}

// Check stats every local image once. Remote images are counted but not fetched.
func Check(posts []content.Post, publicDir string) Report {
	var rep Report
	exists := make(map[string]bool)
	for _, p := range posts {
		if !IsLocal(p.Image) {
			rep.Remote++
			continue
		}
		rep.Checked++
		fp := LocalPath(publicDir, p.Image)
		ok, seen := exists[fp]
		if !seen {
			st, err := os.Stat(fp)
			ok = err == nil && !st.IsDir()
			exists[fp] = ok
		}
		if !ok {
			rep.Missing = append(rep.Missing, Missing{Slug: p.Slug, Image: p.Image, Path: fp})
		}
	}
	return rep
}

// ApplyFallback replaces missing images with the default cover and returns
// how many posts changed.
func ApplyFallback(posts []content.Post, rep Report) int {
	bySlug := make(map[string]string, len(rep.Missing))
	for _, m := range rep.Missing {
		bySlug[m.Slug] = m.Image
	}
	n := 0
	for i := range posts {
		if img, ok := bySlug[posts[i].Slug]; ok && posts[i].Image == img && img != cover.DefaultImage {
			posts[i].Image = cover.DefaultImage
			n++
		}
	}
	return n
}
