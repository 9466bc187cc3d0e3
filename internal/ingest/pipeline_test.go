package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, data string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseFrontMatter(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("---\ntitle: Hello\nauthor:\n  name: Sam\n---\n\nBody text\n"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm["title"] != "Hello" {
		t.Errorf("title = %v", fm["title"])
	}
	if a, ok := fm["author"].(map[string]any); !ok || a["name"] != "Sam" {
		t.Errorf("author = %#v", fm["author"])
	}
	if string(body) != "Body text" {
		t.Errorf("body = %q", body)
	}

	fm, body, err = ParseFrontMatter([]byte("Just markdown"))
	if err != nil {
		t.Fatalf("no frontmatter should not fail: %v", err)
	}
	if len(fm) != 0 || string(body) != "Just markdown" {
		t.Errorf("fm = %v body = %q", fm, body)
	}

	if _, _, err := ParseFrontMatter([]byte("---\ntitle: [unclosed\n---\nbody")); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestIngest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a-first.md", "---\ntitle: First\ndate: 2024-01-01\ncategory: ai-tools\n---\nHello world")
	writeFile(t, dir, "b-broken.md", "---\ntitle: [oops\n---\nbody")
	writeFile(t, dir, "c-second.mdx", "---\ntitle: Second\nslug: a-first\n---\nDuplicate slug")
	writeFile(t, dir, "d-third.markdown", "---\ntitle: Third\npublishDate: 2024-02-01\n---\nThird body")
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "nested/e-fourth.md", "No frontmatter at all")

	posts, warns, err := Ingest(context.Background(), Options{SourceDir: dir, Workers: 3})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	var slugs []string
	for _, p := range posts {
		slugs = append(slugs, p.Slug)
	}
	if got, want := strings.Join(slugs, ","), "a-first,d-third,e-fourth"; got != want {
		t.Errorf("slugs = %s, want %s", got, want)
	}

	var broken, dup bool
	for _, w := range warns {
		if strings.HasSuffix(w.Path, "b-broken.md") && strings.Contains(w.Msg, "front matter") {
			broken = true
		}
		if strings.HasSuffix(w.Path, "c-second.mdx") && strings.Contains(w.Msg, "duplicate slug") {
			dup = true
		}
	}
	if !broken || !dup {
		t.Errorf("missing warnings: %+v", warns)
	}
	if n := SkippedCount(warns); n != 2 {
		t.Errorf("skipped = %d, want 2: %+v", n, warns)
	}
	if posts[0].ContentHash == "" {
		t.Error("content hash not set")
	}
	if posts[2].HasDate() {
		t.Error("post without date should carry the epoch sentinel")
	}
}

func TestIngestUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a-ok.md", "---\ntitle: OK\ndate: 2024-01-02\n---\nBody")
	if err := os.Symlink(filepath.Join(dir, "gone.md"), filepath.Join(dir, "b-dangling.md")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	writeFile(t, dir, "c-ok.md", "---\ntitle: Also OK\ndate: 2024-01-01\n---\nBody")

	posts, warns, err := Ingest(context.Background(), Options{SourceDir: dir})
	if err != nil {
		t.Fatalf("one unreadable file should not fail the batch: %v", err)
	}
	if len(posts) != 2 || posts[0].Slug != "a-ok" || posts[1].Slug != "c-ok" {
		t.Errorf("posts = %+v", posts)
	}
	if len(warns) != 1 || !warns[0].Skipped || !strings.Contains(warns[0].Msg, "failed to read file") {
		t.Errorf("warns = %+v", warns)
	}
}

func TestIngestMissingDir(t *testing.T) {
	posts, warns, err := Ingest(context.Background(), Options{SourceDir: filepath.Join(t.TempDir(), "missing")})
	if err != nil {
		t.Fatalf("missing dir should not fail: %v", err)
	}
	if len(posts) != 0 || len(warns) != 0 {
		t.Errorf("posts = %d warns = %d", len(posts), len(warns))
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("one two three", 5); got != "one two three" {
		t.Errorf("short body = %q", got)
	}
	if got := Excerpt("a b c d e f", 5); got != "a b c d e…" {
		t.Errorf("long body = %q", got)
	}
	if got := Excerpt("a b c d e", 5); got != "a b c d e" {
		t.Errorf("exact length = %q", got)
	}
	if got := StripMarkup("> quote\n\n`code`   - item ![img](x)"); got != "quote code item imgx" {
		t.Errorf("StripMarkup = %q", got)
	}
}
