package resources

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"zazasite/internal/domain/content"
	domainerr "zazasite/internal/domain/errors"
	"zazasite/internal/render"
)

type fakePDF struct {
	fail map[string]bool
}

func (f fakePDF) RenderPDF(ctx context.Context, htmlPath string) ([]byte, error) {
	for name := range f.fail {
		if strings.Contains(htmlPath, name) {
			return nil, errors.New("chrome crashed")
		}
	}
	return []byte("%PDF-1.7 fake"), nil
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *fakePublisher) Publish(ctx context.Context, key string, body []byte, contentType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func newGenerator(t *testing.T, src, out string, pdf PDFRenderer) *Generator {
	t.Helper()
	docs, err := render.NewDocumentRenderer("")
	if err != nil {
		t.Fatal(err)
	}
	return &Generator{
		Opt: Options{
			SourceDir:  src,
			OutDir:     out,
			PublicBase: "/resources",
			Company:    "Zaza Technologies",
			Workers:    2,
		},
		Markdown:  render.NewMarkdownRenderer(),
		Documents: docs,
		PDF:       pdf,
		Log:       zerolog.Nop(),
		Now:       func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func write(t *testing.T, dir, name, data string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseResourceDefaults(t *testing.T) {
	res, body, err := ParseResource([]byte("---\ntitle: Report Writing Guide\nslug: Report Writing\ncategory: Guides\ntoc: true\n---\n# Hi\n"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Slug != "report-writing" || res.Version != "1.0" || res.Lang != "en" || !res.TOC {
		t.Errorf("res = %+v", res)
	}
	if string(body) != "# Hi" {
		t.Errorf("body = %q", body)
	}
	if res.Stem() != "report-writing-v1.0-en" {
		t.Errorf("stem = %q", res.Stem())
	}
}

func TestValidateResource(t *testing.T) {
	err := ValidateResource(content.Resource{Title: "x", Slug: "y"})
	if !errors.Is(err, domainerr.ErrInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "Category") {
		t.Errorf("error should name the field: %v", err)
	}
	if err := ValidateResource(content.Resource{Title: "x", Slug: "y", Category: "z"}); err != nil {
		t.Errorf("valid resource rejected: %v", err)
	}
}

func TestBuildTOC(t *testing.T) {
	body := []byte("Overview\n========\n\n## Overview\n\n  ## Indented section\n\n## Getting **Started**\n\n```\n## not a heading\n```\n\n### Detail\n\n## FAQ ##\n")
	res, err := render.NewMarkdownRenderer().Render(body)
	if err != nil {
		t.Fatal(err)
	}
	toc := BuildTOC(res.Headings)
	for _, want := range []string{
		`<nav class="toc">`,
		`<li><a href="#overview-1">Overview</a></li>`,
		`<li><a href="#indented-section">Indented section</a></li>`,
		`<li><a href="#getting-started">Getting Started</a></li>`,
		`<li><a href="#faq">FAQ</a></li>`,
	} {
		if !strings.Contains(toc, want) {
			t.Errorf("missing %q in:\n%s", want, toc)
		}
	}
	if strings.Contains(toc, "not a heading") || strings.Contains(toc, "Detail") || strings.Contains(toc, `href="#overview"`) {
		t.Errorf("unexpected entries:\n%s", toc)
	}
	if BuildTOC([]render.Heading{{Level: 1, ID: "only", Text: "Only a title"}}) != "" {
		t.Error("expected empty TOC without level two headings")
	}
}

func TestTOCMatchesRenderedIDs(t *testing.T) {
	body := []byte("# Guide\n\n## Getting **Started**\n\n## Q&A: Parents\n\n# Guide\n\n## Q&A: Parents\n\nSetext\n------\n")
	res, err := render.NewMarkdownRenderer().Render(body)
	if err != nil {
		t.Fatal(err)
	}
	html := string(res.HTML)
	toc := BuildTOC(res.Headings)
	n := 0
	for _, h := range res.Headings {
		if h.Level != 2 {
			continue
		}
		n++
		if !strings.Contains(toc, `href="#`+h.ID+`"`) {
			t.Errorf("toc has no link for rendered id %q:\n%s", h.ID, toc)
		}
		if !strings.Contains(html, `<h2 id="`+h.ID+`"`) {
			t.Errorf("rendered html has no h2 with id %q", h.ID)
		}
	}
	if n != 4 || strings.Count(toc, "<li>") != 4 {
		t.Errorf("level two headings = %d, toc:\n%s", n, toc)
	}
}

func TestInjectTOC(t *testing.T) {
	if got := InjectTOC("<h1>T</h1><p>x</p>", "<nav/>"); got != "<h1>T</h1>\n<nav/><p>x</p>" {
		t.Errorf("after h1: %q", got)
	}
	if got := InjectTOC("<p>x</p>", "<nav/>"); got != "<nav/><p>x</p>" {
		t.Errorf("top: %q", got)
	}
	if got := InjectTOC("<p>x</p>", ""); got != "<p>x</p>" {
		t.Errorf("empty toc: %q", got)
	}
}

func TestBuildCover(t *testing.T) {
	if BuildCover(content.Resource{}) != "" {
		t.Error("no cover title means no cover")
	}
	c := BuildCover(content.Resource{CoverTitle: "Parents & Carers", CoverBadge: "Free", CoverSubtitle: "A guide"})
	for _, want := range []string{`class="cover"`, "Parents &amp; Carers", `cover-badge">Free`, `cover-subtitle">A guide`} {
		if !strings.Contains(c, want) {
			t.Errorf("missing %q in %q", want, c)
		}
	}
}

func TestGeneratorRun(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	out := filepath.Join(root, "out")

	write(t, src, "a-guide.md", "---\ntitle: Report Guide\nslug: report-guide\ncategory: Teacher Guides\nversion: \"2\"\ntoc: true\ncoverTitle: Report Writing\n---\n# Report Guide\n\n## Before you start\n\nText.\n\n## Checklist\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	write(t, src, "b-invalid.md", "---\ntitle: No category\nslug: nope\n---\nbody")
	write(t, src, "c-broken.md", "---\ntitle: Broken\nslug: broken\ncategory: Teacher Guides\nlang: FR\n---\nbody")
	write(t, src, "d-plain.md", "---\ntitle: Plain\nslug: plain\ncategory: Checklists\n---\nJust text")

	g := newGenerator(t, src, out, fakePDF{fail: map[string]bool{"broken": true}})
	pub := &fakePublisher{}
	g.Publisher = pub

	rep, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Processed != 2 || rep.Skipped != 1 || rep.Failed != 1 {
		t.Errorf("report = %+v", rep)
	}

	entries, err := ReadManifest(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	e := entries[0]
	if e.Slug != "report-guide-v2-en" || e.Category != "Teacher Guides" || e.Version != "2" || e.Lang != "en" {
		t.Errorf("entry = %+v", e)
	}
	if e.PDF != "/resources/teacher-guides/report-guide-v2-en.pdf" || e.HTML != "/resources/teacher-guides/report-guide-v2-en.html" {
		t.Errorf("paths = %s %s", e.PDF, e.HTML)
	}
	if e.Size != "13 B" {
		t.Errorf("size = %q", e.Size)
	}
	if entries[1].Slug != "plain-v1.0-en" {
		t.Errorf("second entry = %+v", entries[1])
	}

	html, err := os.ReadFile(filepath.Join(out, "teacher-guides", "report-guide-v2-en.html"))
	if err != nil {
		t.Fatal(err)
	}
	doc := string(html)
	coverAt := strings.Index(doc, `class="cover"`)
	h1At := strings.Index(doc, "</h1>")
	tocAt := strings.Index(doc, `<nav class="toc">`)
	if coverAt < 0 || h1At < 0 || tocAt < h1At || coverAt > h1At {
		t.Errorf("unexpected layout cover=%d h1=%d toc=%d", coverAt, h1At, tocAt)
	}
	if !strings.Contains(doc, "<table>") || !strings.Contains(doc, "Zaza Technologies") {
		t.Error("missing table or footer")
	}

	plain, _ := os.ReadFile(filepath.Join(out, "checklists", "plain-v1.0-en.html"))
	if strings.Contains(string(plain), `<nav class="toc">`) {
		t.Error("toc injected without being requested")
	}

	if _, err := os.Stat(filepath.Join(out, "teacher-guides", "broken-v1.0-fr.pdf")); !os.IsNotExist(err) {
		t.Errorf("failed pdf should not exist: %v", err)
	}

	missing, err := VerifyManifest(out, "/resources", entries)
	if err != nil || len(missing) != 0 {
		t.Errorf("VerifyManifest = %v err=%v", missing, err)
	}
	if len(pub.keys) != 5 || pub.keys[4] != "/resources/resources.manifest.json" {
		t.Errorf("published = %v", pub.keys)
	}
}

func TestGeneratorMissingSource(t *testing.T) {
	g := newGenerator(t, filepath.Join(t.TempDir(), "missing"), t.TempDir(), fakePDF{})
	if _, err := g.Run(context.Background()); !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("expected ErrSourceMissing, got %v", err)
	}
}

func TestVerifyManifestReportsMissing(t *testing.T) {
	out := t.TempDir()
	write(t, filepath.Join(out, "guides"), "a-v1.0-en.html", "<html></html>")
	missing, err := VerifyManifest(out, "/resources", []content.ManifestEntry{{
		HTML: "/resources/guides/a-v1.0-en.html",
		PDF:  "/resources/guides/a-v1.0-en.pdf",
	}})
	if err != nil {
		t.Fatal(err)
	}
	if len(missing) != 1 || missing[0] != "/resources/guides/a-v1.0-en.pdf" {
		t.Errorf("missing = %v", missing)
	}
}
