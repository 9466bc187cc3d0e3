// Package resources turns the markdown resource corpus into styled HTML,
// A4 PDFs and a manifest of the generated files.
package resources

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"zazasite/internal/domain/content"
	"zazasite/internal/ingest"
	"zazasite/internal/render"
)

var ErrSourceMissing = errors.New("resources: source directory does not exist")

type Options struct {
	SourceDir  string
	OutDir     string
	PublicBase string
	Company    string
	Workers    int
}

type Generator struct {
	Opt       Options
	Markdown  *render.MarkdownRenderer
	Documents *render.DocumentRenderer
	PDF       PDFRenderer
	Publisher Publisher
	Log       zerolog.Logger
	Now       func() time.Time
}

type Report struct {
	Processed int
	Skipped   int
	Failed    int
	Published int
	Entries   []content.ManifestEntry
}

type pendingPDF struct {
	res      content.Resource
	htmlPath string
	pdfPath  string
	htmlURL  string
	pdfURL   string
}

// Run generates every resource and rewrites the manifest. Invalid sources and
// PDF failures are logged and left out of the manifest.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	if st, err := os.Stat(g.Opt.SourceDir); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, g.Opt.SourceDir)
	}
	files, err := ingest.DiscoverSource(g.Opt.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("discover resources: %w", err)
	}

	rep := &Report{}
	var pending []pendingPDF
	for _, sf := range files {
		p, err := g.buildHTML(sf.Path)
		if err != nil {
			rep.Skipped++
			g.Log.Warn().Err(err).Str("path", sf.Path).Msg("skipping resource")
			continue
		}
		pending = append(pending, p)
	}

	entries := g.renderPDFs(ctx, pending)
	for _, e := range entries {
		if e == nil {
			rep.Failed++
			continue
		}
		rep.Processed++
		rep.Entries = append(rep.Entries, *e)
	}

	if err := WriteManifest(g.Opt.OutDir, rep.Entries); err != nil {
		return rep, fmt.Errorf("write manifest: %w", err)
	}
	if g.Publisher != nil {
		if err := g.publish(ctx, rep); err != nil {
			return rep, err
		}
	}
	return rep, ctx.Err()
}

func (g *Generator) buildHTML(srcPath string) (pendingPDF, error) {
	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return pendingPDF{}, err
	}
	res, body, err := ParseResource(raw)
	if err != nil {
		return pendingPDF{}, err
	}
	if err := ValidateResource(res); err != nil {
		return pendingPDF{}, err
	}

	doc, err := g.BuildDocument(res, body)
	if err != nil {
		return pendingPDF{}, err
	}

	catSeg := ingest.Slugify(res.Category)
	stem := res.Stem()
	p := pendingPDF{
		res:      res,
		htmlPath: filepath.Join(g.Opt.OutDir, catSeg, stem+".html"),
		pdfPath:  filepath.Join(g.Opt.OutDir, catSeg, stem+".pdf"),
		htmlURL:  publicURL(g.Opt.PublicBase, catSeg, stem+".html"),
		pdfURL:   publicURL(g.Opt.PublicBase, catSeg, stem+".pdf"),
	}
	if err := writeFile(p.htmlPath, doc); err != nil {
		return pendingPDF{}, fmt.Errorf("write html: %w", err)
	}
	return p, nil
}

// BuildDocument runs the markdown to HTML steps for one resource: cover,
// render, optional table of contents and the document wrapper.
func (g *Generator) BuildDocument(res content.Resource, body []byte) ([]byte, error) {
	src := append([]byte(BuildCover(res)), body...)

	out, err := g.Markdown.Render(src)
	if err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	htmlBody := string(out.HTML)
	if res.TOC {
		htmlBody = InjectTOC(htmlBody, BuildTOC(out.Headings))
	}

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return g.Documents.Render(render.DocumentPage{
		Title:       res.Title,
		Lang:        res.Lang,
		Company:     g.Opt.Company,
		Description: res.Description,
		Body:        template.HTML(htmlBody),
		Generated:   now(),
	})
}

// renderPDFs keeps input order; failed items are nil.
func (g *Generator) renderPDFs(ctx context.Context, pending []pendingPDF) []*content.ManifestEntry {
	out := make([]*content.ManifestEntry, len(pending))
	workers := g.Opt.Workers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = g.renderOne(ctx, pending[i])
			}
		}()
	}
	for i := range pending {
		if ctx.Err() != nil {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

func (g *Generator) renderOne(ctx context.Context, p pendingPDF) *content.ManifestEntry {
	pdf, err := g.PDF.RenderPDF(ctx, p.htmlPath)
	if err == nil && len(pdf) == 0 {
		err = errors.New("empty pdf")
	}
	if err == nil {
		err = writeFile(p.pdfPath, pdf)
	}
	if err != nil {
		g.Log.Error().Err(err).Str("slug", p.res.Slug).Msg("pdf generation failed")
		return nil
	}
	g.Log.Info().Str("pdf", p.pdfURL).Msg("resource generated")
	return &content.ManifestEntry{
		Title:    p.res.Title,
		Slug:     p.res.Stem(),
		Category: p.res.Category,
		Lang:     p.res.Lang,
		Version:  p.res.Version,
		PDF:      p.pdfURL,
		HTML:     p.htmlURL,
		Size:     humanize.Bytes(uint64(len(pdf))),
	}
}

func (g *Generator) publish(ctx context.Context, rep *Report) error {
	for _, e := range rep.Entries {
		for _, item := range []struct{ url, ctype string }{
			{e.HTML, "text/html; charset=utf-8"},
			{e.PDF, "application/pdf"},
		} {
			data, err := os.ReadFile(localPath(g.Opt.OutDir, g.Opt.PublicBase, item.url))
			if err != nil {
				g.Log.Error().Err(err).Str("key", item.url).Msg("publish read failed")
				continue
			}
			if err := g.Publisher.Publish(ctx, item.url, data, item.ctype); err != nil {
				g.Log.Error().Err(err).Str("key", item.url).Msg("publish failed")
				continue
			}
			rep.Published++
		}
	}
	manifest, err := os.ReadFile(filepath.Join(g.Opt.OutDir, ManifestName))
	if err != nil {
		return fmt.Errorf("publish manifest: %w", err)
	}
	key := publicURL(g.Opt.PublicBase, ManifestName)
	if err := g.Publisher.Publish(ctx, key, manifest, "application/json"); err != nil {
		return fmt.Errorf("publish manifest: %w", err)
	}
	return nil
}

func publicURL(base string, parts ...string) string {
	return path.Join(append([]string{"/", base}, parts...)...)
}
