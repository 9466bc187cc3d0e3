package ingest

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"

	fp "zazasite/internal/domain/build"
	"zazasite/internal/domain/content"
)

// Warning describes a problem with one file. Skipped is set when the file
// was left out of the result.
type Warning struct {
	Path    string
	Msg     string
	Skipped bool
}

type Result struct {
	Index int
	Post  content.Post
	Warns []Warning
	Skip  bool
}

type Options struct {
	SourceDir  string
	Normalizer *Normalizer
	Workers    int
}

// Ingest loads every post under opt.SourceDir. Files are processed
// concurrently but the returned posts keep discovery order. Unreadable
// files and files with broken frontmatter or duplicate slugs are skipped
// with a warning.
func Ingest(ctx context.Context, opt Options) ([]content.Post, []Warning, error) {
	files, err := DiscoverSource(opt.SourceDir)
	if err != nil {
		return nil, nil, err
	}
	norm := opt.Normalizer
	if norm == nil {
		norm = NewNormalizer("")
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	jobs := make(chan SourceFile)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sf := range jobs {
				results <- processFile(norm, sf)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]Result, len(files))
	for r := range results {
		ordered[r.Index] = r
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var out []content.Post
	var warns []Warning
	seen := make(map[string]struct{}, len(files))
	for _, r := range ordered {
		warns = append(warns, r.Warns...)
		if r.Skip {
			continue
		}
		if _, ok := seen[r.Post.Slug]; ok {
			warns = append(warns, Warning{Path: r.Post.SourcePath, Msg: "duplicate slug, skipped: " + r.Post.Slug, Skipped: true})
			continue
		}
		seen[r.Post.Slug] = struct{}{}
		out = append(out, r.Post)
	}
	return out, warns, nil
}

func processFile(norm *Normalizer, sf SourceFile) Result {
	raw, err := os.ReadFile(sf.Path)
	if err != nil {
		return skipped(sf, "failed to read file: "+err.Error())
	}
	fm, body, err := ParseFrontMatter(raw)
	if err != nil {
		return skipped(sf, "failed to parse front matter: "+err.Error())
	}

	post := norm.Normalize(fm, body, sf.Path, sf.Index)
	post.ContentHash = fp.HashBytes(raw)

	var warns []Warning
	if post.Slug == "" {
		return skipped(sf, "empty slug")
	}
	if strings.TrimSpace(post.Title) == "" {
		warns = append(warns, Warning{Path: sf.Path, Msg: "title is empty"})
	}
	if !post.HasDate() {
		warns = append(warns, Warning{Path: sf.Path, Msg: "no usable date, using epoch"})
	}
	return Result{Index: sf.Index, Post: post, Warns: warns}
}

func skipped(sf SourceFile, msg string) Result {
	return Result{
		Index: sf.Index,
		Skip:  true,
		Warns: []Warning{{Path: sf.Path, Msg: msg, Skipped: true}},
	}
}

// SkippedCount counts the warnings that dropped a file.
func SkippedCount(warns []Warning) int {
	n := 0
	for _, w := range warns {
		if w.Skipped {
			n++
		}
	}
	return n
}
