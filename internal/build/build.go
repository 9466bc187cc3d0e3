package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	fp "zazasite/internal/domain/build"
	"zazasite/internal/domain/config"
	"zazasite/internal/domain/content"
	"zazasite/internal/images"
	"zazasite/internal/index"
	"zazasite/internal/ingest"
	"zazasite/internal/posts"
)

type Builder struct {
	Cfg config.Config
	Log zerolog.Logger
	// Force rewrites the outputs even when the snapshot is unchanged.
	Force bool
}

type Result struct {
	Posts         int
	Skipped       int
	Warnings      []ingest.Warning
	MissingImages []images.Missing
	SnapshotHash  string
	Unchanged     bool
	Duration      time.Duration
}

// Run ingests the content directory, writes posts.json and refreshes the
// index snapshot. Nothing is written when the snapshot hash matches the
// stored one and the JSON output still exists.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	cfg := b.Cfg.Build

	items, warns, err := ingest.Ingest(ctx, ingest.Options{
		SourceDir:  cfg.ContentDir,
		Normalizer: ingest.NewNormalizer(b.Cfg.Site.DefaultAuthor),
	})
	if err != nil {
		return nil, fmt.Errorf("ingest failed: %w", err)
	}
	for _, w := range warns {
		b.Log.Warn().Str("path", w.Path).Msg(w.Msg)
	}

	all := posts.New(items).All()
	res := &Result{Posts: len(all), Skipped: ingest.SkippedCount(warns), Warnings: warns}
	if len(all) == 0 {
		b.Log.Warn().Str("dir", cfg.ContentDir).Msg("no posts found")
	}

	if cfg.CheckImages {
		rep := images.Check(all, cfg.PublicDir)
		for _, m := range rep.Missing {
			b.Log.Warn().Str("slug", m.Slug).Str("image", m.Image).Msg("missing cover image, using fallback")
		}
		images.ApplyFallback(all, rep)
		res.MissingImages = rep.Missing
	}

	f := posts.Fingerprinted(all)
	f.ConfigHash = b.configHash()
	f.ComputeSnapshotHash()
	res.SnapshotHash = f.SnapshotHash

	st, err := index.Open(index.OpenOptions{Path: cfg.IndexPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer st.Close()

	prev, err := st.SnapshotHash()
	if err != nil && !errors.Is(err, index.ErrNotFound) {
		return nil, fmt.Errorf("read snapshot hash: %w", err)
	}
	if !b.Force && prev == f.SnapshotHash && fileExists(cfg.Output) {
		res.Unchanged = true
		res.Duration = time.Since(start)
		b.Log.Info().Int("posts", res.Posts).Int("skipped", res.Skipped).Msg("content unchanged, skipping write")
		return res, nil
	}

	if err := writeJSON(cfg.Output, all); err != nil {
		return nil, fmt.Errorf("write %s: %w", cfg.Output, err)
	}
	if err := st.RebuildPosts(all, f.SnapshotHash); err != nil {
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}

	res.Duration = time.Since(start)
	b.Log.Info().
		Int("posts", res.Posts).
		Int("skipped", res.Skipped).
		Int("warnings", len(warns)).
		Str("output", cfg.Output).
		Dur("took", res.Duration).
		Msg("build complete")
	return res, nil
}

func (b *Builder) configHash() string {
	return fp.HashString(b.Cfg.Site.DefaultAuthor + "\x00" + strconv.FormatBool(b.Cfg.Build.CheckImages))
}

func writeJSON(path string, all []content.Post) error {
	if all == nil {
		all = []content.Post{}
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(filepath.Dir(path), filepath.Base(path), append(data, '\n'))
}

func writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// LoadPosts reads a posts.json written by Run.
func LoadPosts(path string) ([]content.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []content.Post
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}
