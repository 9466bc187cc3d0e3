// Package download bundles brand assets into ZIP archives.
package download

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

var (
	ErrUnknownType = errors.New("unknown download type")
	ErrEmpty       = errors.New("no files for download type")
)

// kinds maps a download type to the directories under the root it bundles.
var kinds = map[string][]string{
	"logos":       {"logos"},
	"headshots":   {"headshots"},
	"screenshots": {"screenshots"},
	"media-kit":   {"media-kit", "logos", "headshots", "screenshots"},
}

func Types() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func Valid(kind string) bool {
	_, ok := kinds[kind]
	return ok
}

func FileName(kind string) string {
	return "zaza-" + kind + ".zip"
}

type Builder struct {
	Root string
}

type entry struct {
	path string
	name string
}

// Files lists the archive members for kind in archive order.
func (b Builder) Files(kind string) ([]string, error) {
	entries, err := b.collect(kind)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out, nil
}

func (b Builder) collect(kind string) ([]entry, error) {
	dirs, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
	var out []entry
	for _, dir := range dirs {
		base := filepath.Join(b.Root, dir)
		if _, err := os.Stat(base); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != base && d.Name()[0] == '.' {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Name()[0] == '.' || !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(b.Root, path)
			if err != nil {
				return err
			}
			out = append(out, entry{path: path, name: filepath.ToSlash(rel)})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", base, err)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, kind)
	}
	return out, nil
}

// Write streams the archive for kind to w.
func (b Builder) Write(w io.Writer, kind string) error {
	entries, err := b.collect(kind)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(w)
	for _, e := range entries {
		if err := addFile(zw, e); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, e entry) error {
	f, err := os.Open(e.path)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(st)
	if err != nil {
		return err
	}
	hdr.Name = e.name
	hdr.Method = zip.Deflate
	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, f)
	return err
}
