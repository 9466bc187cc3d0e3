package serve

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"zazasite/internal/posts"
)

const reloadDebounce = 200 * time.Millisecond

func (s *Server) startWatch(ctx context.Context, root string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = w

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = w.Close()
		s.watcher = nil
		return err
	}

	go s.watchLoop(ctx)
	return nil
}

func (s *Server) watchLoop(ctx context.Context) {
	s.log.Info().Msg("watching for content changes")
	debounce := time.NewTicker(time.Hour)
	debounce.Stop()

	trigger := func() {
		select {
		case <-debounce.C:
		default:
		}
		debounce.Reset(reloadDebounce)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					_ = s.watcher.Add(ev.Name)
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				trigger()
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn().Err(err).Msg("watcher error")
		case <-debounce.C:
			debounce.Stop()
			reloadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := s.Reload(reloadCtx); err != nil {
				s.log.Error().Err(err).Msg("reload failed")
			}
			cancel()
		}
	}
}

// Reload refreshes the posts cache and, when the content changed, the
// stored snapshot.
func (s *Server) Reload(ctx context.Context) error {
	if s.opt.Posts == nil {
		return nil
	}
	changed, err := s.opt.Posts.Reload(ctx)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	coll, err := s.opt.Posts.Get(ctx)
	if err != nil {
		return err
	}
	all := coll.All()
	if s.opt.Snapshot != nil {
		if err := s.opt.Snapshot.RebuildPosts(all, posts.Fingerprinted(all).SnapshotHash); err != nil {
			return err
		}
	}
	s.log.Info().Int("posts", len(all)).Msg("content reloaded")
	return nil
}
