// Package serve exposes the posts API, the trend cron and debug endpoints and
// brand downloads over HTTP.
package serve

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"zazasite/internal/domain/content"
	"zazasite/internal/download"
	"zazasite/internal/posts"
	"zazasite/internal/trends"
)

const (
	defaultTrendLimit = 20
	maxTrendLimit     = 200
	defaultRecentDays = 30
	defaultRunTimeout = 5 * time.Minute
)

// TrendRunner runs one ingestion. *trends.Ingestor satisfies it.
type TrendRunner interface {
	Run(ctx context.Context) (trends.RunResult, error)
}

// ClusterReader lists stored clusters. *index.Store satisfies it.
type ClusterReader interface {
	LatestClusters(limit int) ([]content.TopicCluster, error)
}

// PostSnapshot persists the current post set. *index.Store satisfies it.
type PostSnapshot interface {
	RebuildPosts(posts []content.Post, snapshotHash string) error
}

type Options struct {
	Posts      *posts.Cache
	Snapshot   PostSnapshot
	Trends     TrendRunner
	Clusters   ClusterReader
	Downloads  download.Builder
	CronSecret string
	RunTimeout time.Duration
	Log        zerolog.Logger
	Now        func() time.Time
}

type Server struct {
	opt Options
	app *fiber.App
	log zerolog.Logger

	watcher *fsnotify.Watcher
}

func New(opt Options) *Server {
	if opt.RunTimeout <= 0 {
		opt.RunTimeout = defaultRunTimeout
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	s := &Server{opt: opt, log: opt.Log}
	s.app = fiber.New(fiber.Config{
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		ErrorHandler:          ErrorHandler(s.log),
		DisableStartupMessage: true,
	})
	s.routes()
	return s
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(RequestLogger(s.log))

	s.app.Get("/health", s.handleHealth)

	s.app.Get("/cron/ingest", s.handleCronIngest)
	s.app.Get("/debug/trends", s.handleDebugTrends)
	s.app.Get("/debug/export", s.handleDebugExport)

	api := s.app.Group("/api")
	api.Get("/download", s.handleDownload)
	api.Get("/categories", s.handleCategories)

	p := api.Group("/posts")
	p.Get("/", s.handlePosts)
	p.Get("/featured", s.handleFeatured)
	p.Get("/popular", s.handlePopular)
	p.Get("/recent", s.handleRecent)
	p.Get("/:slug", s.handlePost)

	s.app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}

// ListenAndServe blocks until ctx is done or the listener fails. When
// watchDir is set, content changes reload the posts cache.
func (s *Server) ListenAndServe(ctx context.Context, addr, watchDir string) error {
	if s.opt.Posts != nil {
		if _, err := s.opt.Posts.Get(ctx); err != nil {
			return fmt.Errorf("load posts: %w", err)
		}
	}
	if watchDir != "" {
		if err := s.startWatch(ctx, watchDir); err != nil {
			return fmt.Errorf("watch %s: %w", watchDir, err)
		}
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errc <- s.app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		s.log.Error().Err(err).Msg("forced shutdown")
	}
	return nil
}

func (s *Server) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
