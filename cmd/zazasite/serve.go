package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"zazasite/internal/domain/content"
	"zazasite/internal/download"
	"zazasite/internal/index"
	"zazasite/internal/ingest"
	"zazasite/internal/logger"
	"zazasite/internal/posts"
	"zazasite/internal/serve"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the posts API, brand downloads and the trend cron endpoint",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := appConfig
	if err := cfg.RequireCronSecret(); err != nil {
		return exitError{code: 2, err: err}
	}
	addr := cfg.Server.Addr
	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		addr = f.Value.String()
	}

	st, err := index.Open(index.OpenOptions{Path: cfg.Build.IndexPath})
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer st.Close()

	norm := ingest.NewNormalizer(cfg.Site.DefaultAuthor)
	cache := posts.NewCache(func(ctx context.Context) ([]content.Post, error) {
		items, warns, err := ingest.Ingest(ctx, ingest.Options{
			SourceDir:  cfg.Build.ContentDir,
			Normalizer: norm,
		})
		for _, w := range warns {
			logger.Get().Warn().Str("path", w.Path).Msg(w.Msg)
		}
		return items, err
	})

	opt := serve.Options{
		Posts:      cache,
		Snapshot:   st,
		Clusters:   st,
		Downloads:  download.Builder{Root: cfg.Downloads.Root},
		CronSecret: cfg.Secrets.CronSecret,
		RunTimeout: cfg.Trends.RunTimeout,
		Log:        logger.Component("serve"),
	}
	if cfg.Trends.Enabled {
		in, closeIn, err := newIngestor(st)
		if err != nil {
			return err
		}
		defer closeIn()
		opt.Trends = in
	}

	s := serve.New(opt)
	defer s.Close()

	watchDir := ""
	if cfg.Server.Watch {
		watchDir = cfg.Build.ContentDir
	}
	return s.ListenAndServe(cmd.Context(), addr, watchDir)
}
