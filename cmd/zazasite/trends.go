package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"zazasite/internal/index"
	"zazasite/internal/logger"
	"zazasite/internal/trends"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Trend ingestion commands",
}

var trendsIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Runs one trend ingestion and stores the clusters",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(appConfig.Trends.Feeds)+len(appConfig.Trends.Subreddits) == 0 && appConfig.Trends.TwitterQuery == "" {
			return exitError{code: 1, err: errors.New("no trend sources configured")}
		}
		st, err := index.Open(index.OpenOptions{Path: appConfig.Build.IndexPath})
		if err != nil {
			return fmt.Errorf("open index: %w", err)
		}
		defer st.Close()

		in, closeIn, err := newIngestor(st)
		if err != nil {
			return err
		}
		defer closeIn()

		ctx := cmd.Context()
		if d := appConfig.Trends.RunTimeout; d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		res, err := in.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("raw items: %d  trend signals: %d\n", res.RawItems, res.TrendSignals)
		return nil
	},
}

// newIngestor wires the configured sources to redis when trends.redis_url
// is set and to process local state otherwise.
func newIngestor(store trends.ClusterStore) (*trends.Ingestor, func(), error) {
	tc := appConfig.Trends
	in := &trends.Ingestor{
		Sources:  trends.SourcesFromConfig(tc, appConfig.Secrets),
		Store:    store,
		Keywords: tc.Keywords,
		Log:      logger.Component("trends"),
	}
	if tc.RedisURL == "" {
		in.Seen = trends.NewMemorySeen()
		in.Lock = &trends.LocalLock{}
		return in, func() {}, nil
	}
	client, err := trends.NewRedisClient(tc.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	in.Seen = &trends.RedisSeen{Client: client, TTL: tc.SeenTTL}
	in.Lock = &trends.RedisLock{Client: client, TTL: tc.LockTTL}
	return in, func() { _ = client.Close() }, nil
}

func init() {
	trendsCmd.AddCommand(trendsIngestCmd)
	rootCmd.AddCommand(trendsCmd)
}
