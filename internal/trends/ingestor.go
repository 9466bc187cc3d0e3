package trends

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"zazasite/internal/domain/config"
	"zazasite/internal/domain/content"
)

// ClusterStore persists a finished run. *index.Store satisfies it.
type ClusterStore interface {
	SaveRun(run content.IngestRun, clusters []content.TopicCluster) (content.IngestRun, []content.TopicCluster, error)
}

type RunResult struct {
	RawItems     int `json:"rawItems"`
	TrendSignals int `json:"trendSignals"`
}

type Ingestor struct {
	Sources  []Source
	Seen     SeenStore
	Lock     Lock
	Store    ClusterStore
	Keywords int
	Log      zerolog.Logger
	Now      func() time.Time
}

// Run collects every source, drops items seen by an earlier run, clusters
// the rest and stores the result. A failing source is skipped. It returns
// ErrRunInProgress when another run holds the lock.
func (in *Ingestor) Run(ctx context.Context) (RunResult, error) {
	if in.Lock != nil {
		release, err := in.Lock.Acquire(ctx)
		if err != nil {
			return RunResult{}, err
		}
		defer release()
	}

	now := time.Now
	if in.Now != nil {
		now = in.Now
	}
	run := content.IngestRun{StartedAt: now().UTC()}

	items, failed := in.collect(ctx)
	run.Failed = failed
	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}

	fresh, err := in.dedupe(ctx, items)
	if err != nil {
		return RunResult{}, err
	}
	run.RawItems = len(fresh)

	for i := range fresh {
		fresh[i].Keywords = ExtractKeywords(strings.TrimSpace(fresh[i].Title+" "+fresh[i].Text), in.Keywords)
	}
	finished := now().UTC()
	clusters := Cluster(fresh, ClusterOptions{Now: finished})
	run.FinishedAt = finished

	if in.Store != nil {
		if run, clusters, err = in.Store.SaveRun(run, clusters); err != nil {
			return RunResult{}, fmt.Errorf("save run: %w", err)
		}
	}
	if in.Seen != nil {
		ids := make([]string, len(fresh))
		for i, it := range fresh {
			ids[i] = it.ID
		}
		if err := in.Seen.Mark(ctx, ids); err != nil {
			in.Log.Warn().Err(err).Msg("mark seen failed")
		}
	}

	in.Log.Info().
		Str("run", run.ID).
		Int("raw_items", run.RawItems).
		Int("trend_signals", len(clusters)).
		Strs("failed_sources", run.Failed).
		Msg("trend ingestion finished")
	return RunResult{RawItems: run.RawItems, TrendSignals: len(clusters)}, nil
}

func (in *Ingestor) collect(ctx context.Context) ([]content.TrendItem, []string) {
	results := make([][]content.TrendItem, len(in.Sources))
	errs := make([]error, len(in.Sources))
	var wg sync.WaitGroup
	for i, src := range in.Sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i], errs[i] = src.Fetch(ctx)
		}(i, src)
	}
	wg.Wait()

	var items []content.TrendItem
	var failed []string
	for i, src := range in.Sources {
		if errs[i] != nil {
			in.Log.Warn().Err(errs[i]).Str("source", src.Name()).Msg("source failed")
			failed = append(failed, src.Name())
			continue
		}
		items = append(items, results[i]...)
	}
	return items, failed
}

// dedupe keeps the first occurrence of each ID and drops IDs already seen.
func (in *Ingestor) dedupe(ctx context.Context, items []content.TrendItem) ([]content.TrendItem, error) {
	unique := make([]content.TrendItem, 0, len(items))
	ids := make([]string, 0, len(items))
	dup := make(map[string]struct{}, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Title+it.Text) == "" {
			continue
		}
		if _, ok := dup[it.ID]; ok {
			continue
		}
		dup[it.ID] = struct{}{}
		unique = append(unique, it)
		ids = append(ids, it.ID)
	}
	if in.Seen == nil {
		return unique, nil
	}
	seen, err := in.Seen.Seen(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := unique[:0]
	for _, it := range unique {
		if !seen[it.ID] {
			out = append(out, it)
		}
	}
	return out, nil
}

// SourcesFromConfig builds the collectors enabled by configuration.
func SourcesFromConfig(cfg config.TrendsConfig, sec config.Secrets) []Source {
	var out []Source
	for _, u := range cfg.Feeds {
		out = append(out, NewRSSSource(u))
	}
	creds := RedditCredentials{ClientID: sec.RedditClientID, ClientSecret: sec.RedditClientSecret}
	for _, sub := range cfg.Subreddits {
		out = append(out, NewRedditSource(sub, creds))
	}
	if cfg.TwitterQuery != "" && sec.TwitterBearer != "" {
		out = append(out, NewTwitterSource(cfg.TwitterQuery, sec.TwitterBearer))
	}
	return out
}
