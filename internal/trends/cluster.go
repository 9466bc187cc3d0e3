package trends

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"zazasite/internal/domain/content"
)

const (
	// SimilarityThreshold must be exceeded for an item to join a cluster.
	SimilarityThreshold = 0.3
	MinClusterSize      = 2
	FallbackTopic       = "Emerging Topic"
	nameKeywords        = 3
)

type ClusterOptions struct {
	Threshold float64
	MinSize   int
	Now       time.Time
}

// Jaccard is |a ∩ b| / |a ∪ b| over lower-cased keywords. Two empty sets give 0.
func Jaccard(a, b []string) float64 {
	sa, sb := lowerSet(a), lowerSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}
	inter := 0
	for k := range sa {
		if _, ok := sb[k]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

func lowerSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}

// Cluster groups items greedily in input order: each unclustered item seeds a
// cluster and absorbs every later unclustered item whose keywords are similar
// enough to the seed's. Absorbed keywords are merged for naming only. The
// result depends on input order. Clusters smaller than MinSize are dropped;
// the rest are ranked by trend score.
func Cluster(items []content.TrendItem, opt ClusterOptions) []content.TopicCluster {
	if opt.Threshold <= 0 {
		opt.Threshold = SimilarityThreshold
	}
	if opt.MinSize <= 0 {
		opt.MinSize = MinClusterSize
	}
	if opt.Now.IsZero() {
		opt.Now = time.Now().UTC()
	}

	total := len(items)
	used := make([]bool, total)
	var out []content.TopicCluster

	for i := range items {
		if used[i] {
			continue
		}
		used[i] = true
		seed := items[i].Keywords
		keywords := appendUnique(nil, seed)
		members := []string{items[i].ID}

		for j := i + 1; j < total; j++ {
			if used[j] {
				continue
			}
			if Jaccard(seed, items[j].Keywords) > opt.Threshold {
				used[j] = true
				members = append(members, items[j].ID)
				keywords = appendUnique(keywords, items[j].Keywords)
			}
		}
		if len(members) < opt.MinSize {
			continue
		}

		volume := len(members)
		confidence := float64(volume) / float64(total)
		out = append(out, content.TopicCluster{
			Topic:      TopicName(keywords),
			Keywords:   keywords,
			Items:      members,
			Volume:     volume,
			Confidence: confidence,
			TrendScore: float64(volume) * confidence,
			CreatedAt:  opt.Now,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TrendScore > out[j].TrendScore
	})
	return out
}

func appendUnique(dst, words []string) []string {
	seen := lowerSet(dst)
	for _, w := range words {
		lw := strings.ToLower(w)
		if _, ok := seen[lw]; ok {
			continue
		}
		seen[lw] = struct{}{}
		dst = append(dst, lw)
	}
	return dst
}

// TopicName joins the three longest keywords longer than three characters.
func TopicName(keywords []string) string {
	var long []string
	for _, k := range keywords {
		if utf8.RuneCountInString(k) > 3 {
			long = append(long, k)
		}
	}
	if len(long) == 0 {
		return FallbackTopic
	}
	sort.SliceStable(long, func(i, j int) bool {
		return utf8.RuneCountInString(long[i]) > utf8.RuneCountInString(long[j])
	})
	if len(long) > nameKeywords {
		long = long[:nameKeywords]
	}
	return strings.Join(long, " & ")
}
