package trends

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"zazasite/internal/domain/content"
)

func TestExtractKeywords(t *testing.T) {
	kws := ExtractKeywords("AI grading tools are really changing grading for teachers. Teachers love AI grading.", 5)
	want := []string{"grading", "ai grading", "ai", "teachers", "grading tools"}
	if !reflect.DeepEqual(kws, want) {
		t.Fatalf("keywords = %v, want %v", kws, want)
	}
	for _, k := range kws {
		if k == "really" || k == "are" || k == "for" {
			t.Errorf("stopword %q kept", k)
		}
	}
	if got := ExtractKeywords("the and of", 5); got != nil {
		t.Errorf("only stopwords: %v", got)
	}
}

func TestExtractKeywordsEarlyBoost(t *testing.T) {
	filler := strings.Repeat("x ", 60)
	kws := ExtractKeywords("lesson planning "+filler+"assessment assessment", 3)
	// assessment 2, lesson planning 1.5*1.3, lesson 1.5 (earlier than planning)
	want := []string{"assessment", "lesson planning", "lesson"}
	if !reflect.DeepEqual(kws, want) {
		t.Errorf("keywords = %v, want %v", kws, want)
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		a, b []string
		want float64
	}{
		{nil, nil, 0},
		{[]string{"a"}, nil, 0},
		{[]string{"A", "b"}, []string{"a", "b"}, 1},
		{[]string{"a", "b"}, []string{"b", "c"}, 1.0 / 3},
	}
	for _, tt := range tests {
		if got := Jaccard(tt.a, tt.b); got != tt.want {
			t.Errorf("Jaccard(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCluster(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []content.TrendItem{
		{ID: "1", Keywords: []string{"grading", "rubrics", "feedback"}},
		{ID: "2", Keywords: []string{"phones", "ban"}},
		{ID: "3", Keywords: []string{"grading", "rubrics", "essays"}},
		{ID: "4", Keywords: []string{"grading", "feedback", "rubrics"}},
		{ID: "5", Keywords: []string{"phones", "ban", "schools"}},
		{ID: "6", Keywords: []string{"weather"}},
	}
	got := Cluster(items, ClusterOptions{Now: now})
	if len(got) != 2 {
		t.Fatalf("clusters = %+v", got)
	}
	first := got[0]
	if first.Volume != 3 || !reflect.DeepEqual(first.Items, []string{"1", "3", "4"}) {
		t.Errorf("first cluster = %+v", first)
	}
	if first.Confidence != 0.5 || first.TrendScore != 1.5 {
		t.Errorf("confidence %v score %v", first.Confidence, first.TrendScore)
	}
	if first.Topic != "feedback & grading & rubrics" {
		t.Errorf("topic = %q", first.Topic)
	}
	if got[1].Volume != 2 || got[1].Topic != "schools & phones" {
		t.Errorf("second cluster = %+v", got[1])
	}
	if !first.CreatedAt.Equal(now) {
		t.Errorf("created = %v", first.CreatedAt)
	}
}

func kw(base []string, extra ...string) []string {
	return append(append([]string(nil), base...), extra...)
}

func clusterOf(clusters []content.TopicCluster, id string) int {
	for i, c := range clusters {
		for _, m := range c.Items {
			if m == id {
				return i
			}
		}
	}
	return -1
}

func TestClusterIdenticalKeywordsStayTogether(t *testing.T) {
	base := []string{"alpha", "beta", "gamma"}
	a := content.TrendItem{ID: "a", Keywords: kw(base)}
	b := content.TrendItem{ID: "b", Keywords: kw(base)}
	c := content.TrendItem{ID: "c", Keywords: kw(base, "d1", "d2", "d3", "d4", "d5", "d6")}
	d := content.TrendItem{ID: "d", Keywords: kw(base, "d1", "d2", "d3", "d4", "e1", "e2", "e3")}

	orders := [][]content.TrendItem{
		{a, c, d, b},
		{b, d, c, a},
		{c, a, d, b},
		{d, b, a, c},
	}
	for _, items := range orders {
		got := Cluster(items, ClusterOptions{})
		ca, cb := clusterOf(got, "a"), clusterOf(got, "b")
		if ca < 0 || ca != cb {
			t.Errorf("order %s%s%s%s: a in %d, b in %d: %+v",
				items[0].ID, items[1].ID, items[2].ID, items[3].ID, ca, cb, got)
		}
	}
}

func TestClusterDisjointKeywordsNeverMerge(t *testing.T) {
	items := []content.TrendItem{
		{ID: "x1", Keywords: []string{"phones", "ban"}},
		{ID: "y1", Keywords: []string{"grading", "rubrics"}},
		{ID: "x2", Keywords: []string{"phones", "ban"}},
		{ID: "y2", Keywords: []string{"grading", "rubrics"}},
	}
	got := Cluster(items, ClusterOptions{})
	if len(got) != 2 {
		t.Fatalf("clusters = %+v", got)
	}
	if clusterOf(got, "x1") == clusterOf(got, "y1") {
		t.Errorf("disjoint items merged: %+v", got)
	}
	if clusterOf(got, "x1") != clusterOf(got, "x2") || clusterOf(got, "y1") != clusterOf(got, "y2") {
		t.Errorf("identical items split: %+v", got)
	}
}

func TestClusterEmpty(t *testing.T) {
	if got := Cluster(nil, ClusterOptions{}); len(got) != 0 {
		t.Errorf("got %v", got)
	}
}

func TestTopicName(t *testing.T) {
	if got := TopicName([]string{"ai", "usa", "k12"}); got != FallbackTopic {
		t.Errorf("got %q", got)
	}
	if got := TopicName([]string{"math", "homework", "ai", "worksheets", "planning"}); got != "worksheets & homework & planning" {
		t.Errorf("got %q", got)
	}
}

const rssFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel>
<item><title>AI &amp; grading</title><link>https://example.com/a</link>
<description>&lt;p&gt;Teachers try &lt;b&gt;AI&lt;/b&gt; grading&lt;/p&gt;</description>
<pubDate>Mon, 03 Mar 2025 10:00:00 +0000</pubDate></item>
</channel></rss>`

const atomFeed = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<entry><title>Phone bans</title><link href="https://example.com/b"/>
<summary>Schools ban phones</summary><updated>2025-03-02T08:00:00Z</updated></entry>
</feed>`

func TestRSSSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/atom" {
			_, _ = w.Write([]byte(atomFeed))
			return
		}
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer srv.Close()

	items, err := NewRSSSource(srv.URL + "/rss").Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Title != "AI & grading" || items[0].Text != "Teachers try AI grading" {
		t.Fatalf("items = %+v", items)
	}
	if items[0].PublishedAt.Day() != 3 || items[0].ID == "" {
		t.Errorf("item = %+v", items[0])
	}

	items, err = NewRSSSource(srv.URL + "/atom").Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].URL != "https://example.com/b" || items[0].Text != "Schools ban phones" {
		t.Fatalf("atom items = %+v", items)
	}
}

func TestRSSSourceStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	if _, err := NewRSSSource(srv.URL).Fetch(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRedditSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/r/Teachers/hot.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"children":[{"data":{"title":"Grading help","selftext":"rubrics?","permalink":"/r/Teachers/1","created_utc":1740000000}}]}}`))
	}))
	defer srv.Close()

	items, err := NewRedditSource("Teachers", RedditCredentials{}).WithBaseURL(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].URL != "https://www.reddit.com/r/Teachers/1" || items[0].Source != "reddit:Teachers" {
		t.Fatalf("items = %+v", items)
	}
}

func TestTwitterSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"42","text":"AI grading everywhere","created_at":"2025-03-01T00:00:00Z"}]}`))
	}))
	defer srv.Close()

	items, err := NewTwitterSource("teachers", "tok").WithBaseURL(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].URL != "https://x.com/i/web/status/42" {
		t.Fatalf("items = %+v", items)
	}
}

type staticSource struct {
	name  string
	items []content.TrendItem
	err   error
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) Fetch(context.Context) ([]content.TrendItem, error) {
	return s.items, s.err
}

type memStore struct {
	runs     []content.IngestRun
	clusters []content.TopicCluster
}

func (m *memStore) SaveRun(run content.IngestRun, clusters []content.TopicCluster) (content.IngestRun, []content.TopicCluster, error) {
	run.ID = "run-1"
	m.runs = append(m.runs, run)
	m.clusters = append(m.clusters, clusters...)
	return run, clusters, nil
}

func item(id, title string) content.TrendItem {
	return content.TrendItem{ID: id, Source: "test", Title: title}
}

func TestIngestorRun(t *testing.T) {
	store := &memStore{}
	seen := NewMemorySeen()
	in := &Ingestor{
		Sources: []Source{
			staticSource{name: "a", items: []content.TrendItem{
				item("1", "AI grading rubrics for teachers"),
				item("2", "AI grading rubrics save time"),
				item("1", "AI grading rubrics for teachers"),
			}},
			staticSource{name: "b", err: errors.New("down")},
			staticSource{name: "c", items: []content.TrendItem{item("3", "Phone bans in schools"), item("4", "")}},
		},
		Seen:  seen,
		Lock:  &LocalLock{},
		Store: store,
		Log:   zerolog.Nop(),
	}

	res, err := in.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.RawItems != 3 || res.TrendSignals != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(store.runs) != 1 || !reflect.DeepEqual(store.runs[0].Failed, []string{"b"}) {
		t.Errorf("runs = %+v", store.runs)
	}
	if len(store.clusters[0].Keywords) == 0 {
		t.Error("keywords not extracted")
	}
	if !reflect.DeepEqual(store.clusters[0].Items, []string{"1", "2"}) {
		t.Errorf("cluster items = %v", store.clusters[0].Items)
	}

	res, err = in.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.RawItems != 0 || res.TrendSignals != 0 {
		t.Errorf("second run should see nothing new: %+v", res)
	}
}

func TestLocalLock(t *testing.T) {
	var l LocalLock
	release, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Acquire(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	release()
	release2, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	release2()
}

type heldLock struct{}

func (heldLock) Acquire(context.Context) (func(), error) { return nil, ErrRunInProgress }

func TestIngestorLocked(t *testing.T) {
	in := &Ingestor{Lock: heldLock{}, Log: zerolog.Nop()}
	if _, err := in.Run(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("got %v", err)
	}
}
