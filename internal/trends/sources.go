package trends

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	fp "zazasite/internal/domain/build"
	"zazasite/internal/domain/content"
)

const userAgent = "zazasite-trends/1.0"

// Source fetches the current items of one upstream feed.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]content.TrendItem, error)
}

func newClient() *resty.Client {
	return resty.New().
		SetTimeout(20*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("User-Agent", userAgent)
}

// ItemID is stable across polls for the same upstream item.
func ItemID(source, url, title string) string {
	key := url
	if key == "" {
		key = title
	}
	return fp.HashString(source + ":" + key)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// CleanHTML strips markup and entities from feed text.
func CleanHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// RSSSource reads RSS 2.0 and Atom feeds.
type RSSSource struct {
	URL    string
	client *resty.Client
}

func NewRSSSource(url string) *RSSSource {
	return &RSSSource{URL: url, client: newClient()}
}

func (s *RSSSource) Name() string { return "rss:" + s.URL }

type rssDoc struct {
	Channel struct {
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
			PubDate     string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
	Entries []struct {
		Title   string `xml:"title"`
		Summary string `xml:"summary"`
		Content string `xml:"content"`
		Updated string `xml:"updated"`
		Links   []struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
	} `xml:"entry"`
}

func (s *RSSSource) Fetch(ctx context.Context) ([]content.TrendItem, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml").
		Get(s.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.URL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), s.URL)
	}
	return parseFeed(s.Name(), resp.Body())
}

func parseFeed(source string, body []byte) ([]content.TrendItem, error) {
	var doc rssDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	var out []content.TrendItem
	for _, it := range doc.Channel.Items {
		title := CleanHTML(it.Title)
		link := strings.TrimSpace(it.Link)
		out = append(out, content.TrendItem{
			ID:          ItemID(source, link, title),
			Source:      source,
			Title:       title,
			Text:        CleanHTML(it.Description),
			URL:         link,
			PublishedAt: parseFeedTime(it.PubDate),
		})
	}
	for _, e := range doc.Entries {
		title := CleanHTML(e.Title)
		var link string
		if len(e.Links) > 0 {
			link = strings.TrimSpace(e.Links[0].Href)
		}
		text := e.Summary
		if text == "" {
			text = e.Content
		}
		out = append(out, content.TrendItem{
			ID:          ItemID(source, link, title),
			Source:      source,
			Title:       title,
			Text:        CleanHTML(text),
			URL:         link,
			PublishedAt: parseFeedTime(e.Updated),
		})
	}
	return out, nil
}

func parseFeedTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339, "Mon, 2 Jan 2006 15:04:05 -0700"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// RedditSource reads a subreddit listing. With client credentials it goes
// through the OAuth API, otherwise through the public JSON endpoint.
type RedditSource struct {
	Subreddit string
	client    *resty.Client
}

type RedditCredentials struct {
	ClientID     string
	ClientSecret string
}

const (
	redditTokenURL  = "https://www.reddit.com/api/v1/access_token"
	redditOAuthURL  = "https://oauth.reddit.com"
	redditPublicURL = "https://www.reddit.com"
)

func NewRedditSource(subreddit string, creds RedditCredentials) *RedditSource {
	client := newClient().SetBaseURL(redditPublicURL)
	if creds.ClientID != "" && creds.ClientSecret != "" {
		conf := &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     redditTokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		client = resty.NewWithClient(conf.Client(context.Background())).
			SetTimeout(20*time.Second).
			SetRetryCount(2).
			SetHeader("User-Agent", userAgent).
			SetBaseURL(redditOAuthURL)
	}
	return &RedditSource{Subreddit: subreddit, client: client}
}

// WithBaseURL points the source at another API host.
func (s *RedditSource) WithBaseURL(url string) *RedditSource {
	s.client.SetBaseURL(url)
	return s
}

func (s *RedditSource) Name() string { return "reddit:" + s.Subreddit }

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Permalink  string  `json:"permalink"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (s *RedditSource) Fetch(ctx context.Context) ([]content.TrendItem, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("limit", "50").
		SetPathParam("sub", s.Subreddit).
		Get("/r/{sub}/hot.json")
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", s.Subreddit, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from r/%s", resp.StatusCode(), s.Subreddit)
	}
	var listing redditListing
	if err := json.Unmarshal(resp.Body(), &listing); err != nil {
		return nil, fmt.Errorf("decode r/%s: %w", s.Subreddit, err)
	}
	var out []content.TrendItem
	for _, c := range listing.Data.Children {
		d := c.Data
		link := ""
		if d.Permalink != "" {
			link = "https://www.reddit.com" + d.Permalink
		}
		out = append(out, content.TrendItem{
			ID:          ItemID(s.Name(), link, d.Title),
			Source:      s.Name(),
			Title:       strings.TrimSpace(d.Title),
			Text:        strings.TrimSpace(d.Selftext),
			URL:         link,
			PublishedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		})
	}
	return out, nil
}

// TwitterSource runs a recent-search query against the X API v2.
type TwitterSource struct {
	Query  string
	client *resty.Client
}

func NewTwitterSource(query, bearer string) *TwitterSource {
	client := newClient().
		SetBaseURL("https://api.twitter.com").
		SetAuthToken(bearer)
	return &TwitterSource{Query: query, client: client}
}

func (s *TwitterSource) WithBaseURL(url string) *TwitterSource {
	s.client.SetBaseURL(url)
	return s
}

func (s *TwitterSource) Name() string { return "twitter" }

type tweetSearch struct {
	Data []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
	} `json:"data"`
}

func (s *TwitterSource) Fetch(ctx context.Context) ([]content.TrendItem, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":        s.Query,
			"max_results":  "50",
			"tweet.fields": "created_at",
		}).
		Get("/2/tweets/search/recent")
	if err != nil {
		return nil, fmt.Errorf("twitter search: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from twitter", resp.StatusCode())
	}
	var res tweetSearch
	if err := json.Unmarshal(resp.Body(), &res); err != nil {
		return nil, fmt.Errorf("decode twitter search: %w", err)
	}
	var out []content.TrendItem
	for _, t := range res.Data {
		link := "https://x.com/i/web/status/" + t.ID
		created, _ := time.Parse(time.RFC3339, t.CreatedAt)
		out = append(out, content.TrendItem{
			ID:          ItemID(s.Name(), link, t.Text),
			Source:      s.Name(),
			Text:        strings.TrimSpace(t.Text),
			URL:         link,
			PublishedAt: created.UTC(),
		})
	}
	return out, nil
}
