package content

import "time"

// TrendItem is a single piece of collected text from a trend source.
type TrendItem struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`

	Keywords []string `json:"keywords,omitempty"`
}

// TopicCluster groups trend items that share keywords. Items holds the
// member item IDs in clustering order.
type TopicCluster struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	Keywords   []string  `json:"keywords"`
	Items      []string  `json:"items"`
	Volume     int       `json:"volume"`
	Confidence float64   `json:"confidence"`
	TrendScore float64   `json:"trendScore"`
	RunID      string    `json:"runId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IngestRun records one execution of the trend worker.
type IngestRun struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
	RawItems     int       `json:"rawItems"`
	TrendSignals int       `json:"trendSignals"`
	Failed       []string  `json:"failedSources,omitempty"`
}
