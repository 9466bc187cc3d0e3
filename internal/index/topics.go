package index

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"zazasite/internal/domain/content"
)

const topicKeyPrefix = 16

// SaveRun stores a finished ingestion run and its clusters in one transaction.
// Missing IDs and timestamps are filled in; the stored clusters are returned.
func (s *Store) SaveRun(run content.IngestRun, clusters []content.TopicCluster) (content.IngestRun, []content.TopicCluster, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}
	run.TrendSignals = len(clusters)

	stored := make([]content.TopicCluster, len(clusters))
	err := s.db.Update(func(tx *bolt.Tx) error {
		topicsB := tx.Bucket(bTopics)
		idxB := tx.Bucket(bIdxTopics)
		runsB := tx.Bucket(bRuns)

		for i, c := range clusters {
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
			c.RunID = run.ID
			if c.CreatedAt.IsZero() {
				c.CreatedAt = run.FinishedAt
			}
			cb, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if err := topicsB.Put([]byte(c.ID), cb); err != nil {
				return err
			}
			key := makeTimeScoreKey(c.CreatedAt.UnixNano(), c.TrendScore, c.ID)
			if err := idxB.Put(key, []byte{1}); err != nil {
				return err
			}
			stored[i] = c
		}

		rb, err := json.Marshal(run)
		if err != nil {
			return err
		}
		return runsB.Put([]byte(run.ID), rb)
	})
	if err != nil {
		return content.IngestRun{}, nil, err
	}
	return run, stored, nil
}

// LatestClusters returns up to limit clusters, newest run first and by
// descending trend score within a run. limit <= 0 returns everything.
func (s *Store) LatestClusters(limit int) ([]content.TopicCluster, error) {
	var out []content.TopicCluster
	err := s.db.View(func(tx *bolt.Tx) error {
		topicsB := tx.Bucket(bTopics)
		idxB := tx.Bucket(bIdxTopics)
		if topicsB == nil || idxB == nil {
			return nil
		}
		cur := idxB.Cursor()
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			id := nameFromKey(k, topicKeyPrefix)
			v := topicsB.Get([]byte(id))
			if v == nil {
				continue
			}
			var c content.TopicCluster
			if err := json.Unmarshal(v, &c); err != nil {
				continue
			}
			out = append(out, c)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) GetCluster(id string) (content.TopicCluster, error) {
	var c content.TopicCluster
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bTopics).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &c)
	})
	return c, err
}

// Runs lists every recorded run in no particular order.
func (s *Store) Runs() ([]content.IngestRun, error) {
	var out []content.IngestRun
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bRuns).ForEach(func(k, v []byte) error {
			var r content.IngestRun
			if err := json.Unmarshal(v, &r); err != nil {
				return nil
			}
			out = append(out, r)
			return nil
		})
	})
	return out, err
}
