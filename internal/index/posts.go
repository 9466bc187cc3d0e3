package index

import (
	"encoding/json"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"zazasite/internal/domain/content"
)

const dateKeyPrefix = 12

type ListOptions struct {
	Category string
	Limit    int
}

// RebuildPosts replaces the posts snapshot. Posts are expected in file order;
// that order breaks ties between equal dates.
func (s *Store) RebuildPosts(posts []content.Post, snapshotHash string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bPosts, bIdxDate, bIdxCat, bMeta} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
			}
		}
		postsB, err := tx.CreateBucket(bPosts)
		if err != nil {
			return err
		}
		dateB, err := tx.CreateBucket(bIdxDate)
		if err != nil {
			return err
		}
		catB, err := tx.CreateBucket(bIdxCat)
		if err != nil {
			return err
		}
		metaB, err := tx.CreateBucket(bMeta)
		if err != nil {
			return err
		}

		for i, p := range posts {
			if strings.TrimSpace(p.Slug) == "" {
				continue
			}
			pb, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if err := postsB.Put([]byte(p.Slug), pb); err != nil {
				return err
			}
			key := makeTimeOrderKey(p.Date.UnixNano(), i, p.Slug)
			if err := dateB.Put(key, []byte{1}); err != nil {
				return err
			}
			if cat := strings.TrimSpace(p.Category); cat != "" {
				sb, err := catB.CreateBucketIfNotExists([]byte(cat))
				if err != nil {
					return err
				}
				if err := sb.Put(key, []byte{1}); err != nil {
					return err
				}
			}
		}

		if err := metaB.Put(keySnapshot, []byte(snapshotHash)); err != nil {
			return err
		}
		return metaB.Put(keyBuiltAt, []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

// SnapshotHash returns the fingerprint stored by the last RebuildPosts.
func (s *Store) SnapshotHash() (string, error) {
	var out string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bMeta)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get(keySnapshot)
		if v == nil {
			return ErrNotFound
		}
		out = string(v)
		return nil
	})
	return out, err
}

func (s *Store) GetPost(slug string) (content.Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return content.Post{}, ErrNotFound
	}
	var p content.Post
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bPosts)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(slug))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &p)
	})
	return p, err
}

// ListPosts walks the date index newest first.
func (s *Store) ListPosts(opt ListOptions) ([]content.Post, error) {
	var out []content.Post
	err := s.db.View(func(tx *bolt.Tx) error {
		postsB := tx.Bucket(bPosts)
		idx := tx.Bucket(bIdxDate)
		if cat := strings.TrimSpace(opt.Category); cat != "" {
			parent := tx.Bucket(bIdxCat)
			if parent == nil {
				return nil
			}
			idx = parent.Bucket([]byte(cat))
		}
		if idx == nil || postsB == nil {
			return nil
		}

		cur := idx.Cursor()
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			slug := nameFromKey(k, dateKeyPrefix)
			v := postsB.Get([]byte(slug))
			if v == nil {
				continue
			}
			var p content.Post
			if err := json.Unmarshal(v, &p); err != nil {
				continue
			}
			out = append(out, p)
			if opt.Limit > 0 && len(out) >= opt.Limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) CategoryCounts() (map[string]int, error) {
	out := make(map[string]int)
	err := s.db.View(func(tx *bolt.Tx) error {
		parent := tx.Bucket(bIdxCat)
		if parent == nil {
			return nil
		}
		return parent.ForEach(func(k, v []byte) error {
			if v != nil {
				return nil
			}
			n := 0
			cur := parent.Bucket(k).Cursor()
			for kk, _ := cur.First(); kk != nil; kk, _ = cur.Next() {
				n++
			}
			out[string(k)] = n
			return nil
		})
	})
	return out, err
}
