package trends

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrRunInProgress = errors.New("ingestion already running")

const (
	seenPrefix = "zaza:trends:seen:"
	lockKey    = "zaza:trends:lock"
)

// SeenStore remembers item IDs already clustered by a previous run.
type SeenStore interface {
	Seen(ctx context.Context, ids []string) (map[string]bool, error)
	Mark(ctx context.Context, ids []string) error
}

// Lock guards a single ingestion run. Acquire returns ErrRunInProgress when
// another holder is active and a release func otherwise.
type Lock interface {
	Acquire(ctx context.Context) (func(), error)
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

type RedisSeen struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s *RedisSeen) Seen(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	pipe := s.Client.Pipeline()
	cmds := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Exists(ctx, seenPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis seen: %w", err)
	}
	for i, id := range ids {
		if cmds[i].Val() > 0 {
			out[id] = true
		}
	}
	return out, nil
}

func (s *RedisSeen) Mark(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	pipe := s.Client.Pipeline()
	for _, id := range ids {
		pipe.Set(ctx, seenPrefix+id, 1, s.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis mark: %w", err)
	}
	return nil
}

// MemorySeen is the in-process fallback used when no redis is configured.
type MemorySeen struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewMemorySeen() *MemorySeen {
	return &MemorySeen{ids: make(map[string]struct{})}
}

func (s *MemorySeen) Seen(_ context.Context, ids []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.ids[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (s *MemorySeen) Mark(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return nil
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is shared by every instance pointing at the same redis.
type RedisLock struct {
	Client *redis.Client
	TTL    time.Duration
}

func (l *RedisLock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, lockKey, token, l.TTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.Client, []string{lockKey}, token).Err()
	}, nil
}

type LocalLock struct {
	mu sync.Mutex
}

func (l *LocalLock) Acquire(context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	return l.mu.Unlock, nil
}
