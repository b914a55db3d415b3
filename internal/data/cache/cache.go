// Package cache stores short-lived upstream API responses.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

// Store satisfies the response caches of the platform clients. A miss and a
// backend error look the same to callers; errors are logged.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

type redisStore struct {
	rdb    goredis.UniversalClient
	prefix string
	log    *logger.Logger
}

func NewRedisStore(rdb goredis.UniversalClient, prefix string, baseLog *logger.Logger) Store {
	return &redisStore{rdb: rdb, prefix: prefix, log: baseLog.With("store", "RedisResponseCache")}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		s.log.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	return raw, true
}

func (s *redisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if err := s.rdb.Set(ctx, s.prefix+key, val, ttl).Err(); err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
	}
}

type entry struct {
	val     []byte
	expires time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]entry
}

// NewMemoryStore keeps entries in process. Expired entries are dropped on
// read.
func NewMemoryStore() Store {
	return newMemoryStore(time.Now)
}

func newMemoryStore(now func() time.Time) *memoryStore {
	return &memoryStore{now: now, entries: map[string]entry{}}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.entries, key)
		return nil, false
	}
	out := make([]byte, len(e.val))
	copy(out, e.val)
	return out, true
}

func (s *memoryStore) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	cp := make([]byte, len(val))
	copy(cp, val)
	e := entry{val: cp}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}
