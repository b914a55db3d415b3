// Package sessions keeps per-user chat history between requests.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/nutribridge-backend/internal/modules/assistant"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

const DefaultTTL = 14 * 24 * time.Hour

type Store interface {
	// Load returns the stored history, empty when none exists.
	Load(ctx context.Context, userID uuid.UUID) ([]assistant.Turn, error)
	Save(ctx context.Context, userID uuid.UUID, history []assistant.Turn) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

func Key(userID uuid.UUID) string {
	return "chat:session:" + userID.String()
}

type redisStore struct {
	rdb goredis.UniversalClient
	ttl time.Duration
	log *logger.Logger
}

func NewRedisStore(rdb goredis.UniversalClient, ttl time.Duration, baseLog *logger.Logger) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisStore{rdb: rdb, ttl: ttl, log: baseLog.With("store", "RedisChatSessionStore")}
}

func (s *redisStore) Load(ctx context.Context, userID uuid.UUID) ([]assistant.Turn, error) {
	raw, err := s.rdb.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return []assistant.Turn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load chat session: %w", err)
	}
	var out []assistant.Turn
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.Warn("discarding unreadable chat session", "user_id", userID, "error", err)
		return []assistant.Turn{}, nil
	}
	return out, nil
}

func (s *redisStore) Save(ctx context.Context, userID uuid.UUID, history []assistant.Turn) error {
	raw, err := json.Marshal(assistant.LastTurns(history, assistant.StoredTurns))
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, Key(userID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save chat session: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.Del(ctx, Key(userID)).Err()
}

type memoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID][]assistant.Turn
}

// NewMemoryStore is used when Redis is not configured. History does not
// survive a restart and is not shared between processes.
func NewMemoryStore() Store {
	return &memoryStore{sessions: map[uuid.UUID][]assistant.Turn{}}
}

func (s *memoryStore) Load(_ context.Context, userID uuid.UUID) ([]assistant.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := s.sessions[userID]
	out := make([]assistant.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *memoryStore) Save(_ context.Context, userID uuid.UUID, history []assistant.Turn) error {
	trimmed := assistant.LastTurns(history, assistant.StoredTurns)
	cp := make([]assistant.Turn, len(trimmed))
	copy(cp, trimmed)
	s.mu.Lock()
	s.sessions[userID] = cp
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Clear(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return nil
}
