package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"portfolio-doctor/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// StoredRun is a finished simulation kept for later retrieval by ID.
type StoredRun struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Method    string        `json:"method"`
	Dataset   string        `json:"dataset"`
	Cycles    []model.Cycle `json:"cycles"`
}

// RunStore persists simulation runs.
type RunStore interface {
	Save(ctx context.Context, run *StoredRun) error
	// Get reports found=false for unknown or expired IDs.
	Get(ctx context.Context, id string) (run *StoredRun, found bool, err error)
}

func NewRunID() string { return uuid.NewString() }

// MemoryRunStore keeps runs in process memory.
type MemoryRunStore struct {
	cache *TTLCache[*StoredRun]
}

func NewMemoryRunStore(ttl time.Duration) *MemoryRunStore {
	return &MemoryRunStore{cache: NewTTLCache[*StoredRun](ttl, 5*time.Minute)}
}

func (s *MemoryRunStore) Save(_ context.Context, run *StoredRun) error {
	if run == nil || run.ID == "" {
		return errors.New("run id is required")
	}
	s.cache.Set(run.ID, run)
	return nil
}

func (s *MemoryRunStore) Get(_ context.Context, id string) (*StoredRun, bool, error) {
	run, ok := s.cache.Get(id)
	return run, ok, nil
}

func (s *MemoryRunStore) Close() { s.cache.Close() }

// RedisRunStore keeps runs as JSON strings in Redis so several API replicas
// can serve the same run IDs.
type RedisRunStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisRunStore(client *redis.Client, ttl time.Duration) *RedisRunStore {
	return &RedisRunStore{client: client, ttl: ttl, prefix: "portfolio-doctor:run:"}
}

func (s *RedisRunStore) key(id string) string { return s.prefix + id }

func (s *RedisRunStore) Save(ctx context.Context, run *StoredRun) error {
	if run == nil || run.ID == "" {
		return errors.New("run id is required")
	}
	raw, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.ID, err)
	}
	if err := s.client.Set(ctx, s.key(run.ID), string(raw), s.ttl).Err(); err != nil {
		return fmt.Errorf("store run %s: %w", run.ID, err)
	}
	return nil
}

func (s *RedisRunStore) Get(ctx context.Context, id string) (*StoredRun, bool, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load run %s: %w", id, err)
	}
	var run StoredRun
	if err := json.Unmarshal([]byte(raw), &run); err != nil {
		return nil, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &run, true, nil
}
