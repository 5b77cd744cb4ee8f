// Package session owns conversation state: storage, per-turn processing, and
// ticket materialization.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"tagdesk/internal/common/logger"
	"tagdesk/internal/models"

	"github.com/redis/go-redis/v9"
)

// Store persists conversation sessions. Get returns (nil, nil) for an unknown
// session ID; errors are reserved for storage faults.
type Store interface {
	Get(ctx context.Context, id string) (*models.ConversationSession, error)
	Put(ctx context.Context, s *models.ConversationSession) error
}

// MemoryStore keeps sessions in-process. It is the authoritative store; the
// Redis layer only snapshots it for restart recovery.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.ConversationSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.ConversationSession)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.ConversationSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id], nil
}

func (m *MemoryStore) Put(_ context.Context, s *models.ConversationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// RedisStore layers write-through snapshots over the in-memory store. Reads
// fall through to Redis on a memory miss so sessions survive a restart.
// Snapshot failures degrade to a warning; the in-memory copy stays correct.
type RedisStore struct {
	memory *MemoryStore
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisStore {
	return &RedisStore{
		memory: NewMemoryStore(),
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "session-store"}),
	}
}

func sessionKey(id string) string {
	return "intake:session:" + id
}

func (r *RedisStore) Get(ctx context.Context, id string) (*models.ConversationSession, error) {
	if s, _ := r.memory.Get(ctx, id); s != nil {
		return s, nil
	}

	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var s models.ConversationSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session snapshot: %w", err)
	}

	// Rehydrate the authoritative copy.
	_ = r.memory.Put(ctx, &s)
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, s *models.ConversationSession) error {
	if err := r.memory.Put(ctx, s); err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Warn("session snapshot marshal failed", map[string]interface{}{
			"sessionId": s.ID,
			"error":     err.Error(),
		})
		return nil
	}
	if err := r.client.Set(ctx, sessionKey(s.ID), data, r.ttl).Err(); err != nil {
		r.logger.Warn("session snapshot write failed", map[string]interface{}{
			"sessionId": s.ID,
			"error":     err.Error(),
		})
	}
	return nil
}
