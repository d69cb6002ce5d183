package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/soullog/internal/models"
)

// SessionKeyPrefix is the Redis key prefix for device sessions
const SessionKeyPrefix = "session:"

// SessionStore binds a browser device id to the identity signed in on it.
type SessionStore interface {
	Put(ctx context.Context, device string, id models.Identity, ttl time.Duration) error
	// Get returns nil when nobody is signed in on device.
	Get(ctx context.Context, device string) (*models.Identity, error)
	Delete(ctx context.Context, device string) error
}

var _ SessionStore = (*RedisSessions)(nil)

// RedisSessions stores sessions as JSON under session:{device} with a TTL.
type RedisSessions struct {
	client *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

func (s *RedisSessions) Put(ctx context.Context, device string, id models.Identity, ttl time.Duration) error {
	data, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, SessionKeyPrefix+device, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *RedisSessions) Get(ctx context.Context, device string) (*models.Identity, error) {
	if device == "" {
		return nil, nil
	}
	val, err := s.client.Get(ctx, SessionKeyPrefix+device).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var id models.Identity
	if err := json.Unmarshal([]byte(val), &id); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &id, nil
}

func (s *RedisSessions) Delete(ctx context.Context, device string) error {
	if err := s.client.Del(ctx, SessionKeyPrefix+device).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

var _ SessionStore = (*MemorySessions)(nil)

type memorySession struct {
	id      models.Identity
	expires time.Time
}

// MemorySessions keeps sessions in process, for tests and local runs without Redis.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]memorySession), now: time.Now}
}

func (m *MemorySessions) Put(ctx context.Context, device string, id models.Identity, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[device] = memorySession{id: id, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemorySessions) Get(ctx context.Context, device string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[device]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(s.expires) {
		delete(m.sessions, device)
		return nil, nil
	}
	id := s.id
	return &id, nil
}

func (m *MemorySessions) Delete(ctx context.Context, device string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, device)
	return nil
}
