package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient is an in-memory stand-in for the subset of *redis.Client
// the session stores use.
type MockRedisClient struct {
	mu   sync.RWMutex
	data map[string]mockRedisValue
	now  func() time.Time

	SetError  error
	GetError  error
	DelError  error
	PingError error
}

type mockRedisValue struct {
	value     string
	expiresAt time.Time
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		data: make(map[string]mockRedisValue),
		now:  time.Now,
	}
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStatusCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}

	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}

	expiresAt := time.Time{}
	if expiration > 0 {
		expiresAt = m.now().Add(expiration)
	}
	m.data[key] = mockRedisValue{value: s, expiresAt: expiresAt}

	cmd.SetVal("OK")
	return cmd
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd := redis.NewStringCmd(ctx)
	if m.GetError != nil {
		cmd.SetErr(m.GetError)
		return cmd
	}

	val, ok := m.data[key]
	if !ok || m.expired(val) {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val.value)
	return cmd
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewIntCmd(ctx)
	if m.DelError != nil {
		cmd.SetErr(m.DelError)
		return cmd
	}

	var deleted int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			deleted++
		}
	}
	cmd.SetVal(deleted)
	return cmd
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.PingError != nil {
		cmd.SetErr(m.PingError)
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

// HasKey reports whether a live key exists (for test assertions).
func (m *MockRedisClient) HasKey(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	return ok && !m.expired(val)
}

// TTL returns the remaining lifetime of a key, zero when it has none.
func (m *MockRedisClient) TTL(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	if !ok || val.expiresAt.IsZero() {
		return 0
	}
	return val.expiresAt.Sub(m.now())
}

// Advance moves the mock clock forward so keys can expire.
func (m *MockRedisClient) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := m.now()
	m.now = func() time.Time { return base.Add(d) }
}

func (m *MockRedisClient) expired(v mockRedisValue) bool {
	return !v.expiresAt.IsZero() && m.now().After(v.expiresAt)
}
