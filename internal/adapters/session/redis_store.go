// Package session keeps short-lived state in Redis: form drafts,
// idempotent submission results and payment sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/fma-academy/registration-service/internal/config"
	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

const (
	draftPrefix       = "draft:"
	submissionPrefix  = "submission:"
	paymentFlowPrefix = "payment:flow:"
)

// Client is the subset of *redis.Client the store needs.
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

type RedisStore struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

var (
	_ ports.DraftStore          = (*RedisStore)(nil)
	_ ports.SubmissionCache     = (*RedisStore)(nil)
	_ ports.PaymentSessionStore = (*RedisStore)(nil)
)

func NewRedisStore(client Client) *RedisStore {
	return &RedisStore{
		client: client,
		cb:     config.NewCircuitBreaker("Redis-Sessions"),
	}
}

// Ping is used by the readiness probe.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) SaveDraft(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	return s.set(ctx, draftPrefix+id, string(payload), ttl)
}

func (s *RedisStore) LoadDraft(ctx context.Context, id string) ([]byte, error) {
	v, err := s.get(ctx, draftPrefix+id)
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (s *RedisStore) DeleteDraft(ctx context.Context, id string) error {
	return s.del(ctx, draftPrefix+id)
}

func (s *RedisStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	v, err := s.get(ctx, submissionPrefix+key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Remember(ctx context.Context, key, userID string, ttl time.Duration) error {
	return s.set(ctx, submissionPrefix+key, userID, ttl)
}

func (s *RedisStore) SaveSession(ctx context.Context, flowID, token string, ttl time.Duration) error {
	return s.set(ctx, paymentFlowPrefix+flowID, token, ttl)
}

func (s *RedisStore) LoadSession(ctx context.Context, flowID string) (string, error) {
	return s.get(ctx, paymentFlowPrefix+flowID)
}

func (s *RedisStore) DeleteSession(ctx context.Context, flowID string) error {
	return s.del(ctx, paymentFlowPrefix+flowID)
}

func (s *RedisStore) set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// get maps a missing key to domain.ErrNotFound. A miss does not count as a
// breaker failure.
func (s *RedisStore) get(ctx context.Context, key string) (string, error) {
	var missing bool
	v, err := s.cb.Execute(func() (interface{}, error) {
		val, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			missing = true
			return "", nil
		}
		return val, err
	})
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	if missing {
		return "", domain.ErrNotFound
	}
	return v.(string), nil
}

func (s *RedisStore) del(ctx context.Context, key string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, key).Err()
	})
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
