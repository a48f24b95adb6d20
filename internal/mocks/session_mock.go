package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

// MockPaymentSessionStore implements ports.PaymentSessionStore in memory.
type MockPaymentSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string

	SaveError   error
	LoadError   error
	DeleteError error
}

var _ ports.PaymentSessionStore = (*MockPaymentSessionStore)(nil)

func NewMockPaymentSessionStore() *MockPaymentSessionStore {
	return &MockPaymentSessionStore{sessions: make(map[string]string)}
}

func (m *MockPaymentSessionStore) SaveSession(ctx context.Context, flowID, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveError != nil {
		return m.SaveError
	}
	m.sessions[flowID] = token
	return nil
}

func (m *MockPaymentSessionStore) LoadSession(ctx context.Context, flowID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadError != nil {
		return "", m.LoadError
	}
	token, ok := m.sessions[flowID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return token, nil
}

func (m *MockPaymentSessionStore) DeleteSession(ctx context.Context, flowID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteError != nil {
		return m.DeleteError
	}
	delete(m.sessions, flowID)
	return nil
}

func (m *MockPaymentSessionStore) Has(flowID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[flowID]
	return ok
}

// MockDraftStore implements ports.DraftStore in memory.
type MockDraftStore struct {
	mu     sync.Mutex
	drafts map[string][]byte

	SaveError   error
	LoadError   error
	DeleteError error
	SaveCalls   int
}

var _ ports.DraftStore = (*MockDraftStore)(nil)

func NewMockDraftStore() *MockDraftStore {
	return &MockDraftStore{drafts: make(map[string][]byte)}
}

func (m *MockDraftStore) SaveDraft(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveError != nil {
		return m.SaveError
	}
	m.drafts[id] = append([]byte(nil), payload...)
	return nil
}

func (m *MockDraftStore) LoadDraft(ctx context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	raw, ok := m.drafts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return raw, nil
}

func (m *MockDraftStore) DeleteDraft(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteError != nil {
		return m.DeleteError
	}
	delete(m.drafts, id)
	return nil
}

func (m *MockDraftStore) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.drafts[id]
	return ok
}
