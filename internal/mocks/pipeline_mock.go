package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/form"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

// CallLog records the order in which pipeline collaborators were called.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *CallLog) add(name string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

// MockRegistrationGateway implements ports.RegistrationGateway with
// sequential user ids.
type MockRegistrationGateway struct {
	mu    sync.Mutex
	Log   *CallLog
	Err   error
	Calls []form.State
	Infos []ports.ClientInfo
}

var _ ports.RegistrationGateway = (*MockRegistrationGateway)(nil)

func (m *MockRegistrationGateway) CreateRegistration(ctx context.Context, state form.State, client ports.ClientInfo) (string, error) {
	m.Log.add("create-record")
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, state)
	m.Infos = append(m.Infos, client)
	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("user-%d", len(m.Calls)), nil
}

func (m *MockRegistrationGateway) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockConfirmationSender implements ports.ConfirmationSender. Delay makes it
// block until the delay passes or the context ends.
type MockConfirmationSender struct {
	mu    sync.Mutex
	Log   *CallLog
	Err   error
	Delay time.Duration
	Calls []domain.Confirmation
}

var _ ports.ConfirmationSender = (*MockConfirmationSender)(nil)

func (m *MockConfirmationSender) SendConfirmation(ctx context.Context, c domain.Confirmation) error {
	m.Log.add("notify")
	m.mu.Lock()
	m.Calls = append(m.Calls, c)
	delay, err := m.Delay, m.Err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *MockConfirmationSender) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockPaymentLinkIssuer implements ports.PaymentLinkIssuer.
type MockPaymentLinkIssuer struct {
	mu    sync.Mutex
	Log   *CallLog
	URL   string
	Err   error
	Calls []ports.PaymentLinkRequest
}

var _ ports.PaymentLinkIssuer = (*MockPaymentLinkIssuer)(nil)

func (m *MockPaymentLinkIssuer) IssuePaymentLink(ctx context.Context, req ports.PaymentLinkRequest) (string, error) {
	m.Log.add("payment-link")
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return "", m.Err
	}
	if m.URL != "" {
		return m.URL, nil
	}
	return "https://pay.example.com/" + req.UserID, nil
}

func (m *MockPaymentLinkIssuer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockNavigator implements ports.Navigator.
type MockNavigator struct {
	mu      sync.Mutex
	Log     *CallLog
	Err     error
	Visited []string
}

var _ ports.Navigator = (*MockNavigator)(nil)

func (m *MockNavigator) Navigate(ctx context.Context, url string) error {
	m.Log.add("navigate")
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Visited = append(m.Visited, url)
	return nil
}

// MockSubmissionCache implements ports.SubmissionCache in memory.
type MockSubmissionCache struct {
	mu      sync.Mutex
	entries map[string]string

	LookupError   error
	RememberError error
}

var _ ports.SubmissionCache = (*MockSubmissionCache)(nil)

func NewMockSubmissionCache() *MockSubmissionCache {
	return &MockSubmissionCache{entries: make(map[string]string)}
}

func (m *MockSubmissionCache) Lookup(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LookupError != nil {
		return "", false, m.LookupError
	}
	id, ok := m.entries[key]
	return id, ok, nil
}

func (m *MockSubmissionCache) Remember(ctx context.Context, key, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RememberError != nil {
		return m.RememberError
	}
	m.entries[key] = userID
	return nil
}
