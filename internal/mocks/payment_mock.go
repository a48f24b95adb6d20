package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

// MockPaymentProvider implements ports.PaymentProvider. Flow ids are
// sequential (RE0001, RE0002, ...).
type MockPaymentProvider struct {
	mu sync.Mutex

	flows map[string]ports.RedirectFlowRequest

	CreateFlowCalls   []ports.RedirectFlowRequest
	CompleteFlowCalls []string
	PaymentCalls      []ports.PaymentRequest

	CreateFlowError   error
	CompleteFlowError error
	PaymentError      error
}

var _ ports.PaymentProvider = (*MockPaymentProvider)(nil)

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{flows: make(map[string]ports.RedirectFlowRequest)}
}

func (m *MockPaymentProvider) CreateRedirectFlow(ctx context.Context, req ports.RedirectFlowRequest) (*ports.RedirectFlow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateFlowCalls = append(m.CreateFlowCalls, req)
	if m.CreateFlowError != nil {
		return nil, m.CreateFlowError
	}
	id := fmt.Sprintf("RE%04d", len(m.CreateFlowCalls))
	m.flows[id] = req
	return &ports.RedirectFlow{
		ID:          id,
		RedirectURL: "https://pay-sandbox.gocardless.com/flow/" + id,
	}, nil
}

// CompleteRedirectFlow fails unless the session token matches the one the
// flow was created with, as the real provider does.
func (m *MockPaymentProvider) CompleteRedirectFlow(ctx context.Context, flowID, sessionToken string) (*domain.Mandate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompleteFlowCalls = append(m.CompleteFlowCalls, flowID)
	if m.CompleteFlowError != nil {
		return nil, m.CompleteFlowError
	}
	req, ok := m.flows[flowID]
	if !ok || req.SessionToken != sessionToken {
		return nil, fmt.Errorf("redirect flow %s: session token mismatch", flowID)
	}
	return &domain.Mandate{
		MandateID:  "MD" + flowID[2:],
		CustomerID: "CU" + flowID[2:],
	}, nil
}

func (m *MockPaymentProvider) CreatePayment(ctx context.Context, req ports.PaymentRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PaymentCalls = append(m.PaymentCalls, req)
	if m.PaymentError != nil {
		return "", m.PaymentError
	}
	return fmt.Sprintf("PM%04d", len(m.PaymentCalls)), nil
}
