// Package mocks provides in-memory implementations of the port interfaces
// with call tracking and error injection.
package mocks

import (
	"context"
	"sync"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

// MockRegistrationRepository implements ports.RegistrationRepository.
// Registrations are only kept when the whole create succeeds, the same way
// the SQL repository commits or rolls back the five inserts together.
type MockRegistrationRepository struct {
	mu sync.RWMutex

	registrations map[string]domain.Registration
	mandates      map[string]domain.Mandate
	emails        []ports.ConfirmationEmailEvent

	// Call tracking
	CreateRegistrationCalls   []domain.Registration
	FindMembershipOptionCalls []string
	FindPaymentProfileCalls   []string
	ActivatePaymentCalls      []string
	LogConfirmationCalls      []ports.ConfirmationEmailEvent

	// Error injection
	CreateRegistrationError   error
	FindMembershipOptionError error
	FindPaymentProfileError   error
	ActivatePaymentError      error
	LogConfirmationError      error
}

var _ ports.RegistrationRepository = (*MockRegistrationRepository)(nil)

func NewMockRegistrationRepository() *MockRegistrationRepository {
	return &MockRegistrationRepository{
		registrations: make(map[string]domain.Registration),
		mandates:      make(map[string]domain.Mandate),
	}
}

// Seed stores a registration directly for test setup.
func (m *MockRegistrationRepository) Seed(reg domain.Registration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations[reg.Guardian.ID] = reg
}

func (m *MockRegistrationRepository) CreateRegistration(ctx context.Context, reg domain.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateRegistrationCalls = append(m.CreateRegistrationCalls, reg)
	if m.CreateRegistrationError != nil {
		return m.CreateRegistrationError
	}
	m.registrations[reg.Guardian.ID] = reg
	return nil
}

func (m *MockRegistrationRepository) FindMembershipOption(ctx context.Context, userID string) (domain.BillingPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FindMembershipOptionCalls = append(m.FindMembershipOptionCalls, userID)
	if m.FindMembershipOptionError != nil {
		return "", m.FindMembershipOptionError
	}
	reg, ok := m.registrations[userID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return reg.Member.MembershipOption, nil
}

func (m *MockRegistrationRepository) FindPaymentProfile(ctx context.Context, userID string) (*domain.PaymentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FindPaymentProfileCalls = append(m.FindPaymentProfileCalls, userID)
	if m.FindPaymentProfileError != nil {
		return nil, m.FindPaymentProfileError
	}
	reg, ok := m.registrations[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	profile := &domain.PaymentProfile{
		UserID:          userID,
		Name:            reg.Guardian.Name,
		Email:           reg.Guardian.Email,
		Address:         reg.Guardian.Address,
		PostCode:        reg.Guardian.PostCode,
		MemberName:      reg.Member.Name,
		Plan:            reg.Member.MembershipOption,
		Package:         reg.Member.Package,
		PackageQuantity: reg.Member.PackageQuantity,
	}
	if reg.Member.BranchID != nil {
		profile.BranchID = *reg.Member.BranchID
	}
	return profile, nil
}

func (m *MockRegistrationRepository) ActivatePayment(ctx context.Context, userID string, mandate domain.Mandate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ActivatePaymentCalls = append(m.ActivatePaymentCalls, userID)
	if m.ActivatePaymentError != nil {
		return m.ActivatePaymentError
	}
	reg, ok := m.registrations[userID]
	if !ok {
		return domain.ErrNotFound
	}
	reg.Guardian.PaymentStatus = domain.PaymentActive
	m.registrations[userID] = reg
	m.mandates[userID] = mandate
	return nil
}

func (m *MockRegistrationRepository) LogConfirmationEmail(ctx context.Context, evt ports.ConfirmationEmailEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LogConfirmationCalls = append(m.LogConfirmationCalls, evt)
	if m.LogConfirmationError != nil {
		return m.LogConfirmationError
	}
	m.emails = append(m.emails, evt)
	return nil
}

// Registration returns a stored registration (for test assertions).
func (m *MockRegistrationRepository) Registration(userID string) (domain.Registration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reg, ok := m.registrations[userID]
	return reg, ok
}

// Mandate returns the mandate activated for a user.
func (m *MockRegistrationRepository) Mandate(userID string) (domain.Mandate, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	md, ok := m.mandates[userID]
	return md, ok
}

// Count returns the number of stored registrations.
func (m *MockRegistrationRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.registrations)
}

// Emails returns the logged confirmation emails.
func (m *MockRegistrationRepository) Emails() []ports.ConfirmationEmailEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ports.ConfirmationEmailEvent, len(m.emails))
	copy(out, m.emails)
	return out
}
