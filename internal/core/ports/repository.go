package ports

import (
	"context"
	"time"

	"github.com/fma-academy/registration-service/internal/core/domain"
)

// RegistrationRepository is the relational record store.
type RegistrationRepository interface {
	// CreateRegistration writes all five rows of a registration atomically.
	CreateRegistration(ctx context.Context, reg domain.Registration) error
	FindMembershipOption(ctx context.Context, userID string) (domain.BillingPlan, error)
	FindPaymentProfile(ctx context.Context, userID string) (*domain.PaymentProfile, error)
	ActivatePayment(ctx context.Context, userID string, mandate domain.Mandate) error
	// LogConfirmationEmail records the email and queues its outbox event in
	// one transaction.
	LogConfirmationEmail(ctx context.Context, evt ConfirmationEmailEvent) error
}

// DraftStore keeps in-progress form sessions between requests.
type DraftStore interface {
	SaveDraft(ctx context.Context, id string, payload []byte, ttl time.Duration) error
	LoadDraft(ctx context.Context, id string) ([]byte, error)
	DeleteDraft(ctx context.Context, id string) error
}

// SubmissionCache remembers the outcome of submissions that carried an
// idempotency key.
type SubmissionCache interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Remember(ctx context.Context, key, userID string, ttl time.Duration) error
}

// PaymentSessionStore keeps the session token issued with each redirect flow
// until the flow is completed.
type PaymentSessionStore interface {
	SaveSession(ctx context.Context, flowID, token string, ttl time.Duration) error
	LoadSession(ctx context.Context, flowID string) (string, error)
	DeleteSession(ctx context.Context, flowID string) error
}
