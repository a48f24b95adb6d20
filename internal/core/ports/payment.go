package ports

import (
	"context"

	"github.com/fma-academy/registration-service/internal/core/domain"
)

type RedirectFlowRequest struct {
	Description  string
	SessionToken string
	SuccessURL   string
	Customer     domain.PaymentProfile
}

type RedirectFlow struct {
	ID          string
	RedirectURL string
}

type PaymentRequest struct {
	AmountMinor int64
	Currency    string
	Description string
	MandateID   string
	// IdempotencyKey is forwarded to the provider so a retried completion
	// does not charge twice.
	IdempotencyKey string
}

// PaymentProvider is the hosted direct-debit provider.
type PaymentProvider interface {
	CreateRedirectFlow(ctx context.Context, req RedirectFlowRequest) (*RedirectFlow, error)
	CompleteRedirectFlow(ctx context.Context, flowID, sessionToken string) (*domain.Mandate, error)
	CreatePayment(ctx context.Context, req PaymentRequest) (string, error)
}
