package payment

import (
	"context"
	"log"
	"net/url"

	"github.com/google/uuid"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

const demoPaymentURL = "https://pay.gocardless.com/demo"

// DemoProvider stands in for GoCardless when no access token is configured.
// Links point at the demo page and completion always succeeds.
type DemoProvider struct{}

var _ ports.PaymentProvider = DemoProvider{}

func (DemoProvider) CreateRedirectFlow(ctx context.Context, req ports.RedirectFlowRequest) (*ports.RedirectFlow, error) {
	q := url.Values{}
	q.Set("user", req.Customer.UserID)
	q.Set("name", req.Customer.Name)

	log.Printf("payment: demo redirect flow for %s", req.Customer.UserID)
	return &ports.RedirectFlow{
		ID:          "RE_demo_" + uuid.NewString(),
		RedirectURL: demoPaymentURL + "?" + q.Encode(),
	}, nil
}

func (DemoProvider) CompleteRedirectFlow(ctx context.Context, flowID, sessionToken string) (*domain.Mandate, error) {
	suffix := uuid.NewString()[:8]
	return &domain.Mandate{
		MandateID:  "MD_demo_" + suffix,
		CustomerID: "CU_demo_" + suffix,
	}, nil
}

func (DemoProvider) CreatePayment(ctx context.Context, req ports.PaymentRequest) (string, error) {
	log.Printf("payment: demo payment of %d %s against %s", req.AmountMinor, req.Currency, req.MandateID)
	return "PM_demo_" + uuid.NewString()[:8], nil
}
