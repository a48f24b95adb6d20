package payment

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

func TestDemoProvider(t *testing.T) {
	ctx := context.Background()
	var p DemoProvider

	flow, err := p.CreateRedirectFlow(ctx, ports.RedirectFlowRequest{
		Customer: domain.PaymentProfile{UserID: "u 1", Name: "Jane Doe"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, err := url.Parse(flow.RedirectURL)
	if err != nil {
		t.Fatalf("invalid redirect url: %v", err)
	}
	if u.Host != "pay.gocardless.com" || u.Query().Get("user") != "u 1" || u.Query().Get("name") != "Jane Doe" {
		t.Errorf("unexpected redirect url %s", flow.RedirectURL)
	}
	if !strings.HasPrefix(flow.ID, "RE_demo_") {
		t.Errorf("unexpected flow id %s", flow.ID)
	}

	mandate, err := p.CompleteRedirectFlow(ctx, flow.ID, "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(mandate.MandateID, "MD_demo_") || !strings.HasPrefix(mandate.CustomerID, "CU_demo_") {
		t.Errorf("unexpected mandate %+v", mandate)
	}

	id, err := p.CreatePayment(ctx, ports.PaymentRequest{AmountMinor: 2000, Currency: "GBP", MandateID: mandate.MandateID})
	if err != nil || !strings.HasPrefix(id, "PM_demo_") {
		t.Errorf("unexpected payment %q, %v", id, err)
	}
}
