package services_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
	"github.com/fma-academy/registration-service/internal/core/services"
	"github.com/fma-academy/registration-service/internal/mocks"
)

type paymentFixture struct {
	repo     *mocks.MockRegistrationRepository
	provider *mocks.MockPaymentProvider
	sessions *mocks.MockPaymentSessionStore
	svc      *services.PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		repo:     mocks.NewMockRegistrationRepository(),
		provider: mocks.NewMockPaymentProvider(),
		sessions: mocks.NewMockPaymentSessionStore(),
	}
	signer := services.NewSessionSigner([]byte("test-secret"), time.Hour)
	f.svc = services.NewPaymentService(f.repo, f.provider, f.sessions, signer, "https://fma.example.com/payment-success")
	return f
}

func (f *paymentFixture) seed(userID string, plan domain.BillingPlan) {
	reg := services.BuildRegistration(userID, mocks.ValidFormState(), ports.ClientInfo{}, time.Now())
	reg.Member.MembershipOption = plan
	f.repo.Seed(reg)
}

func TestPaymentService_CreatePaymentLink(t *testing.T) {
	f := newPaymentFixture()
	f.seed("user-1", domain.PlanAnnual)

	link, err := f.svc.CreatePaymentLink(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(link, "https://pay-sandbox.gocardless.com/flow/") {
		t.Errorf("unexpected link %q", link)
	}

	req := f.provider.CreateFlowCalls[0]
	if req.Customer.Email != "jane.doe@example.com" || req.Customer.Address != "123 Main St" {
		t.Errorf("expected prefilled customer, got %+v", req.Customer)
	}
	success, err := url.Parse(req.SuccessURL)
	if err != nil || success.Query().Get("user_id") != "user-1" {
		t.Errorf("expected success url to carry user id, got %q", req.SuccessURL)
	}
	if !f.sessions.Has("RE0001") {
		t.Error("expected session token to be stored for the flow")
	}
}

func TestPaymentService_CreatePaymentLinkErrors(t *testing.T) {
	f := newPaymentFixture()

	if _, err := f.svc.CreatePaymentLink(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.svc.CreatePaymentLink(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	f.seed("user-1", domain.PlanMonthly)
	f.provider.CreateFlowError = errors.New("503 from provider")
	if _, err := f.svc.CreatePaymentLink(context.Background(), "user-1"); err == nil {
		t.Error("expected provider failure to surface")
	}
}

func TestPaymentService_CompletePayment(t *testing.T) {
	f := newPaymentFixture()
	f.seed("user-1", domain.PlanAnnual)

	ctx := context.Background()
	if _, err := f.svc.CreatePaymentLink(ctx, "user-1"); err != nil {
		t.Fatal(err)
	}

	mandate, err := f.svc.CompletePayment(ctx, "RE0001", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mandate.MandateID != "MD0001" || mandate.CustomerID != "CU0001" {
		t.Errorf("unexpected mandate %+v", mandate)
	}

	reg, _ := f.repo.Registration("user-1")
	if reg.Guardian.PaymentStatus != domain.PaymentActive {
		t.Errorf("expected active payment status, got %s", reg.Guardian.PaymentStatus)
	}

	if len(f.provider.PaymentCalls) != 1 {
		t.Fatalf("expected one payment, got %d", len(f.provider.PaymentCalls))
	}
	pay := f.provider.PaymentCalls[0]
	// annual plan + one Gold package
	if pay.AmountMinor != 10000 || pay.Currency != "GBP" || pay.MandateID != "MD0001" {
		t.Errorf("unexpected payment %+v", pay)
	}
	if f.sessions.Has("RE0001") {
		t.Error("expected session to be removed after completion")
	}
}

func TestPaymentService_CompleteRejectsOtherUser(t *testing.T) {
	f := newPaymentFixture()
	f.seed("user-1", domain.PlanMonthly)

	ctx := context.Background()
	if _, err := f.svc.CreatePaymentLink(ctx, "user-1"); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.CompletePayment(ctx, "RE0001", "user-2"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected subject mismatch to be rejected, got %v", err)
	}
	if len(f.provider.CompleteFlowCalls) != 0 {
		t.Error("expected provider not to be called")
	}
}

func TestPaymentService_CompleteUnknownFlow(t *testing.T) {
	f := newPaymentFixture()
	if _, err := f.svc.CompletePayment(context.Background(), "RE9999", "user-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPaymentService_FirstCollectionFailureKeepsMandate(t *testing.T) {
	f := newPaymentFixture()
	f.seed("user-1", domain.PlanMonthly)
	f.provider.PaymentError = errors.New("insufficient funds")

	ctx := context.Background()
	if _, err := f.svc.CreatePaymentLink(ctx, "user-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.CompletePayment(ctx, "RE0001", "user-1"); err != nil {
		t.Fatalf("expected completion to succeed, got %v", err)
	}
	if _, ok := f.repo.Mandate("user-1"); !ok {
		t.Error("expected mandate to be stored")
	}
}

func TestPaymentService_IssuePaymentLink(t *testing.T) {
	f := newPaymentFixture()
	_, err := f.svc.IssuePaymentLink(context.Background(), ports.PaymentLinkRequest{
		UserID:          "user-9",
		GuardianName:    "Jane Doe",
		GuardianEmail:   "jane@example.com",
		Plan:            domain.PlanMonthly,
		Package:         "Silver",
		PackageQuantity: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.provider.CreateFlowCalls[0].Description; !strings.Contains(got, "£105.50") {
		t.Errorf("expected description to carry the amount, got %q", got)
	}
}

func TestPaymentService_IssueStoredPaymentLink(t *testing.T) {
	f := newPaymentFixture()
	f.seed("user-1", domain.PlanAnnual)

	_, err := f.svc.IssuePaymentLink(context.Background(), ports.PaymentLinkRequest{
		UserID: "user-1",
		Plan:   domain.PlanMonthly,
		Stored: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.provider.CreateFlowCalls[0].Description; !strings.Contains(got, "annual") {
		t.Errorf("expected the stored plan to be used, got %q", got)
	}

	_, err = f.svc.IssuePaymentLink(context.Background(), ports.PaymentLinkRequest{UserID: "user-2", Stored: true})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for an unknown user, got %v", err)
	}
}

func TestSessionSigner_Expiry(t *testing.T) {
	signer := services.NewSessionSigner([]byte("s"), -time.Minute)
	token, err := signer.Sign("user-1", domain.PlanMonthly, 100)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := signer.Verify(token, "user-1"); err == nil {
		t.Error("expected expired token to be rejected")
	}
}
