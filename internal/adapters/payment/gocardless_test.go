package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sony/gobreaker"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

type recordedRequest struct {
	Method  string
	Path    string
	Header  http.Header
	Payload map[string]interface{}
}

type fakeGoCardless struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeGoCardless) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		Header:  r.Header.Clone(),
		Payload: payload,
	})
	status, body := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeGoCardless) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("expected a request to be sent")
	}
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, fake *fakeGoCardless) *GoCardlessClient {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewGoCardlessClient("test-token", "sandbox").WithBaseURL(srv.URL)
}

func TestNewGoCardlessClient_Environment(t *testing.T) {
	if c := NewGoCardlessClient("t", "live"); c.baseURL != liveBaseURL {
		t.Errorf("expected live url, got %s", c.baseURL)
	}
	if c := NewGoCardlessClient("t", "sandbox"); c.baseURL != sandboxBaseURL {
		t.Errorf("expected sandbox url, got %s", c.baseURL)
	}
}

func TestCreateRedirectFlow(t *testing.T) {
	fake := &fakeGoCardless{body: `{"redirect_flows":{"id":"RE123","redirect_url":"https://pay-sandbox.gocardless.com/flow/RE123"}}`}
	client := newTestClient(t, fake)

	flow, err := client.CreateRedirectFlow(context.Background(), ports.RedirectFlowRequest{
		Description:  "FMA Annual Membership",
		SessionToken: "tok",
		SuccessURL:   "http://localhost:3000/payment-success?user_id=u1",
		Customer: domain.PaymentProfile{
			UserID:   "u1",
			Name:     "Jane Van Doe",
			Email:    "jane@example.com",
			Address:  "1 High Street",
			PostCode: "AB1 2CD",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow.ID != "RE123" || !strings.HasSuffix(flow.RedirectURL, "/RE123") {
		t.Errorf("unexpected flow: %+v", flow)
	}

	req := fake.last(t)
	if req.Method != http.MethodPost || req.Path != "/redirect_flows" {
		t.Errorf("unexpected request %s %s", req.Method, req.Path)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer test-token" {
		t.Errorf("unexpected authorization header %q", got)
	}
	if got := req.Header.Get("GoCardless-Version"); got != apiVersion {
		t.Errorf("unexpected version header %q", got)
	}

	rf := req.Payload["redirect_flows"].(map[string]interface{})
	if rf["session_token"] != "tok" {
		t.Errorf("unexpected session token %v", rf["session_token"])
	}
	customer := rf["prefilled_customer"].(map[string]interface{})
	if customer["given_name"] != "Jane" || customer["family_name"] != "Van Doe" {
		t.Errorf("unexpected name split: %v", customer)
	}
	if customer["country_code"] != "GB" || customer["postal_code"] != "AB1 2CD" {
		t.Errorf("unexpected customer: %v", customer)
	}
}

func TestCompleteRedirectFlow(t *testing.T) {
	fake := &fakeGoCardless{body: `{"redirect_flows":{"id":"RE123","links":{"mandate":"MD1","customer":"CU1"}}}`}
	client := newTestClient(t, fake)

	mandate, err := client.CompleteRedirectFlow(context.Background(), "RE123", "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mandate.MandateID != "MD1" || mandate.CustomerID != "CU1" {
		t.Errorf("unexpected mandate: %+v", mandate)
	}

	req := fake.last(t)
	if req.Path != "/redirect_flows/RE123/actions/complete" {
		t.Errorf("unexpected path %s", req.Path)
	}
	data := req.Payload["data"].(map[string]interface{})
	if data["session_token"] != "tok" {
		t.Errorf("unexpected payload %v", req.Payload)
	}
}

func TestCreatePayment_SendsIdempotencyKey(t *testing.T) {
	fake := &fakeGoCardless{body: `{"payments":{"id":"PM1"}}`}
	client := newTestClient(t, fake)

	id, err := client.CreatePayment(context.Background(), ports.PaymentRequest{
		AmountMinor:    10000,
		Currency:       "GBP",
		Description:    "FMA Annual Membership",
		MandateID:      "MD1",
		IdempotencyKey: "RE123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "PM1" {
		t.Errorf("expected PM1, got %s", id)
	}

	req := fake.last(t)
	if got := req.Header.Get("Idempotency-Key"); got != "RE123" {
		t.Errorf("unexpected idempotency key %q", got)
	}
	p := req.Payload["payments"].(map[string]interface{})
	if p["amount"].(float64) != 10000 || p["currency"] != "GBP" {
		t.Errorf("unexpected payment payload %v", p)
	}
}

func TestGoCardlessClient_APIError(t *testing.T) {
	fake := &fakeGoCardless{
		status: http.StatusUnprocessableEntity,
		body:   `{"error":{"message":"Validation failed","type":"validation_failed","code":422}}`,
	}
	client := newTestClient(t, fake)

	_, err := client.CompleteRedirectFlow(context.Background(), "RE123", "tok")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity || apiErr.Message != "Validation failed" {
		t.Errorf("unexpected api error: %+v", apiErr)
	}
}

func TestGoCardlessClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	fake := &fakeGoCardless{status: http.StatusBadRequest, body: `{"error":{"message":"bad"}}`}
	client := newTestClient(t, fake)

	for i := 0; i < 5; i++ {
		_, _ = client.CreatePayment(context.Background(), ports.PaymentRequest{MandateID: "MD1"})
	}
	if client.cb.State() != gobreaker.StateClosed {
		t.Errorf("expected breaker closed, got %s", client.cb.State())
	}
}

func TestGoCardlessClient_ServerErrorsTripBreaker(t *testing.T) {
	fake := &fakeGoCardless{status: http.StatusInternalServerError, body: "upstream down"}
	client := newTestClient(t, fake)

	for i := 0; i < 3; i++ {
		_, err := client.CreatePayment(context.Background(), ports.PaymentRequest{MandateID: "MD1"})
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "upstream down" {
			t.Fatalf("expected raw body as message, got %v", err)
		}
	}

	_, err := client.CreatePayment(context.Background(), ports.PaymentRequest{MandateID: "MD1"})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected open breaker, got %v", err)
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in, given, family string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"  Jane  Van Doe ", "Jane", "Van Doe"},
		{"Madonna", "Madonna", "Madonna"},
	}
	for _, tt := range tests {
		given, family := splitName(tt.in)
		if given != tt.given || family != tt.family {
			t.Errorf("splitName(%q) = %q, %q", tt.in, given, family)
		}
	}
}
