// Package payment talks to the GoCardless redirect flow API.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/fma-academy/registration-service/internal/config"
	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

const (
	sandboxBaseURL = "https://api-sandbox.gocardless.com"
	liveBaseURL    = "https://api.gocardless.com"
	apiVersion     = "2015-07-06"
	requestTimeout = 15 * time.Second
)

// GoCardlessClient implements ports.PaymentProvider against the GoCardless
// REST API.
type GoCardlessClient struct {
	accessToken string
	baseURL     string
	client      *http.Client
	cb          *gobreaker.CircuitBreaker
}

var _ ports.PaymentProvider = (*GoCardlessClient)(nil)

// NewGoCardlessClient targets the sandbox unless environment is "live".
func NewGoCardlessClient(accessToken, environment string) *GoCardlessClient {
	base := sandboxBaseURL
	if environment == "live" {
		base = liveBaseURL
	}
	return &GoCardlessClient{
		accessToken: accessToken,
		baseURL:     base,
		client:      &http.Client{Timeout: requestTimeout},
		cb:          config.NewCircuitBreaker("GoCardless"),
	}
}

// WithBaseURL points the client at another API host.
func (c *GoCardlessClient) WithBaseURL(u string) *GoCardlessClient {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

type prefilledCustomer struct {
	GivenName    string `json:"given_name,omitempty"`
	FamilyName   string `json:"family_name,omitempty"`
	Email        string `json:"email,omitempty"`
	AddressLine1 string `json:"address_line1,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	CountryCode  string `json:"country_code"`
}

type redirectFlowBody struct {
	Description        string            `json:"description,omitempty"`
	SessionToken       string            `json:"session_token"`
	SuccessRedirectURL string            `json:"success_redirect_url"`
	PrefilledCustomer  prefilledCustomer `json:"prefilled_customer"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

type redirectFlowResponse struct {
	RedirectFlows struct {
		ID          string `json:"id"`
		RedirectURL string `json:"redirect_url"`
		Links       struct {
			Mandate  string `json:"mandate"`
			Customer string `json:"customer"`
		} `json:"links"`
	} `json:"redirect_flows"`
}

type paymentBody struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	Links       map[string]string `json:"links"`
}

type paymentResponse struct {
	Payments struct {
		ID string `json:"id"`
	} `json:"payments"`
}

// APIError is the error envelope GoCardless returns.
type APIError struct {
	Status  int
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gocardless: %d %s: %s", e.Status, e.Type, e.Message)
}

func (c *GoCardlessClient) CreateRedirectFlow(ctx context.Context, req ports.RedirectFlowRequest) (*ports.RedirectFlow, error) {
	given, family := splitName(req.Customer.Name)
	body := map[string]redirectFlowBody{
		"redirect_flows": {
			Description:        req.Description,
			SessionToken:       req.SessionToken,
			SuccessRedirectURL: req.SuccessURL,
			PrefilledCustomer: prefilledCustomer{
				GivenName:    given,
				FamilyName:   family,
				Email:        req.Customer.Email,
				AddressLine1: req.Customer.Address,
				PostalCode:   req.Customer.PostCode,
				CountryCode:  "GB",
			},
			Metadata: map[string]string{"user_id": req.Customer.UserID},
		},
	}

	var out redirectFlowResponse
	if err := c.do(ctx, http.MethodPost, "/redirect_flows", "", body, &out); err != nil {
		return nil, err
	}
	return &ports.RedirectFlow{
		ID:          out.RedirectFlows.ID,
		RedirectURL: out.RedirectFlows.RedirectURL,
	}, nil
}

func (c *GoCardlessClient) CompleteRedirectFlow(ctx context.Context, flowID, sessionToken string) (*domain.Mandate, error) {
	body := map[string]map[string]string{
		"data": {"session_token": sessionToken},
	}

	var out redirectFlowResponse
	path := "/redirect_flows/" + flowID + "/actions/complete"
	if err := c.do(ctx, http.MethodPost, path, "", body, &out); err != nil {
		return nil, err
	}
	return &domain.Mandate{
		MandateID:  out.RedirectFlows.Links.Mandate,
		CustomerID: out.RedirectFlows.Links.Customer,
	}, nil
}

func (c *GoCardlessClient) CreatePayment(ctx context.Context, req ports.PaymentRequest) (string, error) {
	body := map[string]paymentBody{
		"payments": {
			Amount:      req.AmountMinor,
			Currency:    req.Currency,
			Description: req.Description,
			Links:       map[string]string{"mandate": req.MandateID},
		},
	}

	var out paymentResponse
	if err := c.do(ctx, http.MethodPost, "/payments", req.IdempotencyKey, body, &out); err != nil {
		return "", err
	}
	return out.Payments.ID, nil
}

// do sends one request through the circuit breaker. Client errors (4xx)
// are returned as *APIError without counting against the breaker.
func (c *GoCardlessClient) do(ctx context.Context, method, path, idempotencyKey string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var apiErr *APIError
	_, err = c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		req.Header.Set("GoCardless-Version", apiVersion)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", idempotencyKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			e := decodeError(resp.StatusCode, raw)
			if resp.StatusCode < 500 {
				apiErr = e
				return nil, nil
			}
			return nil, e
		}

		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	if apiErr != nil {
		return apiErr
	}
	return nil
}

func decodeError(status int, raw []byte) *APIError {
	var envelope struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Message == "" {
		envelope.Error = APIError{Message: strings.TrimSpace(string(raw))}
	}
	envelope.Error.Status = status
	return &envelope.Error
}

// splitName splits a full name on the first space. A single word is used
// for both parts.
func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	given, family, ok := strings.Cut(full, " ")
	if !ok {
		return full, full
	}
	return given, strings.TrimSpace(family)
}
