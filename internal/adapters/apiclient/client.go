// Package apiclient calls the registration JSON API from a remote front end
// and implements the ports the submission pipeline needs.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/fma-academy/registration-service/internal/config"
	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/form"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
}

var (
	_ ports.RegistrationGateway = (*Client)(nil)
	_ ports.ConfirmationSender  = (*Client)(nil)
	_ ports.PaymentLinkIssuer   = (*Client)(nil)
)

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		cb:      config.NewCircuitBreaker("Registration-API"),
	}
}

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("api: %d %s: %v", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type submitRequest struct {
	form.State
	UserAgent string `json:"userAgent"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

func (c *Client) CreateRegistration(ctx context.Context, state form.State, client ports.ClientInfo) (string, error) {
	if client.IPAddress != "" {
		state.IPAddress = client.IPAddress
	}

	var out submitResponse
	err := c.do(ctx, http.MethodPost, "/submit-form", submitRequest{State: state, UserAgent: client.UserAgent}, &out)
	if err != nil {
		return "", err
	}
	return out.UserID, nil
}

func (c *Client) SendConfirmation(ctx context.Context, conf domain.Confirmation) error {
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodPost, "/send-email", conf, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("api: send-email did not report success")
	}
	return nil
}

// IssuePaymentLink asks the API for a redirect flow. Plan and package are
// read back from the stored registration.
func (c *Client) IssuePaymentLink(ctx context.Context, req ports.PaymentLinkRequest) (string, error) {
	var out struct {
		RedirectURL string `json:"redirect_url"`
		UserID      string `json:"user_id"`
	}
	path := "/gocardless?userId=" + url.QueryEscape(req.UserID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.RedirectURL, nil
}

// PublicAddress returns the caller address as seen by the API.
func (c *Client) PublicAddress(ctx context.Context) (string, error) {
	var out struct {
		IP string `json:"ip"`
	}
	if err := c.do(ctx, http.MethodGet, "/get-ip", nil, &out); err != nil {
		return "", err
	}
	return out.IP, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var apiErr *Error
	_, err := c.cb.Execute(func() (interface{}, error) {
		var body io.Reader = http.NoBody
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
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
			e := &Error{Status: resp.StatusCode}
			if err := json.Unmarshal(raw, e); err != nil || e.Message == "" {
				e.Message = http.StatusText(resp.StatusCode)
			}
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
