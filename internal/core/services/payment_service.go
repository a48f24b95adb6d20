package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

const (
	PaymentCurrency = "GBP"

	// DefaultSessionTTL bounds how long a guardian has to finish the hosted
	// payment page.
	DefaultSessionTTL = time.Hour
)

type PaymentService struct {
	repo       ports.RegistrationRepository
	provider   ports.PaymentProvider
	sessions   ports.PaymentSessionStore
	signer     *SessionSigner
	successURL string
	sessionTTL time.Duration
}

var _ ports.PaymentService = (*PaymentService)(nil)

func NewPaymentService(
	repo ports.RegistrationRepository,
	provider ports.PaymentProvider,
	sessions ports.PaymentSessionStore,
	signer *SessionSigner,
	successURL string,
) *PaymentService {
	return &PaymentService{
		repo:       repo,
		provider:   provider,
		sessions:   sessions,
		signer:     signer,
		successURL: successURL,
		sessionTTL: DefaultSessionTTL,
	}
}

// CreatePaymentLink looks up a registered guardian and returns the hosted
// payment page for them.
func (s *PaymentService) CreatePaymentLink(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	profile, err := s.repo.FindPaymentProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("find payment profile: %w", err)
	}
	return s.issue(ctx, *profile)
}

// IssuePaymentLink returns the hosted payment page for a registration that
// was just created.
func (s *PaymentService) IssuePaymentLink(ctx context.Context, req ports.PaymentLinkRequest) (string, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return "", fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if req.Stored {
		return s.CreatePaymentLink(ctx, req.UserID)
	}
	return s.issue(ctx, domain.PaymentProfile{
		UserID:          req.UserID,
		Name:            req.GuardianName,
		Email:           req.GuardianEmail,
		Plan:            req.Plan,
		Package:         req.Package,
		PackageQuantity: req.PackageQuantity,
	})
}

func (s *PaymentService) issue(ctx context.Context, profile domain.PaymentProfile) (string, error) {
	if profile.Plan == "" {
		profile.Plan = domain.PlanMonthly
	}
	amount, err := ResolveAmount(profile.Plan, profile.Package, profile.PackageQuantity)
	if err != nil {
		return "", err
	}

	token, err := s.signer.Sign(profile.UserID, profile.Plan, amount)
	if err != nil {
		return "", fmt.Errorf("sign payment session: %w", err)
	}

	flow, err := s.provider.CreateRedirectFlow(ctx, ports.RedirectFlowRequest{
		Description:  describe(profile, amount),
		SessionToken: token,
		SuccessURL:   s.successRedirect(profile.UserID),
		Customer:     profile,
	})
	if err != nil {
		log.Printf("payment: failed to create redirect flow for %s: %v", profile.UserID, err)
		return "", fmt.Errorf("create redirect flow: %w", err)
	}

	if flow.ID != "" {
		if err := s.sessions.SaveSession(ctx, flow.ID, token, s.sessionTTL); err != nil {
			return "", fmt.Errorf("save payment session: %w", err)
		}
	}

	log.Printf("payment: redirect flow %s issued for %s (%s)", flow.ID, profile.UserID, FormatGBP(amount))
	return flow.RedirectURL, nil
}

// CompletePayment confirms a redirect flow, stores the resulting mandate and
// takes the first collection against it.
func (s *PaymentService) CompletePayment(ctx context.Context, flowID, userID string) (*domain.Mandate, error) {
	if strings.TrimSpace(flowID) == "" || strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: redirect flow id and user id are required", domain.ErrInvalidInput)
	}

	token, err := s.sessions.LoadSession(ctx, flowID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load payment session: %w", err)
	}
	claims, err := s.signer.Verify(token, userID)
	if err != nil {
		return nil, err
	}

	mandate, err := s.provider.CompleteRedirectFlow(ctx, flowID, token)
	if err != nil {
		log.Printf("payment: failed to complete redirect flow %s: %v", flowID, err)
		return nil, fmt.Errorf("complete redirect flow: %w", err)
	}

	if err := s.repo.ActivatePayment(ctx, userID, *mandate); err != nil {
		return nil, fmt.Errorf("activate payment: %w", err)
	}

	// The mandate is in place at this point; a failed first collection is
	// reported but does not undo the setup.
	paymentID, err := s.provider.CreatePayment(ctx, ports.PaymentRequest{
		AmountMinor:    claims.AmountMinor,
		Currency:       PaymentCurrency,
		Description:    fmt.Sprintf("FMA %s membership", claims.Plan),
		MandateID:      mandate.MandateID,
		IdempotencyKey: flowID,
	})
	if err != nil {
		log.Printf("payment: first collection failed for mandate %s: %v", mandate.MandateID, err)
	} else {
		log.Printf("payment: first collection %s created for %s", paymentID, userID)
	}

	if err := s.sessions.DeleteSession(ctx, flowID); err != nil {
		log.Printf("payment: failed to delete session for flow %s: %v", flowID, err)
	}
	return mandate, nil
}

func (s *PaymentService) successRedirect(userID string) string {
	if s.successURL == "" {
		return ""
	}
	u, err := url.Parse(s.successURL)
	if err != nil {
		return s.successURL
	}
	q := u.Query()
	q.Set("user_id", userID)
	u.RawQuery = q.Encode()
	return u.String()
}

func describe(p domain.PaymentProfile, amount int64) string {
	if p.Package == "" {
		return fmt.Sprintf("FMA %s membership - %s", p.Plan, FormatGBP(amount))
	}
	return fmt.Sprintf("FMA %s membership, %s package x%d - %s", p.Plan, p.Package, max(p.PackageQuantity, 1), FormatGBP(amount))
}
