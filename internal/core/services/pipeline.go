package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/form"
	"github.com/fma-academy/registration-service/internal/core/ports"
	"github.com/fma-academy/registration-service/internal/observability"
)

type PipelineStep string

const (
	StepValidate     PipelineStep = "validate"
	StepCreateRecord PipelineStep = "create-record"
	StepNotify       PipelineStep = "notify"
	StepPaymentLink  PipelineStep = "payment-link"
	StepNavigate     PipelineStep = "navigate"
)

const (
	DefaultNotifyTimeout = 5 * time.Second
	IdempotencyTTL       = 24 * time.Hour
)

// StepError aborts a submission. The guardian stays on the signature step
// and may submit again.
type StepError struct {
	Step PipelineStep
	Err  error
}

func (e *StepError) Error() string {
	switch e.Step {
	case StepValidate:
		return fmt.Sprintf("please correct the highlighted fields: %v", e.Err)
	case StepCreateRecord:
		return fmt.Sprintf("failed to save registration: %v", e.Err)
	case StepPaymentLink:
		return fmt.Sprintf("failed to set up payment: %v", e.Err)
	case StepNavigate:
		return fmt.Sprintf("failed to open payment page: %v", e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// NonCriticalError is a failure the submission carries on past.
type NonCriticalError struct {
	Step PipelineStep
	Err  error
}

func (e *NonCriticalError) Error() string {
	return fmt.Sprintf("%s (ignored): %v", e.Step, e.Err)
}

func (e *NonCriticalError) Unwrap() error { return e.Err }

type SubmissionResult struct {
	UserID      string
	RedirectURL string
	Warnings    []error
	// Replayed is set when an idempotency key matched an earlier submission
	// and no new rows were written.
	Replayed bool
}

// Pipeline chains record creation, the confirmation notification and the
// payment link for one submitted form.
type Pipeline struct {
	validator     *form.Validator
	records       ports.RegistrationGateway
	notifier      ports.ConfirmationSender
	payments      ports.PaymentLinkIssuer
	cache         ports.SubmissionCache
	notifyTimeout time.Duration
	onNonCritical func(error)
}

type PipelineOption func(*Pipeline)

func WithNotifyTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.notifyTimeout = d
		}
	}
}

// WithSubmissionCache enables replay of submissions that carry an
// idempotency key.
func WithSubmissionCache(c ports.SubmissionCache) PipelineOption {
	return func(p *Pipeline) { p.cache = c }
}

// WithNonCriticalHook is called with every NonCriticalError.
func WithNonCriticalHook(fn func(error)) PipelineOption {
	return func(p *Pipeline) { p.onNonCritical = fn }
}

func NewPipeline(
	validator *form.Validator,
	records ports.RegistrationGateway,
	notifier ports.ConfirmationSender,
	payments ports.PaymentLinkIssuer,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		validator:     validator,
		records:       records,
		notifier:      notifier,
		payments:      payments,
		notifyTimeout: DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit runs the pipeline. Nothing leaves the process unless the whole form
// validates. Steps are not rolled back: a failed payment link leaves the
// registration rows in place.
func (p *Pipeline) Submit(
	ctx context.Context,
	state form.State,
	client ports.ClientInfo,
	idempotencyKey string,
	nav ports.Navigator,
) (*SubmissionResult, error) {
	if err := p.validator.ValidateAll(state).Err(); err != nil {
		return nil, p.fail(StepValidate, err)
	}

	if client.IPAddress == "" {
		client.IPAddress = state.IPAddress
	}
	if client.IPAddress == "" {
		client.IPAddress = form.DefaultIPAddress
	}

	result := &SubmissionResult{}

	userID, replayed := p.lookup(ctx, idempotencyKey)
	if replayed {
		result.UserID = userID
		result.Replayed = true
		log.Printf("pipeline: replaying submission %s for user %s", idempotencyKey, userID)
	} else {
		id, err := p.records.CreateRegistration(ctx, state, client)
		if err != nil {
			return nil, p.fail(StepCreateRecord, err)
		}
		if id == "" {
			return nil, p.fail(StepCreateRecord, errors.New("no user id returned"))
		}
		result.UserID = id
		p.remember(ctx, idempotencyKey, id)

		if err := p.notify(ctx, state); err != nil {
			w := &NonCriticalError{Step: StepNotify, Err: err}
			log.Printf("pipeline: %v", w)
			observability.PipelineFailures.WithLabelValues(string(StepNotify), "false").Inc()
			result.Warnings = append(result.Warnings, w)
			if p.onNonCritical != nil {
				p.onNonCritical(w)
			}
		}
	}

	linkReq := ports.PaymentLinkRequest{
		UserID:          result.UserID,
		GuardianName:    state.GuardianName,
		GuardianEmail:   state.GuardianEmail,
		Plan:            domain.BillingPlan(state.MembershipOption),
		Package:         state.Package,
		PackageQuantity: state.PackageQuantity,
	}
	if result.Replayed {
		// The stored rows may no longer match an edited form.
		linkReq = ports.PaymentLinkRequest{UserID: result.UserID, Stored: true}
	}
	url, err := p.payments.IssuePaymentLink(ctx, linkReq)
	if err != nil {
		return nil, p.fail(StepPaymentLink, err)
	}
	if url == "" {
		return nil, p.fail(StepPaymentLink, errors.New("no redirect url returned"))
	}
	result.RedirectURL = url

	if nav != nil {
		if err := nav.Navigate(ctx, url); err != nil {
			return nil, p.fail(StepNavigate, err)
		}
	}

	observability.Submissions.WithLabelValues("success").Inc()
	log.Printf("pipeline: submission for user %s complete", result.UserID)
	return result, nil
}

func (p *Pipeline) notify(ctx context.Context, state form.State) error {
	ctx, cancel := context.WithTimeout(ctx, p.notifyTimeout)
	defer cancel()

	return p.notifier.SendConfirmation(ctx, domain.Confirmation{
		Email:         state.GuardianEmail,
		Name:          state.GuardianName,
		MemberName:    state.MemberName,
		SignatureData: state.SignatureData,
	})
}

func (p *Pipeline) lookup(ctx context.Context, key string) (string, bool) {
	if key == "" || p.cache == nil {
		return "", false
	}
	userID, ok, err := p.cache.Lookup(ctx, key)
	if err != nil {
		log.Printf("pipeline: idempotency lookup failed: %v", err)
		return "", false
	}
	return userID, ok
}

func (p *Pipeline) remember(ctx context.Context, key, userID string) {
	if key == "" || p.cache == nil {
		return
	}
	if err := p.cache.Remember(ctx, key, userID, IdempotencyTTL); err != nil {
		log.Printf("pipeline: failed to remember submission %s: %v", key, err)
	}
}

func (p *Pipeline) fail(step PipelineStep, err error) error {
	log.Printf("pipeline: %s failed: %v", step, err)
	observability.PipelineFailures.WithLabelValues(string(step), "true").Inc()
	observability.Submissions.WithLabelValues("failed").Inc()
	return &StepError{Step: step, Err: err}
}
