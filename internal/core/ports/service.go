package ports

import (
	"context"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/form"
	"github.com/fma-academy/registration-service/internal/core/signature"
)

// ClientInfo identifies the device a registration was signed on.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type PaymentLinkRequest struct {
	UserID          string
	GuardianName    string
	GuardianEmail   string
	Plan            domain.BillingPlan
	Package         string
	PackageQuantity int
	// Stored prices the link from the stored registration and ignores the
	// plan and package above.
	Stored bool
}

// RegistrationGateway creates the full record set for a submitted form and
// returns the generated user id.
type RegistrationGateway interface {
	CreateRegistration(ctx context.Context, state form.State, client ClientInfo) (string, error)
}

// ConfirmationSender delivers the contract confirmation notification.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, c domain.Confirmation) error
}

// PaymentLinkIssuer returns the hosted payment page to send the guardian to.
type PaymentLinkIssuer interface {
	IssuePaymentLink(ctx context.Context, req PaymentLinkRequest) (string, error)
}

// Navigator moves the guardian to the payment page.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

type RegistrationService interface {
	RegistrationGateway
	MembershipOption(ctx context.Context, userID string) (domain.BillingPlan, error)
}

type NotificationService interface {
	ConfirmationSender
}

type PaymentService interface {
	PaymentLinkIssuer
	CreatePaymentLink(ctx context.Context, userID string) (string, error)
	CompletePayment(ctx context.Context, flowID, userID string) (*domain.Mandate, error)
}

// DraftView is what the wizard returns after every operation.
type DraftView struct {
	ID         string           `json:"draftId"`
	Step       form.StepID      `json:"step"`
	StepIndex  int              `json:"stepIndex"`
	Progress   float64          `json:"progress"`
	State      form.State       `json:"state"`
	Signed     bool             `json:"signed"`
	Transition *form.Transition `json:"transition,omitempty"`
	Diagnostic string           `json:"diagnostic,omitempty"`
}

type WizardService interface {
	StartDraft(ctx context.Context, client ClientInfo) (*DraftView, error)
	GetDraft(ctx context.Context, id string) (*DraftView, error)
	UpdateFields(ctx context.Context, id string, patch []byte) (*DraftView, error)
	Next(ctx context.Context, id string) (*DraftView, error)
	Previous(ctx context.Context, id string) (*DraftView, error)
	AddStroke(ctx context.Context, id string, points []signature.Point) (*DraftView, error)
	UndoStroke(ctx context.Context, id string) (*DraftView, error)
	ClearSignature(ctx context.Context, id string) (*DraftView, error)
	Submit(ctx context.Context, id string, client ClientInfo, idempotencyKey string, nav Navigator) (string, error)
}
