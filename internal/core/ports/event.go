package ports

import (
	"context"
	"time"
)

// EventConfirmationEmail is the outbox event type of ConfirmationEmailEvent.
const EventConfirmationEmail = "confirmation_email"

// ConfirmationEmailEvent is queued once per confirmation request and handed
// to the mailer through the message broker.
type ConfirmationEmailEvent struct {
	LogID         string    `json:"log_id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	MemberName    string    `json:"member_name"`
	Subject       string    `json:"subject"`
	SignatureData string    `json:"signature_data,omitempty"`
	RequestedAt   time.Time `json:"requested_at"`
}

type ConfirmationEventPublisher interface {
	PublishConfirmationRequested(ctx context.Context, evt ConfirmationEmailEvent) error
}
