package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

const ConfirmationSubject = "FMA Contract Confirmation"

// NotificationService records confirmation emails. Delivery happens out of
// band: the repository queues an outbox event that the relay hands to the
// mailer.
type NotificationService struct {
	repo ports.RegistrationRepository
	now  func() time.Time
}

var _ ports.NotificationService = (*NotificationService)(nil)

func NewNotificationService(repo ports.RegistrationRepository) *NotificationService {
	return &NotificationService{repo: repo, now: time.Now}
}

func (s *NotificationService) SendConfirmation(ctx context.Context, c domain.Confirmation) error {
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return fmt.Errorf("%w: recipient email is required", domain.ErrInvalidInput)
	}

	evt := ports.ConfirmationEmailEvent{
		LogID:         uuid.NewString(),
		Email:         email,
		Name:          c.Name,
		MemberName:    c.MemberName,
		Subject:       ConfirmationSubject,
		SignatureData: c.SignatureData,
		RequestedAt:   s.now(),
	}
	if err := s.repo.LogConfirmationEmail(ctx, evt); err != nil {
		log.Printf("notification: failed to log confirmation email: %v", err)
		return fmt.Errorf("log confirmation email: %w", err)
	}

	log.Printf("notification: confirmation queued for %s", email)
	return nil
}
