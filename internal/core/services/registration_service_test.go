package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/form"
	"github.com/fma-academy/registration-service/internal/core/ports"
	"github.com/fma-academy/registration-service/internal/core/services"
	"github.com/fma-academy/registration-service/internal/mocks"
)

func TestRegistrationService_CreateRegistration(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*form.State)
		setupMock   func(*mocks.MockRegistrationRepository)
		expectError bool
		expectRows  int
	}{
		{
			name:       "successful_registration",
			mutate:     func(*form.State) {},
			setupMock:  func(*mocks.MockRegistrationRepository) {},
			expectRows: 1,
		},
		{
			name:        "invalid_form_never_reaches_store",
			mutate:      func(s *form.State) { s.GuardianEmail = "" },
			setupMock:   func(*mocks.MockRegistrationRepository) {},
			expectError: true,
		},
		{
			// The repository rolls back all five inserts, so nothing is left.
			name:   "store_failure_leaves_no_rows",
			mutate: func(*form.State) {},
			setupMock: func(m *mocks.MockRegistrationRepository) {
				m.CreateRegistrationError = errors.New("insert emergency contact: connection reset")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockRegistrationRepository()
			tt.setupMock(repo)
			svc := services.NewRegistrationService(repo, form.NewValidator())

			state := mocks.ValidFormState()
			tt.mutate(&state)

			id, err := svc.CreateRegistration(context.Background(), state, ports.ClientInfo{UserAgent: "ua"})
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if id != "" {
					t.Errorf("expected no id on failure, got %q", id)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if repo.Count() != tt.expectRows {
				t.Errorf("expected %d stored registrations, got %d", tt.expectRows, repo.Count())
			}
		})
	}
}

func TestBuildRegistration_MapsRows(t *testing.T) {
	state := mocks.ValidFormState()
	state.HasAllergies = true
	state.AllergiesDetails = "Peanuts"
	state.HasInjury = false
	state.InjuryDetails = "stale text from an earlier edit"
	state.GuardianHomePhone = "  "
	state.GuardianWorkPhone = "01234567890"
	state.IPAddress = "10.0.0.8"
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	reg := services.BuildRegistration("user-1", state, ports.ClientInfo{UserAgent: "ua"}, now)

	for name, id := range map[string]string{
		"member":    reg.Member.UserID,
		"emergency": reg.EmergencyContact.UserID,
		"signature": reg.Signature.UserID,
		"contract":  reg.ContractAcceptance.UserID,
	} {
		if id != "user-1" {
			t.Errorf("%s row not linked to guardian: %q", name, id)
		}
	}
	if reg.Member.AllergiesDetails == nil || *reg.Member.AllergiesDetails != "Peanuts" {
		t.Errorf("expected allergy details kept, got %v", reg.Member.AllergiesDetails)
	}
	if reg.Member.InjuryDetails != nil {
		t.Errorf("expected injury details nulled when flag is false, got %q", *reg.Member.InjuryDetails)
	}
	if reg.Guardian.HomePhone != nil {
		t.Error("expected blank home phone to be NULL")
	}
	if reg.Guardian.WorkPhone == nil {
		t.Error("expected work phone to be kept")
	}
	if reg.ContractAcceptance.ContractVersion != domain.ContractVersion || !reg.ContractAcceptance.AcceptedAt.Equal(now) {
		t.Errorf("unexpected contract acceptance %+v", reg.ContractAcceptance)
	}
	if reg.Signature.IPAddress != "10.0.0.8" || reg.Signature.UserAgent != "ua" {
		t.Errorf("unexpected signature client info %+v", reg.Signature)
	}
	if reg.Guardian.PaymentStatus != domain.PaymentPending {
		t.Errorf("expected pending payment, got %s", reg.Guardian.PaymentStatus)
	}
}

func TestRegistrationService_MembershipOption(t *testing.T) {
	repo := mocks.NewMockRegistrationRepository()
	svc := services.NewRegistrationService(repo, form.NewValidator())

	reg := services.BuildRegistration("annual-user", mocks.ValidFormState(), ports.ClientInfo{}, time.Now())
	repo.Seed(reg)

	blank := services.BuildRegistration("blank-user", mocks.ValidFormState(), ports.ClientInfo{}, time.Now())
	blank.Member.MembershipOption = ""
	repo.Seed(blank)

	ctx := context.Background()
	if plan, err := svc.MembershipOption(ctx, "annual-user"); err != nil || plan != domain.PlanAnnual {
		t.Errorf("expected annual, got %q (%v)", plan, err)
	}
	if plan, err := svc.MembershipOption(ctx, "blank-user"); err != nil || plan != domain.PlanMonthly {
		t.Errorf("expected monthly fallback, got %q (%v)", plan, err)
	}
	if _, err := svc.MembershipOption(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.MembershipOption(ctx, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
