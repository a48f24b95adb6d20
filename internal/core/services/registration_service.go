package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/form"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

type RegistrationService struct {
	repo      ports.RegistrationRepository
	validator *form.Validator
	now       func() time.Time
}

var _ ports.RegistrationService = (*RegistrationService)(nil)

func NewRegistrationService(
	repo ports.RegistrationRepository,
	validator *form.Validator,
) *RegistrationService {
	return &RegistrationService{
		repo:      repo,
		validator: validator,
		now:       time.Now,
	}
}

// CreateRegistration validates the whole form and writes the guardian,
// member, emergency contact, signature and contract acceptance rows under a
// freshly generated user id.
func (s *RegistrationService) CreateRegistration(
	ctx context.Context,
	state form.State,
	client ports.ClientInfo,
) (string, error) {
	if err := s.validator.ValidateAll(state).Err(); err != nil {
		return "", err
	}

	reg := BuildRegistration(uuid.NewString(), state, client, s.now())
	if err := s.repo.CreateRegistration(ctx, reg); err != nil {
		log.Printf("registration: failed to create registration: %v", err)
		return "", fmt.Errorf("create registration: %w", err)
	}

	log.Printf("registration: user created with ID %s", reg.Guardian.ID)
	return reg.Guardian.ID, nil
}

// MembershipOption returns the billing plan stored for a member, falling back
// to monthly when none was recorded.
func (s *RegistrationService) MembershipOption(ctx context.Context, userID string) (domain.BillingPlan, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	plan, err := s.repo.FindMembershipOption(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("find membership option: %w", err)
	}
	if plan == "" {
		return domain.PlanMonthly, nil
	}
	return plan, nil
}

// BuildRegistration maps a submitted form onto the rows stored for it.
// Detail fields are dropped when their flag is unset and empty optional
// values become NULL.
func BuildRegistration(userID string, state form.State, client ports.ClientInfo, now time.Time) domain.Registration {
	ip := client.IPAddress
	if ip == "" {
		ip = state.IPAddress
	}
	if ip == "" {
		ip = form.DefaultIPAddress
	}

	plan := domain.BillingPlan(state.MembershipOption)
	if plan == "" {
		plan = domain.PlanMonthly
	}
	quantity := state.PackageQuantity
	if quantity < 1 {
		quantity = 1
	}

	return domain.Registration{
		Guardian: domain.Guardian{
			ID:            userID,
			Name:          strings.TrimSpace(state.GuardianName),
			Email:         strings.TrimSpace(state.GuardianEmail),
			Address:       state.GuardianAddress,
			PostCode:      state.GuardianPostCode,
			HomePhone:     optional(state.GuardianHomePhone),
			MobilePhone:   state.GuardianMobilePhone,
			WorkPhone:     optional(state.GuardianWorkPhone),
			Relationship:  state.GuardianRelationship,
			PaymentStatus: domain.PaymentPending,
			CreatedAt:     now,
		},
		Member: domain.Member{
			UserID:                   userID,
			Name:                     strings.TrimSpace(state.MemberName),
			Package:                  state.Package,
			PackageQuantity:          quantity,
			Activity:                 state.Activity,
			Day:                      state.Day,
			Time:                     state.Time,
			DateOfBirth:              state.DateOfBirth,
			Gender:                   state.Gender,
			SiblingAttends:           state.SiblingAttends,
			HasMedicalConditions:     state.HasMedicalConditions,
			MedicalConditionsDetails: detail(state.HasMedicalConditions, state.MedicalConditionsDetails),
			HasAllergies:             state.HasAllergies,
			AllergiesDetails:         detail(state.HasAllergies, state.AllergiesDetails),
			HasInjury:                state.HasInjury,
			InjuryDetails:            detail(state.HasInjury, state.InjuryDetails),
			PhotoConsent:             state.PhotoConsent,
			FirstAidConsent:          state.FirstAidConsent,
			MembershipOption:         plan,
			BranchID:                 optional(state.BranchID),
		},
		EmergencyContact: domain.EmergencyContact{
			UserID:       userID,
			Name:         state.EmergencyName,
			Address:      state.EmergencyAddress,
			PostCode:     state.EmergencyPostCode,
			HomePhone:    optional(state.EmergencyHomePhone),
			MobilePhone:  state.EmergencyMobilePhone,
			WorkPhone:    optional(state.EmergencyWorkPhone),
			Relationship: state.EmergencyRelationship,
		},
		Signature: domain.Signature{
			UserID:    userID,
			Data:      state.SignatureData,
			IPAddress: ip,
			UserAgent: client.UserAgent,
		},
		ContractAcceptance: domain.ContractAcceptance{
			UserID:          userID,
			AcceptedAt:      now,
			ContractVersion: domain.ContractVersion,
		},
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func detail(flag bool, v string) *string {
	if !flag {
		return nil
	}
	return optional(v)
}
