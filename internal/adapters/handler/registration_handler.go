package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/form"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

type RegistrationHandler struct {
	registrationService ports.RegistrationService
}

func NewRegistrationHandler(registration ports.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registration}
}

// SubmitFormRequest is the submitted form plus the browser's user agent.
type SubmitFormRequest struct {
	form.State
	UserAgent string `json:"userAgent"`
}

type SubmitFormResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

type validationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type membershipResponse struct {
	Success          bool               `json:"success"`
	MembershipOption domain.BillingPlan `json:"membership_option"`
	Error            string             `json:"error,omitempty"`
	Details          string             `json:"details,omitempty"`
}

// SubmitForm handles POST /submit-form.
func (h *RegistrationHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var req SubmitFormRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	client := ports.ClientInfo{
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
	}
	if client.UserAgent == "" {
		client.UserAgent = r.UserAgent()
	}

	userID, err := h.registrationService.CreateRegistration(r.Context(), req.State, client)
	if err != nil {
		writeSubmitError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SubmitFormResponse{Success: true, UserID: userID})
}

func writeSubmitError(w http.ResponseWriter, err error) {
	var verr *form.ValidationError
	var serr *domain.StoreError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, validationResponse{Error: "Validation failed", Fields: verr.Fields})
	case errors.As(err, &serr):
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to "+serr.Op, serr.Err)
	default:
		log.Printf("registration: unexpected error: %v", err)
		writeErrorDetails(w, http.StatusInternalServerError, "An unexpected error occurred", err)
	}
}

// MembershipDetails handles GET /membership-details. Failures still report
// the monthly plan so the payment page can render.
func (h *RegistrationHandler) MembershipDetails(w http.ResponseWriter, r *http.Request) {
	userID := queryParam(r, "userId", "user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	plan, err := h.registrationService.MembershipOption(r.Context(), userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, membershipResponse{
			Error:            "Member data not found",
			MembershipOption: domain.PlanMonthly,
		})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, membershipResponse{
			Error:            "Failed to fetch membership details",
			Details:          err.Error(),
			MembershipOption: domain.PlanMonthly,
		})
	default:
		writeJSON(w, http.StatusOK, membershipResponse{Success: true, MembershipOption: plan})
	}
}
