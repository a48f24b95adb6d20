package handler

import (
	"errors"
	"net/http"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

type PaymentHandler struct {
	paymentService ports.PaymentService
}

func NewPaymentHandler(payment ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: payment}
}

type paymentLinkResponse struct {
	RedirectURL string `json:"redirect_url"`
	UserID      string `json:"user_id"`
}

type completeResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	MandateID  string `json:"mandate_id"`
	CustomerID string `json:"customer_id"`
}

// CreateLink handles GET /gocardless.
func (h *PaymentHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	userID := queryParam(r, "userId", "user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	url, err := h.paymentService.CreatePaymentLink(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to set up payment", err)
		return
	}

	writeJSON(w, http.StatusOK, paymentLinkResponse{RedirectURL: url, UserID: userID})
}

// Complete handles GET /gocardless/complete, the redirect target after the
// guardian has filled in the hosted page.
func (h *PaymentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	flowID := queryParam(r, "redirectFlowId", "redirect_flow_id")
	userID := queryParam(r, "userId", "user_id")
	if flowID == "" || userID == "" {
		writeError(w, http.StatusBadRequest, "Redirect flow ID and user ID are required")
		return
	}

	mandate, err := h.paymentService.CompletePayment(r.Context(), flowID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		writeErrorDetails(w, status, "Failed to complete payment setup", err)
		return
	}

	writeJSON(w, http.StatusOK, completeResponse{
		Success:    true,
		Message:    "Payment setup completed successfully",
		MandateID:  mandate.MandateID,
		CustomerID: mandate.CustomerID,
	})
}
