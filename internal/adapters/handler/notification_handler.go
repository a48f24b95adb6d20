package handler

import (
	"errors"
	"net/http"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/ports"
)

type NotificationHandler struct {
	notificationService ports.NotificationService
}

func NewNotificationHandler(notification ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notification}
}

// SendEmail handles POST /send-email. The message is queued, not sent
// inline.
func (h *NotificationHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req domain.Confirmation
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.notificationService.SendConfirmation(r.Context(), req); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeErrorDetails(w, http.StatusBadRequest, "Email is required", err)
			return
		}
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to send email", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
