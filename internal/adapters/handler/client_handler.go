package handler

import (
	"net/http"
	"strings"

	"github.com/fma-academy/registration-service/internal/core/form"
)

// ClientHandler answers questions about the caller and the deployment.
type ClientHandler struct {
	envStatus func() map[string]string
}

func NewClientHandler(envStatus func() map[string]string) *ClientHandler {
	return &ClientHandler{envStatus: envStatus}
}

// GetIP handles GET /get-ip.
func (h *ClientHandler) GetIP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"ip": ClientAddress(r)})
}

// EnvCheck handles GET /env-check. Only presence is reported, never values.
func (h *ClientHandler) EnvCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"envVars": h.envStatus()})
}

// ClientAddress prefers the first X-Forwarded-For hop, then X-Real-IP.
func ClientAddress(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return form.DefaultIPAddress
}
