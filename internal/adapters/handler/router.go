package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fma-academy/registration-service/internal/adapters/middleware"
	"github.com/fma-academy/registration-service/internal/observability"
)

// Handlers groups everything the router serves.
type Handlers struct {
	Health       *HealthHandler
	Registration *RegistrationHandler
	Notification *NotificationHandler
	Payment      *PaymentHandler
	Client       *ClientHandler
	Wizard       *WizardHandler
}

func NewRouter(h Handlers, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(allowedOrigins))
	r.Use(middleware.Metrics)

	// Health endpoints (OpenShift compatible)
	r.Get("/health", h.Health.Health)
	r.Get("/health/ready", h.Health.Ready)
	r.Get("/health/live", h.Health.Live)
	observability.RegisterMetricsEndpoint(r)

	r.Post("/submit-form", h.Registration.SubmitForm)
	r.Get("/membership-details", h.Registration.MembershipDetails)
	r.Post("/send-email", h.Notification.SendEmail)
	r.Get("/gocardless", h.Payment.CreateLink)
	r.Get("/gocardless/complete", h.Payment.Complete)
	r.Get("/get-ip", h.Client.GetIP)
	r.Get("/env-check", h.Client.EnvCheck)

	r.Route("/registrations/drafts", h.Wizard.Routes)

	return r
}
