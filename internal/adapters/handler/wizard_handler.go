package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/form"
	"github.com/fma-academy/registration-service/internal/core/ports"
	"github.com/fma-academy/registration-service/internal/core/services"
	"github.com/fma-academy/registration-service/internal/core/signature"
)

const maxDraftBody = 1 << 20

type WizardHandler struct {
	wizardService ports.WizardService
}

func NewWizardHandler(wizard ports.WizardService) *WizardHandler {
	return &WizardHandler{wizardService: wizard}
}

// Routes mounts the draft endpoints on r.
func (h *WizardHandler) Routes(r chi.Router) {
	r.Post("/", h.Start)
	r.Route("/{draftID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Post("/next", h.Next)
		r.Post("/previous", h.Previous)
		r.Post("/signature/strokes", h.AddStroke)
		r.Post("/signature/undo", h.Undo)
		r.Delete("/signature", h.Clear)
		r.Post("/submit", h.Submit)
	})
}

type strokeRequest struct {
	Points []signature.Point `json:"points"`
}

func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request) {
	view, err := h.wizardService.StartDraft(r.Context(), clientInfo(r))
	if err != nil {
		writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, func(ctx context.Context, id string) (*ports.DraftView, error) {
		return h.wizardService.GetDraft(ctx, id)
	}, r)
}

// Update merges a partial FormState. Unknown field names are rejected.
func (h *WizardHandler) Update(w http.ResponseWriter, r *http.Request) {
	patch, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDraftBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.respond(w, func(ctx context.Context, id string) (*ports.DraftView, error) {
		return h.wizardService.UpdateFields(ctx, id, patch)
	}, r)
}

func (h *WizardHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.wizardService.Next, r)
}

func (h *WizardHandler) Previous(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.wizardService.Previous, r)
}

func (h *WizardHandler) AddStroke(w http.ResponseWriter, r *http.Request) {
	var req strokeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxDraftBody)
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.respond(w, func(ctx context.Context, id string) (*ports.DraftView, error) {
		return h.wizardService.AddStroke(ctx, id, req.Points)
	}, r)
}

func (h *WizardHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.wizardService.UndoStroke, r)
}

func (h *WizardHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.wizardService.ClearSignature, r)
}

// Submit runs the submission pipeline. Browsers are redirected to the
// payment page with 303; JSON clients get {"redirect_url": ...}.
func (h *WizardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	nav := &responseNavigator{w: w, r: r, asJSON: wantsJSON(r)}
	key := r.Header.Get("Idempotency-Key")

	url, err := h.wizardService.Submit(r.Context(), chi.URLParam(r, "draftID"), clientInfo(r), key, nav)
	if nav.written {
		if err != nil {
			log.Printf("wizard: submit failed after navigation: %v", err)
		}
		return
	}
	if err != nil {
		writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect_url": url})
}

func (h *WizardHandler) respond(w http.ResponseWriter, op func(context.Context, string) (*ports.DraftView, error), r *http.Request) {
	view, err := op(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func writeWizardError(w http.ResponseWriter, err error) {
	var verr *form.ValidationError
	var serr *services.StepError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Error: "Validation failed", Fields: verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Draft not found")
	case errors.Is(err, domain.ErrWrongStep):
		writeErrorDetails(w, http.StatusConflict, "Operation not allowed on the current step", err)
	case errors.Is(err, domain.ErrInvalidInput):
		writeErrorDetails(w, http.StatusBadRequest, "Invalid request", err)
	case errors.As(err, &serr):
		writeErrorDetails(w, http.StatusBadGateway, serr.Error(), serr.Err)
	default:
		log.Printf("wizard: unexpected error: %v", err)
		writeErrorDetails(w, http.StatusInternalServerError, "An unexpected error occurred", err)
	}
}

// responseNavigator completes the submission by sending the guardian to the
// payment page.
type responseNavigator struct {
	w       http.ResponseWriter
	r       *http.Request
	asJSON  bool
	written bool
}

func (n *responseNavigator) Navigate(ctx context.Context, url string) error {
	if n.written {
		return errors.New("response already written")
	}
	n.written = true
	if n.asJSON {
		writeJSON(n.w, http.StatusOK, map[string]string{"redirect_url": url})
		return nil
	}
	http.Redirect(n.w, n.r, url, http.StatusSeeOther)
	return nil
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func clientInfo(r *http.Request) ports.ClientInfo {
	return ports.ClientInfo{
		IPAddress: ClientAddress(r),
		UserAgent: r.UserAgent(),
	}
}
