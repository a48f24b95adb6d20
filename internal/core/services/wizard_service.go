package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/fma-academy/registration-service/internal/core/domain"
	"github.com/fma-academy/registration-service/internal/core/form"
	"github.com/fma-academy/registration-service/internal/core/ports"
	"github.com/fma-academy/registration-service/internal/core/signature"
)

const DefaultDraftTTL = 24 * time.Hour

// draft is the persisted form session.
type draft struct {
	ID        string             `json:"id"`
	Step      form.StepID        `json:"step"`
	State     form.State         `json:"state"`
	Pad       signature.Snapshot `json:"pad"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// WizardService drives the registration form server side. Each call loads
// the draft, applies one operation and saves it back.
type WizardService struct {
	store     ports.DraftStore
	validator *form.Validator
	pipeline  *Pipeline
	ttl       time.Duration
	padWidth  int
	padHeight int
	now       func() time.Time
}

var _ ports.WizardService = (*WizardService)(nil)

func NewWizardService(
	store ports.DraftStore,
	validator *form.Validator,
	pipeline *Pipeline,
	ttl time.Duration,
) *WizardService {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &WizardService{
		store:     store,
		validator: validator,
		pipeline:  pipeline,
		ttl:       ttl,
		padWidth:  signature.DefaultWidth,
		padHeight: signature.DefaultHeight,
		now:       time.Now,
	}
}

func (s *WizardService) StartDraft(ctx context.Context, client ports.ClientInfo) (*ports.DraftView, error) {
	now := s.now()
	d := &draft{
		ID:        uuid.NewString(),
		Step:      form.Steps()[0].ID,
		State:     form.NewState(),
		Pad:       signature.NewPad(s.padWidth, s.padHeight).Snapshot(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if client.IPAddress != "" {
		d.State.IPAddress = client.IPAddress
	}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	log.Printf("wizard: draft %s started", d.ID)
	return s.view(d, nil, ""), nil
}

func (s *WizardService) GetDraft(ctx context.Context, id string) (*ports.DraftView, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(d, nil, ""), nil
}

// UpdateFields merges a JSON object of field values into the draft. Fields
// not present in the patch keep their value.
func (s *WizardService) UpdateFields(ctx context.Context, id string, patch []byte) (*ports.DraftView, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(patch))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d.State); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return s.view(d, nil, ""), nil
}

// Next validates the active step and advances when it passes. A failed
// validation returns the unchanged view together with a
// *form.ValidationError.
func (s *WizardService) Next(ctx context.Context, id string) (*ports.DraftView, error) {
	d, seq, err := s.loadWithSequencer(ctx, id)
	if err != nil {
		return nil, err
	}

	tr := seq.Next(d.State)
	if !tr.Result.Valid {
		return s.view(d, &tr, ""), tr.Result.Err()
	}
	d.Step = seq.Current().ID
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return s.view(d, &tr, ""), nil
}

func (s *WizardService) Previous(ctx context.Context, id string) (*ports.DraftView, error) {
	d, seq, err := s.loadWithSequencer(ctx, id)
	if err != nil {
		return nil, err
	}

	tr := seq.Previous()
	if tr.Moved {
		d.Step = seq.Current().ID
		if err := s.save(ctx, d); err != nil {
			return nil, err
		}
	}
	return s.view(d, &tr, ""), nil
}

// AddStroke replays one pointer stroke onto the signature pad.
func (s *WizardService) AddStroke(ctx context.Context, id string, points []signature.Point) (*ports.DraftView, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: a stroke needs at least one point", domain.ErrInvalidInput)
	}
	return s.onPad(ctx, id, func(p *signature.Pad) signature.Capture {
		p.BeginStroke(points[0])
		for _, pt := range points[1:] {
			p.ExtendStroke(pt)
		}
		return p.EndStroke()
	})
}

func (s *WizardService) UndoStroke(ctx context.Context, id string) (*ports.DraftView, error) {
	return s.onPad(ctx, id, (*signature.Pad).Undo)
}

func (s *WizardService) ClearSignature(ctx context.Context, id string) (*ports.DraftView, error) {
	return s.onPad(ctx, id, (*signature.Pad).Clear)
}

func (s *WizardService) onPad(ctx context.Context, id string, op func(*signature.Pad) signature.Capture) (*ports.DraftView, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Step != form.StepSignature {
		return nil, fmt.Errorf("%w: signing is only possible on the %s step", domain.ErrWrongStep, form.StepSignature)
	}

	pad := signature.Restore(d.Pad)
	c := op(pad)
	if c.Captured {
		d.State.SignatureData = c.Artifact
	}
	d.Pad = pad.Snapshot()

	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return s.view(d, nil, c.Diagnostic), nil
}

// Submit runs the submission pipeline for a draft on the signature step and
// deletes the draft once the guardian has been sent to the payment page.
func (s *WizardService) Submit(
	ctx context.Context,
	id string,
	client ports.ClientInfo,
	idempotencyKey string,
	nav ports.Navigator,
) (string, error) {
	d, seq, err := s.loadWithSequencer(ctx, id)
	if err != nil {
		return "", err
	}
	if !seq.IsLast() {
		return "", fmt.Errorf("%w: submit is only possible on the %s step", domain.ErrWrongStep, form.StepSignature)
	}
	if err := seq.ValidateCurrent(d.State).Err(); err != nil {
		return "", err
	}

	if idempotencyKey == "" {
		idempotencyKey = d.ID
	}
	client.IPAddress = d.State.IPAddress

	res, err := s.pipeline.Submit(ctx, d.State, client, idempotencyKey, nav)
	if err != nil {
		return "", err
	}

	if err := s.store.DeleteDraft(ctx, d.ID); err != nil {
		log.Printf("wizard: failed to delete draft %s: %v", d.ID, err)
	}
	return res.RedirectURL, nil
}

func (s *WizardService) loadWithSequencer(ctx context.Context, id string) (*draft, *form.Sequencer, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	seq, err := form.RestoreSequencer(s.validator, d.Step)
	if err != nil {
		return nil, nil, fmt.Errorf("draft %s: %w", id, err)
	}
	return d, seq, nil
}

func (s *WizardService) load(ctx context.Context, id string) (*draft, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: draft %s", domain.ErrNotFound, id)
	}
	raw, err := s.store.LoadDraft(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load draft: %w", err)
	}
	var d draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return &d, nil
}

func (s *WizardService) save(ctx context.Context, d *draft) error {
	d.UpdatedAt = s.now()
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.store.SaveDraft(ctx, d.ID, raw, s.ttl); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *WizardService) view(d *draft, tr *form.Transition, diagnostic string) *ports.DraftView {
	seq, err := form.RestoreSequencer(s.validator, d.Step)
	if err != nil {
		seq = form.NewSequencer(s.validator)
	}
	return &ports.DraftView{
		ID:         d.ID,
		Step:       d.Step,
		StepIndex:  seq.Index(),
		Progress:   seq.Progress(),
		State:      d.State,
		Signed:     d.Pad.Signed,
		Transition: tr,
		Diagnostic: diagnostic,
	}
}
