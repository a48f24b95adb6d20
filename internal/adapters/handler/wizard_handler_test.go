package handler_test

import (
	"net/http"
	"testing"

	"github.com/fma-academy/registration-service/internal/core/form"
	"github.com/fma-academy/registration-service/internal/core/signature"
	"github.com/fma-academy/registration-service/internal/mocks"
)

func startDraft(t *testing.T, ts *testServer) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/registrations/drafts", nil, "X-Forwarded-For", "203.0.113.7")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	state := body["state"].(map[string]interface{})
	if state["ipAddress"] != "203.0.113.7" {
		t.Errorf("expected caller address on the draft, got %v", state["ipAddress"])
	}
	return body["draftId"].(string)
}

// walkToSignature fills every field except the signature and advances to
// the last step.
func walkToSignature(t *testing.T, ts *testServer, id string) {
	t.Helper()
	state := mocks.ValidFormState()
	state.SignatureData = ""
	if rec := ts.do(t, http.MethodPatch, "/registrations/drafts/"+id, state); rec.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rec.Code, rec.Body.String())
	}
	for i := 0; i < len(form.Steps())-1; i++ {
		if rec := ts.do(t, http.MethodPost, "/registrations/drafts/"+id+"/next", nil); rec.Code != http.StatusOK {
			t.Fatalf("next %d: %d %s", i, rec.Code, rec.Body.String())
		}
	}
}

func sign(t *testing.T, ts *testServer, id string) {
	t.Helper()
	stroke := map[string][]signature.Point{"points": {{X: 10, Y: 100}, {X: 150, Y: 60}, {X: 290, Y: 120}}}
	rec := ts.do(t, http.MethodPost, "/registrations/drafts/"+id+"/signature/strokes", stroke)
	if rec.Code != http.StatusOK || decode(t, rec)["signed"] != true {
		t.Fatalf("stroke: %d %s", rec.Code, rec.Body.String())
	}
}

func TestWizard_NextOnInvalidStep(t *testing.T) {
	ts := newTestServer()
	id := startDraft(t, ts)

	rec := ts.do(t, http.MethodPost, "/registrations/drafts/"+id+"/next", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	fields := decode(t, rec)["fields"].(map[string]interface{})
	if _, ok := fields[form.FieldMemberName]; !ok {
		t.Errorf("expected %s to be reported, got %v", form.FieldMemberName, fields)
	}

	rec = ts.do(t, http.MethodGet, "/registrations/drafts/"+id, nil)
	if got := decode(t, rec)["step"]; got != string(form.StepMemberInfo) {
		t.Errorf("expected draft to stay on the first step, got %v", got)
	}
}

func TestWizard_RequestErrors(t *testing.T) {
	ts := newTestServer()
	id := startDraft(t, ts)
	stroke := map[string][]signature.Point{"points": {{X: 1, Y: 1}, {X: 5, Y: 5}}}

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		wantCode int
	}{
		{"unknown draft", http.MethodGet, "/registrations/drafts/6f1c1a52-0000-4000-8000-000000000000", nil, http.StatusNotFound},
		{"malformed draft id", http.MethodGet, "/registrations/drafts/not-a-uuid", nil, http.StatusNotFound},
		{"unknown field", http.MethodPatch, "/registrations/drafts/" + id, map[string]string{"favouriteColour": "red"}, http.StatusBadRequest},
		{"stroke off the signature step", http.MethodPost, "/registrations/drafts/" + id + "/signature/strokes", stroke, http.StatusConflict},
		{"empty stroke", http.MethodPost, "/registrations/drafts/" + id + "/signature/strokes", map[string]interface{}{"points": []int{}}, http.StatusBadRequest},
		{"submit off the last step", http.MethodPost, "/registrations/drafts/" + id + "/submit", nil, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if decode(t, rec)["error"] == nil {
				t.Error("expected an error key")
			}
		})
	}
}

func TestWizard_SubmitUnsigned(t *testing.T) {
	ts := newTestServer()
	id := startDraft(t, ts)
	walkToSignature(t, ts, id)

	rec := ts.do(t, http.MethodPost, "/registrations/drafts/"+id+"/submit", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if ts.repo.Count() != 0 {
		t.Error("expected no registration for an unsigned form")
	}
}

func TestWizard_SubmitJSON(t *testing.T) {
	ts := newTestServer()
	id := startDraft(t, ts)
	walkToSignature(t, ts, id)
	sign(t, ts, id)

	rec := ts.do(t, http.MethodPost, "/registrations/drafts/"+id+"/submit", nil, "Accept", "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["redirect_url"]; got != "https://pay-sandbox.gocardless.com/flow/RE0001" {
		t.Errorf("unexpected redirect url %v", got)
	}
	if ts.repo.Count() != 1 || len(ts.repo.Emails()) != 1 {
		t.Errorf("expected one registration and one confirmation, got %d and %d", ts.repo.Count(), len(ts.repo.Emails()))
	}
	if ts.drafts.Has(id) {
		t.Error("expected the draft to be removed after submission")
	}
}

func TestWizard_SubmitRedirects(t *testing.T) {
	ts := newTestServer()
	id := startDraft(t, ts)
	walkToSignature(t, ts, id)
	sign(t, ts, id)

	rec := ts.do(t, http.MethodPost, "/registrations/drafts/"+id+"/submit", nil, "Accept", "text/html")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://pay-sandbox.gocardless.com/flow/RE0001" {
		t.Errorf("unexpected location %s", loc)
	}
}

func TestWizard_UndoAndClear(t *testing.T) {
	ts := newTestServer()
	id := startDraft(t, ts)
	walkToSignature(t, ts, id)
	sign(t, ts, id)

	rec := ts.do(t, http.MethodPost, "/registrations/drafts/"+id+"/signature/undo", nil)
	if rec.Code != http.StatusOK || decode(t, rec)["signed"] != false {
		t.Errorf("expected undo of the only stroke to leave the pad unsigned: %s", rec.Body.String())
	}

	sign(t, ts, id)
	rec = ts.do(t, http.MethodDelete, "/registrations/drafts/"+id+"/signature", nil)
	if rec.Code != http.StatusOK || decode(t, rec)["signed"] != false {
		t.Errorf("expected clear to leave the pad unsigned: %s", rec.Body.String())
	}

	rec = ts.do(t, http.MethodPost, "/registrations/drafts/"+id+"/previous", nil)
	if got := decode(t, rec)["step"]; got != string(form.StepContract) {
		t.Errorf("expected previous to return to the contract step, got %v", got)
	}
}
