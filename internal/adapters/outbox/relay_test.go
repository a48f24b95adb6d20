package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fma-academy/registration-service/internal/core/ports"
	"github.com/fma-academy/registration-service/internal/mocks"
)

func TestRelay_DispatchConfirmation(t *testing.T) {
	pub := mocks.NewMockConfirmationPublisher()
	r := NewRelay(nil, "", pub)

	payload, _ := json.Marshal(ports.ConfirmationEmailEvent{LogID: "log-1", Email: "jane@example.com"})
	if err := r.dispatch(context.Background(), ports.EventConfirmationEmail, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := pub.GetPublishedEvents()
	if len(events) != 1 || events[0].Email != "jane@example.com" {
		t.Errorf("unexpected published events %+v", events)
	}
}

func TestRelay_DispatchPublishFailureIsRetried(t *testing.T) {
	pub := mocks.NewMockConfirmationPublisher()
	pub.PublishError = errors.New("broker down")
	r := NewRelay(nil, "", pub)

	payload, _ := json.Marshal(ports.ConfirmationEmailEvent{LogID: "log-1"})
	err := r.dispatch(context.Background(), ports.EventConfirmationEmail, payload)
	if err == nil || errors.Is(err, errDropEvent) {
		t.Errorf("expected a retryable publish error, got %v", err)
	}
}

func TestRelay_DispatchDropsBadEvents(t *testing.T) {
	pub := mocks.NewMockConfirmationPublisher()
	r := NewRelay(nil, "", pub)

	tests := []struct {
		name      string
		eventType string
		payload   []byte
	}{
		{"invalid_payload", ports.EventConfirmationEmail, []byte("{not json")},
		{"unknown_type", "member_archived", []byte(`{}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.dispatch(context.Background(), tt.eventType, tt.payload)
			if !errors.Is(err, errDropEvent) {
				t.Errorf("expected event to be dropped, got %v", err)
			}
		})
	}
	if pub.GetPublishCount() != 0 {
		t.Errorf("expected nothing published, got %d", pub.GetPublishCount())
	}
}

func TestRelay_Health(t *testing.T) {
	r := NewRelay(nil, "", mocks.NewMockConfirmationPublisher())
	if !r.IsHealthy() || !r.IsReady() {
		t.Error("expected a fresh relay to be healthy and ready")
	}
	r.setHealthy(false)
	if r.IsHealthy() || r.IsReady() {
		t.Error("expected relay to report unhealthy")
	}
	r.markProcessed()
	if !r.IsHealthy() {
		t.Error("expected processing to restore health")
	}
}
