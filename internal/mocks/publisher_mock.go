package mocks

import (
	"context"
	"sync"

	"github.com/fma-academy/registration-service/internal/core/ports"
)

// MockConfirmationPublisher implements ports.ConfirmationEventPublisher so
// the outbox relay can be tested without RabbitMQ.
type MockConfirmationPublisher struct {
	mu sync.RWMutex

	PublishedEvents  []ports.ConfirmationEmailEvent
	PublishError     error
	PublishCallCount int
}

var _ ports.ConfirmationEventPublisher = (*MockConfirmationPublisher)(nil)

func NewMockConfirmationPublisher() *MockConfirmationPublisher {
	return &MockConfirmationPublisher{
		PublishedEvents: make([]ports.ConfirmationEmailEvent, 0),
	}
}

func (m *MockConfirmationPublisher) PublishConfirmationRequested(ctx context.Context, evt ports.ConfirmationEmailEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// GetPublishedEvents returns a copy of the events published so far.
func (m *MockConfirmationPublisher) GetPublishedEvents() []ports.ConfirmationEmailEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]ports.ConfirmationEmailEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}

func (m *MockConfirmationPublisher) GetPublishCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PublishCallCount
}
