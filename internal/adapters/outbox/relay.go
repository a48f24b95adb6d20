package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/fma-academy/registration-service/internal/config"
	"github.com/fma-academy/registration-service/internal/core/ports"
	"github.com/fma-academy/registration-service/internal/observability"
)

const (
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	outboxChannelName            = "outbox_channel"

	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	maxEventsPerBatch = 100
)

// errDropEvent marks an event that can never be published. It is marked
// processed instead of retried.
var errDropEvent = errors.New("dropping event")

// Relay listens for NOTIFY signals on outbox_channel and publishes the
// matching outbox events to the message broker.
type Relay struct {
	db        *sql.DB
	publisher ports.ConfirmationEventPublisher
	listener  *pq.Listener
	dbURL     string
	dbCB      *gobreaker.CircuitBreaker

	mu            sync.RWMutex
	lastProcessed time.Time
	healthy       bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.ConfirmationEventPublisher) *Relay {
	return &Relay{
		db:            db,
		dbURL:         dbURL,
		publisher:     publisher,
		dbCB:          config.NewCircuitBreaker("Relay-PostgreSQL"),
		lastProcessed: time.Now(),
		healthy:       true,
	}
}

// IsHealthy is the liveness check: the worker loop is running. An open
// breaker is degraded, not dead.
func (r *Relay) IsHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.healthy
}

// IsReady is the readiness check: the database breaker is closed and the
// relay has made progress recently.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if time.Since(r.lastProcessed) > healthCheckStaleThreshold {
		return false
	}
	return r.healthy
}

func (r *Relay) markProcessed() {
	r.mu.Lock()
	r.lastProcessed = time.Now()
	r.healthy = true
	r.mu.Unlock()
}

func (r *Relay) setHealthy(v bool) {
	r.mu.Lock()
	r.healthy = v
	r.mu.Unlock()
}

// Start blocks until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("outbox relay: listener error: %v", err)
		}
	}

	r.listener = pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer r.listener.Close()

	if err := r.listener.Listen(outboxChannelName); err != nil {
		return err
	}

	log.Printf("outbox relay: listening on '%s' for notifications...", outboxChannelName)

	if err := r.processUnprocessedEvents(ctx); err != nil {
		log.Printf("outbox relay: error processing startup backlog: %v", err)
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("outbox relay: shutting down...")
			return ctx.Err()

		case notification := <-r.listener.Notify:
			if notification == nil {
				log.Println("outbox relay: received nil notification (reconnecting...)")
				r.setHealthy(false)
				// Events notified while disconnected are only found by a sweep.
				if err := r.processUnprocessedEvents(ctx); err != nil {
					log.Printf("outbox relay: error in reconnect sweep: %v", err)
				}
				continue
			}

			log.Printf("outbox relay: received notification for event ID: %s", notification.Extra)
			if err := r.processEventByID(ctx, notification.Extra); err != nil {
				log.Printf("outbox relay: error processing event %s: %v", notification.Extra, err)
			} else {
				r.markProcessed()
			}

		case <-ticker.C:
			go r.listener.Ping()

			if err := r.processUnprocessedEvents(ctx); err != nil {
				log.Printf("outbox relay: error in periodic processing: %v", err)
			} else {
				r.markProcessed()
			}
		}
	}
}

// dispatch publishes one outbox event. Undecodable or unknown events return
// an error wrapping errDropEvent.
func (r *Relay) dispatch(ctx context.Context, eventType string, payload []byte) error {
	switch eventType {
	case ports.EventConfirmationEmail:
		var evt ports.ConfirmationEmailEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return fmt.Errorf("%w: decode %s: %v", errDropEvent, eventType, err)
		}
		if err := r.publisher.PublishConfirmationRequested(ctx, evt); err != nil {
			observability.OutboxPublished.WithLabelValues("failed").Inc()
			return err
		}
		observability.OutboxPublished.WithLabelValues("published").Inc()
		return nil
	default:
		return fmt.Errorf("%w: unknown event type %q", errDropEvent, eventType)
	}
}

func (r *Relay) processEventByID(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var id, eventType string
		var payload []byte
		err = tx.QueryRowContext(ctx, `
			SELECT id, event_type, payload
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).Scan(&id, &eventType, &payload)

		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if err := r.dispatch(ctx, eventType, payload); err != nil {
			if !errors.Is(err, errDropEvent) {
				return nil, err
			}
			log.Printf("outbox relay: event %s: %v", id, err)
			observability.OutboxPublished.WithLabelValues("dropped").Inc()
		}

		if _, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	return err
}

// processUnprocessedEvents sweeps the backlog in creation order.
func (r *Relay) processUnprocessedEvents(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, event_type, payload
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		type record struct {
			ID        string
			EventType string
			Payload   []byte
		}

		var records []record
		for rows.Next() {
			var rec record
			if err := rows.Scan(&rec.ID, &rec.EventType, &rec.Payload); err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, rec := range records {
			if err := r.dispatch(ctx, rec.EventType, rec.Payload); err != nil {
				if !errors.Is(err, errDropEvent) {
					log.Printf("outbox relay: failed to publish event %s: %v", rec.ID, err)
					continue
				}
				log.Printf("outbox relay: event %s: %v", rec.ID, err)
				observability.OutboxPublished.WithLabelValues("dropped").Inc()
			}

			if _, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, rec.ID); err != nil {
				return nil, err
			}
			log.Printf("outbox relay: processed event %s", rec.ID)
		}

		return nil, tx.Commit()
	})
	return err
}
