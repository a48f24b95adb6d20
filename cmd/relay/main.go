package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/fma-academy/registration-service/internal/adapters/messaging"
	"github.com/fma-academy/registration-service/internal/adapters/outbox"
	"github.com/fma-academy/registration-service/internal/config"
	"github.com/fma-academy/registration-service/internal/observability"
)

func main() {
	log.Println("Starting outbox relay service...")

	cfg := config.LoadRelayConfig()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("relay: failed to open database: %v", err)
	}
	defer db.Close()
	log.Println("relay: database connection initialized - circuit breaker will validate on first operation")

	broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.ConfirmationQueue)
	if err != nil {
		log.Fatalf("relay: failed to connect to RabbitMQ: %v", err)
	}
	defer broker.Close()
	log.Printf("relay: connected to RabbitMQ, publishing to %s", cfg.ConfirmationQueue)

	worker := outbox.NewRelay(db, cfg.DatabaseURL, broker)

	router := chi.NewRouter()
	router.Get("/health", probe("outbox-relay", worker.IsHealthy))
	router.Get("/health/live", probe("outbox-relay", worker.IsHealthy))
	router.Get("/health/ready", probe("outbox-relay", func() bool {
		return worker.IsReady() && broker.IsOpen()
	}))
	observability.RegisterMetricsEndpoint(router)

	healthServer := &http.Server{
		Addr:              ":" + cfg.HealthPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("relay: starting health check server on :%s", cfg.HealthPort)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("relay: health server error: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)

	go func() {
		log.Println("relay: starting event processing worker...")
		if err := worker.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("relay: worker error: %v", err)
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("relay: received signal %v, initiating shutdown...", sig)
	case err := <-errChan:
		log.Printf("relay: fatal error, shutting down: %v", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("relay: error shutting down health server: %v", err)
	}

	log.Println("relay: shutdown complete")
}

func probe(component string, ok func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, httpStatus := "UP", http.StatusOK
		if !ok() {
			status, httpStatus = "DOWN", http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpStatus)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    status,
			"component": component,
		})
	}
}
