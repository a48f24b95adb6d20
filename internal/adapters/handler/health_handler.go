package handler

import (
	"context"
	"net/http"
	"os"
	"time"
)

type dbPinger interface {
	PingContext(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db        dbPinger
	redis     redisPinger
	startTime time.Time
	version   string
}

func NewHealthHandler(db dbPinger, redis redisPinger) *HealthHandler {
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "unknown"
	}
	return &HealthHandler{
		db:        db,
		redis:     redis,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse follows Kubernetes/OpenShift health check conventions
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health is a liveness check: the process is up and serving.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    map[string]Check{"process": {Status: "UP"}},
	})
}

// Ready reports DOWN with 503 when PostgreSQL or Redis cannot be reached.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{
		"database": h.check(r.Context(), "Database", h.db != nil, func(ctx context.Context) error { return h.db.PingContext(ctx) }),
		"redis":    h.check(r.Context(), "Redis", h.redis != nil, func(ctx context.Context) error { return h.redis.Ping(ctx) }),
	}

	status, httpStatus := "UP", http.StatusOK
	for _, c := range checks {
		if c.Status != "UP" {
			status, httpStatus = "DOWN", http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.Health(w, r)
}

func (h *HealthHandler) check(ctx context.Context, name string, initialised bool, ping func(context.Context) error) Check {
	if !initialised {
		return Check{Status: "DOWN", Message: name + " connection is not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := ping(ctx); err != nil {
		return Check{Status: "DOWN", Message: "Cannot connect to " + name}
	}
	return Check{Status: "UP"}
}
