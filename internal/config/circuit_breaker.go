package config

import (
	"log"
	"time"

	"github.com/sony/gobreaker"
)

// NewCircuitBreaker returns a breaker that opens after three consecutive
// failures. name identifies it in logs.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	var timeout time.Duration

	// Open-state timeout per dependency; Redis matches the 5s health check.
	switch name {
	case "Redis-Sessions":
		timeout = time.Second * 5
	case "PostgreSQL", "Relay-PostgreSQL":
		timeout = time.Second * 10
	case "GoCardless":
		timeout = time.Second * 20
	default:
		timeout = time.Second * 30
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Second * 10,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[CRITICAL] Circuit Breaker %s: %s -> %s", name, from, to)
		},
	})
}
