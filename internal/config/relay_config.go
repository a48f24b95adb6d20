package config

import "os"

// RelayConfig holds what the outbox relay needs.
type RelayConfig struct {
	DatabaseURL       string
	RabbitMQURL       string
	ConfirmationQueue string
	HealthPort        string
}

func LoadRelayConfig() *RelayConfig {
	loadEnvFiles()

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		panic("RABBITMQ_URL environment variable is required")
	}

	return &RelayConfig{
		DatabaseURL:       dbURL,
		RabbitMQURL:       rabbitURL,
		ConfirmationQueue: getEnv("CONFIRMATION_QUEUE_NAME", "confirmation_emails"),
		HealthPort:        getEnv("RELAY_HEALTH_PORT", "8090"),
	}
}
