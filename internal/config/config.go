package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	Port           string
	RedisAddress   string
	RedisPassword  string
	AllowedOrigins []string

	GoCardlessAccessToken string
	GoCardlessEnvironment string
	PaymentSuccessURL     string
	PaymentSessionSecret  []byte

	DraftTTL      time.Duration
	NotifyTimeout time.Duration
}

// Load reads the API configuration from the environment. Values from .env
// files never override variables that are already set.
func Load() *Config {
	loadEnvFiles()

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	env := strings.ToLower(getEnv("GOCARDLESS_ENVIRONMENT", "sandbox"))
	if env != "sandbox" && env != "live" {
		panic("GOCARDLESS_ENVIRONMENT must be sandbox or live")
	}

	secret := os.Getenv("PAYMENT_SESSION_SECRET")
	if secret == "" {
		if env == "live" {
			panic("PAYMENT_SESSION_SECRET environment variable is required in live mode")
		}
		log.Println("config: PAYMENT_SESSION_SECRET not set, using a development secret")
		secret = "fma-development-session-secret"
	}

	return &Config{
		DatabaseURL:    dbURL,
		Port:           getEnv("PORT", "8080"),
		RedisAddress:   getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		GoCardlessAccessToken: os.Getenv("GOCARDLESS_ACCESS_TOKEN"),
		GoCardlessEnvironment: env,
		PaymentSuccessURL:     getEnv("PAYMENT_SUCCESS_URL", "http://localhost:3000/payment-success"),
		PaymentSessionSecret:  []byte(secret),

		DraftTTL:      getDuration("DRAFT_TTL", 24*time.Hour),
		NotifyTimeout: getDuration("NOTIFY_TIMEOUT", 5*time.Second),
	}
}

// EnvStatus reports which of the service's integration variables are set,
// without exposing their values.
func EnvStatus() map[string]string {
	keys := []string{
		"DB_CONNECTION_STRING",
		"REDIS_ADDRESS",
		"GOCARDLESS_ACCESS_TOKEN",
		"GOCARDLESS_ENVIRONMENT",
		"PAYMENT_SUCCESS_URL",
		"PAYMENT_SESSION_SECRET",
		"RABBITMQ_URL",
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if os.Getenv(k) != "" {
			out[k] = "Set"
		} else {
			out[k] = "Not set"
		}
	}
	return out
}

func loadEnvFiles() {
	files := []string{".env", ".env.local"}
	if extra := os.Getenv("ENV_FILES"); extra != "" {
		files = append(files, strings.Split(extra, ",")...)
	}
	for _, file := range files {
		file = strings.TrimSpace(file)
		if file == "" {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			log.Printf("config: failed to load %s: %v", file, err)
		}
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("config: invalid %s %q, using %s", key, value, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
