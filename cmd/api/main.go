package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/fma-academy/registration-service/internal/adapters/handler"
	"github.com/fma-academy/registration-service/internal/adapters/payment"
	"github.com/fma-academy/registration-service/internal/adapters/repository"
	"github.com/fma-academy/registration-service/internal/adapters/session"
	"github.com/fma-academy/registration-service/internal/config"
	"github.com/fma-academy/registration-service/internal/core/form"
	"github.com/fma-academy/registration-service/internal/core/ports"
	"github.com/fma-academy/registration-service/internal/core/services"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	repo := repository.NewSQLRepository(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	log.Println("Connected to Redis successfully")
	store := session.NewRedisStore(redisClient)

	var provider ports.PaymentProvider
	if cfg.GoCardlessAccessToken == "" {
		log.Println("payment: GOCARDLESS_ACCESS_TOKEN not set, using the demo provider")
		provider = payment.DemoProvider{}
	} else {
		log.Printf("payment: using GoCardless %s environment", cfg.GoCardlessEnvironment)
		provider = payment.NewGoCardlessClient(cfg.GoCardlessAccessToken, cfg.GoCardlessEnvironment)
	}

	validator := form.NewValidator()
	registrationService := services.NewRegistrationService(repo, validator)
	notificationService := services.NewNotificationService(repo)
	paymentService := services.NewPaymentService(
		repo,
		provider,
		store,
		services.NewSessionSigner(cfg.PaymentSessionSecret, services.DefaultSessionTTL),
		cfg.PaymentSuccessURL,
	)
	pipeline := services.NewPipeline(
		validator,
		registrationService,
		notificationService,
		paymentService,
		services.WithNotifyTimeout(cfg.NotifyTimeout),
		services.WithSubmissionCache(store),
	)
	wizardService := services.NewWizardService(store, validator, pipeline, cfg.DraftTTL)

	router := handler.NewRouter(handler.Handlers{
		Health:       handler.NewHealthHandler(db, store),
		Registration: handler.NewRegistrationHandler(registrationService),
		Notification: handler.NewNotificationHandler(notificationService),
		Payment:      handler.NewPaymentHandler(paymentService),
		Client:       handler.NewClientHandler(config.EnvStatus),
		Wizard:       handler.NewWizardHandler(wizardService),
	}, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("received signal %v, shutting down...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("error shutting down server: %v", err)
	}
	log.Println("shutdown complete")
}
