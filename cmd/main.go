package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/markethub/payment-service/internal/api"
	"github.com/markethub/payment-service/internal/broker"
	"github.com/markethub/payment-service/internal/config"
	"github.com/markethub/payment-service/internal/outbox"
	"github.com/markethub/payment-service/internal/provider"
	"github.com/markethub/payment-service/internal/repository"
	"github.com/markethub/payment-service/internal/service"
	"github.com/markethub/payment-service/internal/telemetry"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize telemetry
	if err := telemetry.InitTelemetry("payment-service"); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting Payment Service")

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize store and schema
	store := repository.NewStore(db)
	if err := store.InitDB(); err != nil {
		telemetry.Logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Connect to Redis (outbox drain lock)
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	defer redisClient.Close()

	// Connect to Kafka
	kafkaBroker := broker.NewKafkaBroker(cfg.KafkaBrokers)
	defer kafkaBroker.Close()

	// Provider gateway and services
	gateway := provider.NewPayOS(cfg.ProviderTimeout)
	payments := service.NewPaymentService(store, gateway, cfg.ProviderName, telemetry.Logger)
	ingestor := service.NewWebhookIngestor(payments, store, cfg.ProviderName, cfg.WebhookSecret, telemetry.Logger)

	// Start the outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(context.Background())
	publisher := outbox.NewPublisher(
		store,
		kafkaBroker,
		outbox.NewRedisLocker(redisClient),
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
		telemetry.Logger,
	)
	publisherDone := make(chan struct{})
	go func() {
		defer close(publisherDone)
		publisher.Run(publisherCtx)
	}()

	// Setup HTTP server
	r := api.NewRouter(payments, ingestor)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		telemetry.Logger.Info("Payment Service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Stop the publisher; its current tick drains before Run returns.
	stopPublisher()
	select {
	case <-publisherDone:
	case <-ctx.Done():
		telemetry.Logger.Error("Outbox publisher did not stop in time")
	}

	telemetry.Logger.Info("Server exited")
}
