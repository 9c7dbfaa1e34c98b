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
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/edumart/order-reconciler/internal/api"
	"github.com/edumart/order-reconciler/internal/backend"
	"github.com/edumart/order-reconciler/internal/cache"
	"github.com/edumart/order-reconciler/internal/config"
	"github.com/edumart/order-reconciler/internal/handlers"
	"github.com/edumart/order-reconciler/internal/repository"
	"github.com/edumart/order-reconciler/internal/service"
	"github.com/edumart/order-reconciler/internal/telemetry"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize telemetry
	if err := telemetry.Init("order-reconciler"); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting Order Reconciler")

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize audit repository
	audit := repository.NewStateAuditRepository(db)
	if err := audit.InitDB(); err != nil {
		telemetry.Logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	orderCache := cache.NewOrderCache(redisClient, cfg.IntentTTL)

	// Connect to NATS
	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer nc.Close()

	// Connect to Kafka
	kafkaWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers),
		Topic:    "order.payment.state.changed",
		Balancer: &kafka.LeastBytes{},
	}
	defer kafkaWriter.Close()

	// Backend REST clients
	ordersClient := backend.NewOrdersClient(cfg.BackendBaseURL, cfg.RequestTimeout)
	gatewayClient := backend.NewGatewayClient(cfg.GatewayBaseURL, cfg.RequestTimeout)
	followUpClient := backend.NewFollowUpClient(cfg.BackendBaseURL, cfg.RequestTimeout)
	broadcastClient := backend.NewBroadcastClient(cfg.BackendBaseURL, cfg.RequestTimeout)

	// Core services
	reconciler := service.NewReconciler(ordersClient, orderCache, audit, kafkaWriter, nc)
	paymentRouter := service.NewPaymentRouter(gatewayClient, ordersClient, orderCache)
	sequencer := service.NewFollowUpSequencer(followUpClient, ordersClient)
	broadcaster := service.NewBroadcastTargetBuilder(broadcastClient)

	// Setup router
	r := api.NewRouter(api.Handlers{
		Reconcile:  handlers.NewReconcileHandler(reconciler, orderCache),
		Confirm:    handlers.NewConfirmHandler(paymentRouter, ordersClient),
		Timeline:   handlers.NewTimelineHandler(sequencer),
		Broadcast:  handlers.NewBroadcastHandler(broadcaster),
		OrderState: handlers.NewOrderStateHandler(audit),
	})

	// Setup HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		telemetry.Logger.Info("Order Reconciler starting", zap.String("port", cfg.Port))
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

	telemetry.Logger.Info("Server exited")
}
