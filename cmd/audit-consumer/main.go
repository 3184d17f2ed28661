package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	mongoadapter "github.com/robertarktes/airline-booking-bff/internal/adapters/mongo"
	"github.com/robertarktes/airline-booking-bff/internal/adapters/rabbit"
	"github.com/robertarktes/airline-booking-bff/internal/audit"
	"github.com/robertarktes/airline-booking-bff/internal/config"
	"github.com/robertarktes/airline-booking-bff/internal/observability"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.RabbitURL == "" || cfg.MongoURI == "" {
		log.Fatal("RABBIT_URL and MONGO_URI are required")
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg, "bff-audit-consumer")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	auditLog := mongoadapter.NewAuditLogger(mongoClient.Database(cfg.MongoDB), logger)
	if err := auditLog.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to create audit indexes: %v", err)
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	consumer, err := rabbit.NewConsumer(conn, cfg.AuditQueue)
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}
	defer consumer.Close()

	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		log.Fatalf("failed to consume %s: %v", cfg.AuditQueue, err)
	}

	logger.WithField("queue", cfg.AuditQueue).Info("audit consumer started")
	audit.NewWorker(auditLog, logger).Run(ctx, deliveries)
	logger.Info("Shutdown audit consumer")
}
