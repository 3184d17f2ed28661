package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/robertarktes/airline-booking-bff/internal/adapters/rabbit"
	redisadapter "github.com/robertarktes/airline-booking-bff/internal/adapters/redis"
	"github.com/robertarktes/airline-booking-bff/internal/backend"
	"github.com/robertarktes/airline-booking-bff/internal/booking"
	"github.com/robertarktes/airline-booking-bff/internal/config"
	"github.com/robertarktes/airline-booking-bff/internal/events"
	httphandler "github.com/robertarktes/airline-booking-bff/internal/http"
	"github.com/robertarktes/airline-booking-bff/internal/idempotency"
	"github.com/robertarktes/airline-booking-bff/internal/observability"
	"github.com/robertarktes/airline-booking-bff/internal/passenger"
	"github.com/robertarktes/airline-booking-bff/internal/rateLimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg, "bff-api")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger(cfg.LogLevel)
	observability.InitMetrics()

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	redisCache := redisadapter.NewCache(redisClient)
	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(redisClient), cfg.IdempotencyTTL)
	rl := rateLimit.NewRateLimiter(redisCache)

	var publisher events.Publisher = events.Discard{}
	if cfg.RabbitURL != "" {
		rabbitConn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer rabbitConn.Close()
		rabbitPub, err := rabbit.NewPublisher(rabbitConn)
		if err != nil {
			log.Fatalf("failed to create publisher: %v", err)
		}
		defer rabbitPub.Close()
		publisher = rabbitPub
	} else {
		logger.Warn("RABBIT_URL not set, domain events are discarded")
	}

	client := backend.NewClient(cfg.BackendURL, backend.WithHTTPClient(&http.Client{Timeout: cfg.BackendTimeout}))

	handlers := httphandler.NewHandlers(httphandler.Deps{
		Sessions:   redisadapter.NewSessionStore(redisClient, cfg.SessionTTL),
		Auth:       client,
		Bookings:   booking.NewService(redisadapter.NewAttemptStore(redisClient, cfg.AttemptTTL), client, publisher, logger),
		Passengers: passenger.NewService(client, publisher, logger),
		Idemp:      idemp,
		Publisher:  publisher,
		Logger:     logger,
		SessionTTL: cfg.SessionTTL,
		Ready:      redisCache.Ping,
	})

	r := httphandler.SetupRouter(handlers, logger, rl, httphandler.RouterConfig{
		DefaultTenant:      cfg.DefaultTenant,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}
