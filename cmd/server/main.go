package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.temporal.io/sdk/client"

	"github.com/cx-tal-miterani/airport-booking/internal/auth"
	"github.com/cx-tal-miterani/airport-booking/internal/config"
	"github.com/cx-tal-miterani/airport-booking/internal/database"
	"github.com/cx-tal-miterani/airport-booking/internal/events"
	"github.com/cx-tal-miterani/airport-booking/internal/handlers"
	"github.com/cx-tal-miterani/airport-booking/internal/logger"
	"github.com/cx-tal-miterani/airport-booking/internal/obs"
	"github.com/cx-tal-miterani/airport-booking/internal/router"
	"github.com/cx-tal-miterani/airport-booking/internal/service"
	"github.com/cx-tal-miterani/airport-booking/internal/websocket"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, cfg.App.Name, cfg.App.Version, cfg.Tracing.Endpoint)
	if err != nil {
		log.Fatalf("Failed to init tracer: %v", err)
	}
	defer shutdownTracer(context.Background())

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Postgres.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	log.Info("Connected to database")

	if cfg.Postgres.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	store := database.NewStore(pool, cfg.MatchMode())

	var rdb redis.Cmdable
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("Redis unavailable, idempotency keys will be checked once it answers")
		}
		rdb = redisClient
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(events.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		log.WithField("topic", cfg.Kafka.Topic).Info("Publishing order events to Kafka")
	}
	defer publisher.Close()

	var confirmer service.Confirmer = service.NopConfirmer{}
	if cfg.Temporal.Enabled {
		temporalClient, err := client.Dial(client.Options{HostPort: cfg.Temporal.Host})
		if err != nil {
			log.Fatalf("Failed to create Temporal client: %v", err)
		}
		defer temporalClient.Close()
		confirmer = service.NewTemporalConfirmer(temporalClient, cfg.Temporal.TaskQueue)
		log.Infof("Connected to Temporal server at %s", cfg.Temporal.Host)
	}

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	tokens := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize services
	bookingService := service.NewBookingService(store.Orders, hub, publisher, confirmer, log)
	userService := service.NewUserService(store.Users, tokens, log)

	if cfg.Auth.AdminEmail != "" {
		if err := userService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			log.Fatalf("Failed to ensure admin user: %v", err)
		}
	}

	h := handlers.NewHandler(bookingService, userService, store.Flights, hub, log)

	r := router.SetupRouter(router.Deps{
		Handler: h,
		Store:   store,
		Tokens:  tokens,
		Redis:   rdb,
		Log:     log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infof("API Server starting on port %s", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Info("Server stopped")
}
