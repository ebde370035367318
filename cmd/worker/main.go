package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/cx-tal-miterani/airport-booking/internal/activities"
	"github.com/cx-tal-miterani/airport-booking/internal/config"
	"github.com/cx-tal-miterani/airport-booking/internal/database"
	"github.com/cx-tal-miterani/airport-booking/internal/logger"
	"github.com/cx-tal-miterani/airport-booking/internal/workflows"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	// Connect to database
	log.Info("Connecting to database...")
	pool, err := database.Connect(ctx, cfg.Postgres.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	log.Info("Connected to database")

	store := database.NewStore(pool, cfg.MatchMode())

	// Connect to Temporal
	log.Infof("Connecting to Temporal at %s...", cfg.Temporal.Host)
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.Host,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Temporal: %v", err)
	}
	defer c.Close()
	log.Info("Connected to Temporal")

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	acts := activities.NewActivities(store.Orders, store.Users, activities.LogNotifier{Log: log})
	workflows.Register(w, acts)

	log.WithField("task_queue", cfg.Temporal.TaskQueue).Info("Starting Temporal worker...")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
