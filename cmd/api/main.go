package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/floorline/backoffice/api"
	"github.com/floorline/backoffice/api/controllers"
	"github.com/floorline/backoffice/api/routes"
	"github.com/floorline/backoffice/internal/catalog"
	"github.com/floorline/backoffice/internal/notifications"
	"github.com/floorline/backoffice/internal/orders"
	"github.com/floorline/backoffice/internal/projects"
	"github.com/floorline/backoffice/internal/quotes"
	"github.com/floorline/backoffice/internal/settings"
	"github.com/floorline/backoffice/internal/vendors"
	"github.com/floorline/backoffice/pkg/config"
	"github.com/floorline/backoffice/pkg/db"
	"github.com/floorline/backoffice/pkg/instance"
	"github.com/floorline/backoffice/pkg/logger"
	"github.com/floorline/backoffice/pkg/metrics"
	"github.com/floorline/backoffice/pkg/migrate"
	"github.com/floorline/backoffice/pkg/outbox"
	"github.com/floorline/backoffice/pkg/pubsub"
	"github.com/floorline/backoffice/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var (
		sender       notifications.Sender
		pubsubPinger controllers.Pinger
	)
	if cfg.FeatureFlags.NotificationsEnabled {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub client", err)
			}
		}()
		pubSender, err := notifications.NewPubSubSender(pubsubClient.NotificationPublisher(), logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create notification sender", err)
			os.Exit(1)
		}
		sender = pubSender
		pubsubPinger = pubsubClient
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	vendorRepo := vendors.NewRepository(dbClient.DB())
	settingsRepo := settings.NewRepository(dbClient.DB())

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:                 orders.NewRepository(dbClient.DB()),
		Tx:                   dbClient,
		Outbox:               outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Catalog:              catalogRepo,
		Vendors:              vendorRepo,
		Settings:             settingsRepo,
		Projects:             projects.NewRepository(dbClient.DB()),
		Sender:               sender,
		Logger:               logg,
		Metrics:              metrics.NewOrderMetrics(prometheus.DefaultRegisterer),
		NotificationsEnabled: cfg.FeatureFlags.NotificationsEnabled,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	quoteService, err := quotes.NewService(catalogRepo, vendorRepo, settingsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create quote service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		PubSub:      pubsubPinger,
		Idempotency: redisClient,
		Orders:      orderService,
		Quotes:      quoteService,
		Metrics:     promhttp.Handler(),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID("api-0"),
	})
	logg.Info(ctx, "starting api server")

	server := api.NewServer(cfg.App, addr, router)
	if err := api.Serve(ctx, server, cfg.App.ShutdownTimeout, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
