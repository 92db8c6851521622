package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/warehouse-backend/api"
	"github.com/angelmondragon/warehouse-backend/api/routes"
	"github.com/angelmondragon/warehouse-backend/internal/inventory"
	"github.com/angelmondragon/warehouse-backend/internal/orders"
	"github.com/angelmondragon/warehouse-backend/pkg/config"
	"github.com/angelmondragon/warehouse-backend/pkg/db"
	"github.com/angelmondragon/warehouse-backend/pkg/logger"
	"github.com/angelmondragon/warehouse-backend/pkg/metrics"
	"github.com/angelmondragon/warehouse-backend/pkg/migrate"
	"github.com/angelmondragon/warehouse-backend/pkg/outbox"
	"github.com/angelmondragon/warehouse-backend/pkg/redis"
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

	var (
		redisClient *redis.Client
		cache       routes.Cache
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		cache = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency keys are ignored")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	warehouseMetrics := metrics.NewWarehouseMetrics(reg)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg, "api")

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	adjuster, err := inventory.NewAdjuster(inventoryRepo, warehouseMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock adjuster", err)
		os.Exit(1)
	}
	inventoryService, err := inventory.NewService(inventoryRepo, dbClient, outboxService, adjuster, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		adjuster,
		warehouseMetrics,
		logg,
		orders.Options{RestockOnCancel: cfg.FeatureFlags.RestockOnCancel},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.App.Port = port
	}

	handler := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		cache,
		reg,
		metrics.NewHTTPMetrics(reg),
		inventoryService,
		ordersService,
	)
	server := api.NewServer(cfg, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":             cfg.App.Env,
		"addr":            server.Addr,
		"restockOnCancel": cfg.FeatureFlags.RestockOnCancel,
	})
	logg.Info(ctx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}

	logg.Info(ctx, "api server stopped")
}
