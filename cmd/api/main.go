package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/ichaoui56/e-commerce-backoffice/api/routes"
	"github.com/ichaoui56/e-commerce-backoffice/internal/auth"
	"github.com/ichaoui56/e-commerce-backoffice/internal/categories"
	"github.com/ichaoui56/e-commerce-backoffice/internal/dashboard"
	"github.com/ichaoui56/e-commerce-backoffice/internal/inventory"
	"github.com/ichaoui56/e-commerce-backoffice/internal/orders"
	"github.com/ichaoui56/e-commerce-backoffice/internal/products"
	"github.com/ichaoui56/e-commerce-backoffice/internal/reports"
	"github.com/ichaoui56/e-commerce-backoffice/internal/users"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/auth/session"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/config"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/metrics"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/migrate"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/outbox"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps, err := buildDependencies(cfg, logg, dbClient, redisClient, registry)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		startCtx := logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr})
		logg.Info(startCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildDependencies(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, registry *prometheus.Registry) (routes.Dependencies, error) {
	conn := dbClient.DB()
	journal := outbox.NewJournal(conn, logg)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return routes.Dependencies{}, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(conn),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	categoryService, err := categories.NewService(categories.ServiceParams{
		Repo:     categories.NewRepository(conn),
		Tx:       dbClient,
		Logger:   logg,
		MaxDepth: cfg.Catalog.CategoryMaxDepth,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	productService, err := products.NewService(products.NewRepository(conn), dbClient, logg)
	if err != nil {
		return routes.Dependencies{}, err
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:              inventory.NewRepository(conn),
		Tx:                dbClient,
		Outbox:            journal,
		Logger:            logg,
		LowStockThreshold: cfg.Catalog.LowStockThreshold,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:     orders.NewRepository(conn),
		Tx:       dbClient,
		Outbox:   journal,
		Journal:  journal,
		Stock:    orders.NewStockKeeper(),
		Metrics:  metrics.NewOrderMetrics(registry),
		Logger:   logg,
		Currency: cfg.Catalog.Currency,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		Repo:              dashboard.NewRepository(conn),
		Inventory:         inventoryService,
		Logger:            logg,
		LowStockThreshold: cfg.Catalog.LowStockThreshold,
		Currency:          cfg.Catalog.Currency,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	exporter, err := reports.NewExporter(inventoryService)
	if err != nil {
		return routes.Dependencies{}, err
	}

	return routes.Dependencies{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Redis:      redisClient,
		Sessions:   sessionManager,
		Metrics:    metrics.NewHTTPMetrics(registry),
		Gatherer:   registry,
		Auth:       authService,
		Categories: categoryService,
		Products:   productService,
		Inventory:  inventoryService,
		Orders:     orderService,
		Dashboard:  dashboardService,
		Reports:    exporter,
	}, nil
}
