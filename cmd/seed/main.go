package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/ichaoui56/e-commerce-backoffice/internal/seed"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/config"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	if err := run(context.Background(), cfg, logg); err != nil {
		logg.Error(context.Background(), "seed failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, client.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
		return err
	}

	runner, err := seed.NewRunner(client.DB(), cfg.Seed, cfg.Password, logg)
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx)
	ctx = logg.WithFields(ctx, map[string]any{
		"sizes_created":      report.Sizes,
		"categories_created": report.Categories,
		"admin_created":      report.AdminCreated,
	})
	if err != nil {
		return err
	}
	logg.Info(ctx, "seed completed")
	return nil
}
