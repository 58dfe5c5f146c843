package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/product-catalog/internal/config"
	"github.com/tuanvumaihuynh/product-catalog/internal/http"
	"github.com/tuanvumaihuynh/product-catalog/internal/log"
	"github.com/tuanvumaihuynh/product-catalog/internal/repository"
	"github.com/tuanvumaihuynh/product-catalog/internal/service"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/db"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/sqlite"
	"github.com/tuanvumaihuynh/product-catalog/internal/telemetry"
	"github.com/tuanvumaihuynh/product-catalog/pkg/cmdutil"
	"github.com/tuanvumaihuynh/product-catalog/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running api application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log     config.Log
		HTTP    config.HTTP
		Storage config.Storage
		Otel    config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	catalogStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer catalogStore.closeFn()

	logger.InfoContext(ctx, "store opened", slog.String("driver", cfg.Storage.Driver.String()))

	productService := service.NewProductService(catalogStore.productRepo, validator.NewDefaultValidator())

	interruptChan := cmdutil.InterruptChan()

	svc := http.New(cfg.HTTP, logger, productService, catalogStore.health)
	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running http service: %w", err)
	}
	logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

	<-interruptChan

	logger.InfoContext(ctx, "http service is shutting down")
	if err := cleanup(ctx); err != nil {
		logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
	}
	logger.InfoContext(ctx, "http service is stopped")

	return nil
}

type store struct {
	productRepo repository.ProductRepository
	health      db.HealthChecker
	closeFn     func()
}

// openStore connects the configured driver. Postgres settings are only read
// when the postgres driver is selected.
func openStore(ctx context.Context, cfg config.Storage) (store, error) {
	switch cfg.Driver {
	case config.StorageDriverSQLite:
		sqliteCfg, err := config.New[config.SQLite]()
		if err != nil {
			return store{}, fmt.Errorf("error loading sqlite config: %w", err)
		}

		client, err := sqlite.Open(sqliteCfg.DSN)
		if err != nil {
			return store{}, fmt.Errorf("error opening sqlite: %w", err)
		}

		return store{
			productRepo: repository.NewGormProductRepository(client.DB),
			health:      client,
			closeFn:     func() { _ = client.Close() },
		}, nil
	default:
		pgCfg, err := config.New[config.Postgres]()
		if err != nil {
			return store{}, fmt.Errorf("error loading postgres config: %w", err)
		}

		pgxPool, err := db.NewPgxPool(ctx, pgCfg)
		if err != nil {
			return store{}, fmt.Errorf("error creating pgx pool: %w", err)
		}

		dbClient := db.NewClient(pgxPool)

		return store{
			productRepo: repository.NewProductRepository(dbClient),
			health:      dbClient,
			closeFn:     pgxPool.Close,
		}, nil
	}
}
