package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"esgreporter/internal/amqp"
	"esgreporter/internal/archive"
	"esgreporter/internal/catalog"
	"esgreporter/internal/cli"
	"esgreporter/internal/config"
	apphttp "esgreporter/internal/http"
	"esgreporter/internal/log"
	"esgreporter/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(logger, nil)

	startupCtx := context.Background()
	store, closeStore := cli.InitStore(startupCtx, logger, cfg)

	cat, err := catalog.Load(cfg.CategoriesFile)
	if err != nil {
		logger.Error("Failed to load categories", log.FieldError, err.Error(), "path", cfg.CategoriesFile)
		os.Exit(1)
	}

	publisher, amqpClient := initPublisher(logger, cfg)
	arc := initArchive(startupCtx, logger, cfg)

	var archivePinger apphttp.Pinger
	if p, ok := arc.(apphttp.Pinger); ok {
		archivePinger = p
	}

	aggregation := services.NewAggregationService(store, cfg.RecentLimit)
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Companies:          services.NewCompanyService(store, cfg.CompanyID, logger),
		Entries:            services.NewEntryService(store, publisher, logger),
		Aggregation:        aggregation,
		Reports:            services.NewReportService(aggregation, store, arc, logger),
		Catalog:            cat,
		Store:              store,
		Archive:            archivePinger,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		if err := closeStore(); err != nil {
			logger.Error("Failed to close store", log.FieldError, err.Error())
		}
	})

	logger.Info("Starting esgreporter server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp_enabled", publisher != nil,
		"archive_enabled", arc != nil)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// initPublisher connects to the broker when AMQP_URL is set. A broker that is
// down at startup only disables events.
func initPublisher(logger *log.Logger, cfg *config.Config) (services.EntryPublisher, *amqp.Client) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil, nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without entry events",
			log.FieldComponent, log.ComponentAMQP,
			log.FieldError, err.Error())
		return nil, nil
	}

	logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, client
}

// initArchive connects to MinIO when MINIO_ENDPOINT is set.
func initArchive(ctx context.Context, logger *log.Logger, cfg *config.Config) archive.Archive {
	acfg := cfg.Archive()
	if !acfg.Enabled() {
		logger.Info("Report archive disabled - no MINIO_ENDPOINT provided")
		return nil
	}

	arc, err := archive.NewMinIO(ctx, acfg)
	if err != nil {
		logger.Warn("Failed to initialize report archive, reports will not be archived",
			log.FieldComponent, log.ComponentArchive,
			log.FieldError, err.Error())
		return nil
	}

	logger.Info("Initialized report archive", "endpoint", acfg.Endpoint, "bucket", acfg.Bucket)
	return arc
}
