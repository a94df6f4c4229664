package main

import (
	"context"
	"errors"
	"os"

	"esgreporter/internal/amqp"
	"esgreporter/internal/cli"
	"esgreporter/internal/config"
	"esgreporter/internal/core"
	"esgreporter/internal/log"
	"esgreporter/internal/services"
	"esgreporter/internal/sheets"
	gsheet "esgreporter/internal/sheets/google"
	sheetsmem "esgreporter/internal/sheets/memory"
	"esgreporter/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	logger.Info("Starting esg-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	store, closeStore := cli.InitStore(context.Background(), logger, cfg)
	defer closeStore()

	mirror := initMirror(logger, cfg)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(store, mirror)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	if cfg.WorkerBackfill {
		backfill(ctx, logger, services.NewCompanyService(store, cfg.CompanyID, logger), mirrorWorker)
	}

	logger.Info("Consuming entry events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeEntryRecorded(ctx, mirrorWorker.HandleEntryRecorded); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}

// initMirror uses the spreadsheet when one is configured. Without it rows are
// kept in process, which only makes sense for local runs.
func initMirror(logger *log.Logger, cfg *config.Config) sheets.EntryMirror {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Warn("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, mirroring in memory")
		return sheetsmem.New()
	}

	client, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		Tabs:            cfg.SheetTabs(),
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client
}

// backfill mirrors entries recorded while the worker was down. Failures are
// logged; consumption starts regardless.
func backfill(ctx context.Context, logger *log.Logger, companies *services.CompanyService, w *worker.MirrorWorker) {
	company, err := companies.Current(ctx)
	if core.IsNotFound(err) {
		logger.Info("No company set up yet, skipping backfill")
		return
	}
	if err != nil {
		logger.Error("Failed to resolve company for backfill", log.FieldError, err.Error())
		return
	}

	logger.Info("Performing startup backfill", log.FieldCompanyID, company.ID)
	if err := w.Backfill(ctx, company.ID); err != nil {
		logger.Error("Startup backfill incomplete", log.FieldError, err.Error())
	}
}
