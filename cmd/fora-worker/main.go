package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cleberMargarida/fora-financial/internal/amqp"
	"github.com/cleberMargarida/fora-financial/internal/config"
	"github.com/cleberMargarida/fora-financial/internal/report"
	gsheet "github.com/cleberMargarida/fora-financial/internal/report/google"
	"github.com/cleberMargarida/fora-financial/internal/report/memory"
	"github.com/cleberMargarida/fora-financial/internal/storage"
)

// Consumes company imported events and appends funding rows to the report.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting fora-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo, err := storage.NewCompanyRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var writer report.FundingWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets report initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = memory.New()
		logger.Info("Google Sheets disabled - using in-memory report")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	handler := func(msg *amqp.CompanyImportedMessage) error {
		company, err := repo.GetByID(ctx, msg.CompanyID)
		if err != nil {
			return fmt.Errorf("load company %d: %w", msg.CompanyID, err)
		}
		calc, err := company.CalculateFunding()
		if err != nil {
			return fmt.Errorf("calculate funding for company %d: %w", msg.CompanyID, err)
		}
		ref, err := writer.Append(ctx, calc)
		if err != nil {
			return fmt.Errorf("append funding row: %w", err)
		}
		logger.Info("Funding row written",
			"company_id", msg.CompanyID, "cik", msg.CIK, "ref", ref)
		return nil
	}

	if err := amqpClient.ConsumeCompanyImported(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
