package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cleberMargarida/fora-financial/internal/amqp"
	"github.com/cleberMargarida/fora-financial/internal/config"
	"github.com/cleberMargarida/fora-financial/internal/edgar"
	"github.com/cleberMargarida/fora-financial/internal/services"
	"github.com/cleberMargarida/fora-financial/internal/storage"
)

// One-shot batch import, meant for cron or manual runs.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewCompanyRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	secClient := edgar.NewClient(edgar.ClientConfig{
		BaseURL:    cfg.SECBaseURL,
		UserAgent:  cfg.SECUserAgent,
		Timeout:    cfg.SECTimeout,
		MaxRetries: uint64(cfg.SECMaxRetries),
	})

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	importer := services.NewImportService(repo, secClient, publisher, cfg.ImportCIKs)
	report, err := importer.Run(ctx)
	if err != nil {
		logger.Error("Import run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Import run finished",
		"run_id", report.RunID,
		"imported", report.Count(services.OutcomeImported),
		"already_exists", report.Count(services.OutcomeAlreadyExists),
		"no_data", report.Count(services.OutcomeNoData),
		"failed", report.Count(services.OutcomeFailed))

	if report.Count(services.OutcomeFailed) > 0 {
		for _, res := range report.Results {
			if res.Outcome == services.OutcomeFailed {
				logger.Error("Company import failed", "cik", res.CIK, "error", res.Err)
			}
		}
		os.Exit(1)
	}
}
