package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/cleberMargarida/fora-financial/internal/amqp"
	"github.com/cleberMargarida/fora-financial/internal/config"
	"github.com/cleberMargarida/fora-financial/internal/edgar"
	apphttp "github.com/cleberMargarida/fora-financial/internal/http"
	"github.com/cleberMargarida/fora-financial/internal/services"
	"github.com/cleberMargarida/fora-financial/internal/storage"
)

func main() {
	// Load .env for local development, ignore errors in production
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

	// AMQP is optional, imported companies just go unannounced without it.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	importer := services.NewImportService(repo, secClient, publisher, cfg.ImportCIKs)
	funding := services.NewFundingService(repo)

	srv := apphttp.NewServer(":"+cfg.Port, funding, importer)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Import the configured companies once at startup.
	g.Go(func() error {
		report, err := importer.Run(ctx)
		if err != nil {
			logger.Error("Startup import failed", "error", err)
			return nil // keep serving whatever is already persisted
		}
		logger.Info("Startup import finished",
			"run_id", report.RunID,
			"imported", report.Count(services.OutcomeImported),
			"already_exists", report.Count(services.OutcomeAlreadyExists),
			"no_data", report.Count(services.OutcomeNoData),
			"failed", report.Count(services.OutcomeFailed))
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting fora server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
