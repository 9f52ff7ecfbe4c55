package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/jobtrail/jobtrail/internal/api"
	"github.com/jobtrail/jobtrail/internal/assistant"
	"github.com/jobtrail/jobtrail/internal/config"
	"github.com/jobtrail/jobtrail/internal/database"
	"github.com/jobtrail/jobtrail/internal/gmail"
	"github.com/jobtrail/jobtrail/internal/llm"
	"github.com/jobtrail/jobtrail/internal/sync"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting jobtrail")

	// Connect to database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	// Authenticate against Gmail
	svc, err := gmail.NewService(ctx, cfg.GmailCredentialsPath, cfg.GmailTokenPath)
	if err != nil {
		logger.Error("gmail authentication failed", "error", err)
		os.Exit(1)
	}
	gmailClient := gmail.NewClient(svc, cfg.GmailLabel, cfg.GmailRequestTimeout, logger)
	logger.Info("gmail client initialized", "label", cfg.GmailLabel)

	// Model backend and the components built on it
	completer := llm.New(cfg.ModelAPIKey, llm.Options{
		BaseURL:   cfg.ModelBaseURL,
		Model:     cfg.ModelName,
		MaxTokens: cfg.ModelMaxTokens,
		Timeout:   cfg.ModelTimeout,
	})
	classifier := assistant.NewClassifier(completer, logger)
	drafter := assistant.NewDrafter(completer)

	pipeline := sync.New(gmailClient, classifier, db, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.SyncOnStart {
		go func() {
			if _, err := pipeline.Run(ctx, cfg.SyncMaxResults); err != nil {
				logger.Error("startup sync failed", "error", err)
			}
		}()
	}

	handler := api.NewHandler(api.Deps{
		DB:          db,
		Gmail:       gmailClient,
		Classifier:  classifier,
		Drafter:     drafter,
		Pipeline:    pipeline,
		SyncMax:     cfg.SyncMaxResults,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})
	app := handler.App()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("received shutdown signal", "signal", sig)
		cancel()
		if err := app.Shutdown(); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("api server listening", "addr", cfg.HTTPAddr)
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("jobtrail stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		// Pretty colored output for console
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
		})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
