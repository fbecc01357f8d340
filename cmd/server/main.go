package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voralis/invoxly-backend/internal/api"
	"github.com/voralis/invoxly-backend/internal/config"
	"github.com/voralis/invoxly-backend/internal/database"
	"github.com/voralis/invoxly-backend/internal/extraction"
	"github.com/voralis/invoxly-backend/internal/gmail"
	"github.com/voralis/invoxly-backend/internal/llm"
	"github.com/voralis/invoxly-backend/internal/mailingest"
	"github.com/voralis/invoxly-backend/internal/repository"
	"github.com/voralis/invoxly-backend/internal/storage"
	"github.com/voralis/invoxly-backend/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	cfg.LogConfig(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	model := llm.NewClient(llm.Config{
		APIKey:      cfg.ModelAPIKey,
		BaseURL:     cfg.ModelBaseURL,
		Model:       cfg.ModelName,
		Temperature: cfg.ModelTemperature,
		Timeout:     cfg.ModelTimeout,
	}, logger)
	extractor := extraction.NewExtractor(model, store, logger)

	hub := websocket.NewHub(logger)
	go hub.Run()

	gmailClient, err := gmail.NewClient(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRedirectURL)
	if err != nil {
		logger.Info("gmail integration disabled", "reason", err)
		gmailClient = nil
	}

	e := api.NewRouter(&api.RouterConfig{
		DB:             db,
		Store:          store,
		Extractor:      extractor,
		Hub:            hub,
		Gmail:          gmailClient,
		Logger:         logger,
		SessionSecret:  cfg.SessionSecret,
		SessionTTL:     cfg.SessionTTL,
		AllowedOrigins: cfg.OriginsList(),
		Production:     cfg.AppEnv == "production",
		RateLimit:      cfg.RateLimitRequests,
		RateBurst:      cfg.RateLimitBurst,
	})

	errCh := make(chan error, 2)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		logger.Info("starting HTTP server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var smtpServer interface{ Close() error }
	if cfg.SMTPIngestEnabled {
		backend := mailingest.NewBackend(&mailingest.BackendConfig{
			Invoices:   repository.NewInvoiceRepository(db),
			Storage:    store,
			Extractor:  extractor,
			Events:     hub,
			Recipients: cfg.SMTPRecipients,
			Logger:     logger,
		})
		server := mailingest.NewSecureServer(backend, &mailingest.ServerConfig{
			Addr:          fmt.Sprintf(":%d", cfg.SMTPPort),
			Domain:        cfg.SMTPDomain,
			AllowInsecure: cfg.AppEnv != "production",
		})
		smtpServer = server

		go func() {
			logger.Info("starting SMTP ingest server", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !isClosedErr(err) {
				errCh <- fmt.Errorf("smtp server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if smtpServer != nil {
		if err := smtpServer.Close(); err != nil {
			logger.Warn("smtp server close failed", "error", err)
		}
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// newStorage selects the object storage backend: S3-compatible when an
// endpoint is configured, local filesystem otherwise.
func newStorage(ctx context.Context, cfg *config.Config) (storage.ObjectStorage, error) {
	if cfg.StorageEndpoint != "" {
		return storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			UseSSL:     cfg.StorageUseSSL,
			PresignTTL: cfg.PresignTTL,
		})
	}
	return storage.NewLocalStorage(cfg.LocalStoragePath)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func isClosedErr(err error) bool {
	return err == nil || strings.Contains(err.Error(), "closed")
}
