package api

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/voralis/invoxly-backend/internal/api/handlers"
	"github.com/voralis/invoxly-backend/internal/api/middleware"
	"github.com/voralis/invoxly-backend/internal/gmail"
	"github.com/voralis/invoxly-backend/internal/repository"
	"github.com/voralis/invoxly-backend/internal/storage"
	"github.com/voralis/invoxly-backend/internal/websocket"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB        *gorm.DB
	Store     storage.ObjectStorage
	Extractor handlers.Extractor
	Hub       *websocket.Hub
	Gmail     *gmail.Client // nil disables the Gmail integration
	Logger    *slog.Logger

	SessionSecret  string
	SessionTTL     time.Duration
	AllowedOrigins []string
	Production     bool
	RateLimit      float64
	RateBurst      int
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e.Use(middleware.Recover())
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.Production))
	e.Use(middleware.RateLimiter(cfg.RateLimit, cfg.RateBurst, logger))
	e.Use(middleware.RequestLogger(logger))

	invoiceRepo := repository.NewInvoiceRepository(cfg.DB)
	sessionRepo := repository.NewSessionRepository(cfg.DB)

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	authHandler := handlers.NewAuthHandler(sessionRepo, cfg.SessionSecret, cfg.SessionTTL)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceRepo, cfg.Extractor, cfg.Store, cfg.Hub)
	attachmentHandler := handlers.NewAttachmentHandler(cfg.Store, logger)
	gmailHandler := handlers.NewGmailHandler(cfg.Gmail, logger)

	upgrader := websocket.NewSecureUpgrader(cfg.AllowedOrigins, logger)
	wsHandler := handlers.NewWSHandler(cfg.Hub, upgrader, logger)

	// Public routes
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)
	e.POST("/api/auth/login", authHandler.Login)
	e.GET("/ws", wsHandler.Serve)

	// The OAuth provider redirects here without a session header.
	e.GET("/api/integrations/gmail/callback", gmailHandler.Callback)

	// Authenticated routes
	api := e.Group("/api", middleware.SessionAuth(sessionRepo, logger))

	api.GET("/auth/session", authHandler.Session)
	api.DELETE("/auth/session", authHandler.Logout)

	invoices := api.Group("/invoices")
	invoices.POST("/process", invoiceHandler.Process)
	invoices.GET("", invoiceHandler.List)
	invoices.GET("/:id", invoiceHandler.Get)
	invoices.PATCH("/:id", invoiceHandler.Update)
	invoices.DELETE("/:id", invoiceHandler.Delete)
	invoices.GET("/:id/attachments/:attachmentId/download", invoiceHandler.DownloadAttachment)

	attachments := api.Group("/attachments")
	attachments.POST("/presign", attachmentHandler.Presign)
	attachments.POST("/upload", attachmentHandler.Upload)

	integrations := api.Group("/integrations/gmail")
	integrations.GET("/connect", gmailHandler.Connect)
	integrations.GET("/messages", gmailHandler.Messages)

	return e
}
