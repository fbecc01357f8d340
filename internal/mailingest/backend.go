package mailingest

import (
	"context"
	"crypto/tls"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-smtp"

	"github.com/voralis/invoxly-backend/internal/extraction"
	"github.com/voralis/invoxly-backend/internal/models"
	"github.com/voralis/invoxly-backend/internal/repository"
	"github.com/voralis/invoxly-backend/internal/storage"
)

// Security limits
const (
	DefaultMaxMessageSize = 25 * 1024 * 1024 // 25 MB
	DefaultMaxRecipients  = 10
	DefaultReadTimeout    = 60 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultMaxLineLength  = 2000
)

// Extractor is the extraction collaborator the ingest path drives
type Extractor interface {
	Extract(ctx context.Context, req extraction.Request) (*extraction.Candidate, error)
}

// EventBroadcaster notifies subscribers of newly created invoices
type EventBroadcaster interface {
	BroadcastInvoiceCreated(invoice *models.Invoice)
}

// Backend implements the go-smtp Backend interface
type Backend struct {
	invoices  repository.InvoiceRepository
	store     storage.ObjectStorage
	extractor Extractor
	events    EventBroadcaster

	// Lowercased recipient addresses that accept invoices. Empty means
	// any recipient is accepted.
	recipients map[string]bool

	logger *slog.Logger
}

// BackendConfig holds configuration for the SMTP backend
type BackendConfig struct {
	Invoices   repository.InvoiceRepository
	Storage    storage.ObjectStorage
	Extractor  Extractor
	Events     EventBroadcaster
	Recipients []string
	Logger     *slog.Logger
}

// NewBackend creates a new SMTP backend
func NewBackend(cfg *BackendConfig) *Backend {
	recipients := make(map[string]bool, len(cfg.Recipients))
	for _, r := range cfg.Recipients {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			recipients[r] = true
		}
	}

	return &Backend{
		invoices:   cfg.Invoices,
		store:      cfg.Storage,
		extractor:  cfg.Extractor,
		events:     cfg.Events,
		recipients: recipients,
		logger:     cfg.Logger,
	}
}

// NewSession creates a new SMTP session
func (b *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	if b.logger != nil {
		b.logger.Info("new SMTP connection", slog.String("remote_addr", c.Conn().RemoteAddr().String()))
	}
	return NewSession(b), nil
}

// ServerConfig holds security configuration for the SMTP server
type ServerConfig struct {
	Addr           string
	Domain         string
	MaxMessageSize int64
	MaxRecipients  int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowInsecure  bool
	TLSConfig      *tls.Config
}

// NewSecureServer creates a new SMTP server with security settings
func NewSecureServer(backend *Backend, cfg *ServerConfig) *smtp.Server {
	s := smtp.NewServer(backend)

	s.Addr = cfg.Addr
	s.Domain = cfg.Domain

	if cfg.MaxMessageSize > 0 {
		s.MaxMessageBytes = cfg.MaxMessageSize
	} else {
		s.MaxMessageBytes = DefaultMaxMessageSize
	}

	if cfg.MaxRecipients > 0 {
		s.MaxRecipients = cfg.MaxRecipients
	} else {
		s.MaxRecipients = DefaultMaxRecipients
	}

	if cfg.ReadTimeout > 0 {
		s.ReadTimeout = cfg.ReadTimeout
	} else {
		s.ReadTimeout = DefaultReadTimeout
	}

	if cfg.WriteTimeout > 0 {
		s.WriteTimeout = cfg.WriteTimeout
	} else {
		s.WriteTimeout = DefaultWriteTimeout
	}

	s.AllowInsecureAuth = cfg.AllowInsecure

	if cfg.TLSConfig != nil {
		s.TLSConfig = cfg.TLSConfig
	}

	// Cap line length to prevent buffer overflow attacks
	s.MaxLineLength = DefaultMaxLineLength

	return s
}
