package mailingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-smtp"

	"github.com/voralis/invoxly-backend/internal/extraction"
	"github.com/voralis/invoxly-backend/internal/models"
	"github.com/voralis/invoxly-backend/internal/storage"
)

// Session implements the go-smtp Session interface
type Session struct {
	backend    *Backend
	from       string
	recipients []string
}

// NewSession creates a new SMTP session
func NewSession(backend *Backend) *Session {
	return &Session{
		backend:    backend,
		recipients: make([]string, 0),
	}
}

// AuthPlain handles PLAIN authentication (not required for receiving)
func (s *Session) AuthPlain(username, password string) error {
	return nil
}

// Mail handles the MAIL FROM command
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	s.from = normalizeAddress(from)
	if s.backend.logger != nil {
		s.backend.logger.Debug("MAIL FROM", slog.String("from", s.from))
	}
	return nil
}

// Rcpt handles the RCPT TO command
func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	addr := normalizeAddress(to)
	if !strings.Contains(addr, "@") {
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 1},
			Message:      "Invalid recipient address",
		}
	}

	if len(s.backend.recipients) > 0 && !s.backend.recipients[addr] {
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 1},
			Message:      "Recipient does not accept invoices",
		}
	}

	s.recipients = append(s.recipients, addr)
	if s.backend.logger != nil {
		s.backend.logger.Debug("RCPT TO", slog.String("to", addr))
	}
	return nil
}

// Data handles the DATA command - receives the email and runs it through
// the invoice pipeline
func (s *Session) Data(r io.Reader) error {
	if len(s.recipients) == 0 {
		return &smtp.SMTPError{
			Code:         503,
			EnhancedCode: smtp.EnhancedCode{5, 5, 1},
			Message:      "No recipients specified",
		}
	}

	parsed, err := ParseEmail(r)
	if err != nil {
		if s.backend.logger != nil {
			s.backend.logger.Error("failed to parse email", slog.Any("error", err))
		}
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Failed to parse email",
		}
	}

	// Prefer the From header, fall back to the envelope sender.
	if parsed.SenderEmail == "" {
		parsed.SenderEmail = s.from
	}

	invoice, err := s.backend.ingest(context.Background(), parsed)
	if err != nil {
		if s.backend.logger != nil {
			s.backend.logger.Error("failed to ingest invoice email",
				slog.String("from", parsed.SenderEmail),
				slog.String("subject", parsed.Subject),
				slog.Any("error", err))
		}
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Failed to process invoice",
		}
	}

	if s.backend.logger != nil {
		s.backend.logger.Info("invoice ingested from email",
			slog.String("invoice_id", invoice.ID),
			slog.String("from", parsed.SenderEmail),
			slog.String("vendor", invoice.VendorName))
	}
	return nil
}

// ingest stores usable attachments, extracts, and persists one invoice
func (b *Backend) ingest(ctx context.Context, email *ParsedEmail) (*models.Invoice, error) {
	var (
		refs    []extraction.AttachmentRef
		records []models.Attachment
	)

	for _, att := range email.Attachments {
		contentType := storage.NormalizeContentType(att.ContentType)
		if err := storage.ValidateUpload(contentType, int64(len(att.Content))); err != nil {
			// Signatures, logos and calendar invites ride along on real
			// invoice mail; skip them instead of rejecting the message.
			if b.logger != nil {
				b.logger.Debug("skipping attachment",
					slog.String("filename", att.Filename),
					slog.String("content_type", att.ContentType),
					slog.Any("error", err))
			}
			continue
		}

		key := storage.NewKey(att.Filename)
		if err := b.store.Put(ctx, key, bytes.NewReader(att.Content), int64(len(att.Content)), contentType); err != nil {
			return nil, fmt.Errorf("store attachment %q: %w", att.Filename, err)
		}

		size := int64(len(att.Content))
		refs = append(refs, extraction.AttachmentRef{
			StorageKey:  key,
			Filename:    att.Filename,
			ContentType: contentType,
		})
		records = append(records, models.Attachment{
			StorageKey:  key,
			Filename:    att.Filename,
			ContentType: contentType,
			SizeBytes:   &size,
		})
	}

	content := email.ExtractionContent()
	if content == "" && len(refs) == 0 {
		return nil, fmt.Errorf("email has no usable content or attachments")
	}

	candidate, err := b.extractor.Extract(ctx, extraction.Request{
		Content:     content,
		Attachments: refs,
	})
	if err != nil {
		return nil, err
	}

	var source *string
	if email.SenderEmail != "" {
		source = &email.SenderEmail
	}
	invoice, items := extraction.BuildInvoice(candidate, source)

	created, err := b.invoices.CreateWithRelations(ctx, invoice, items, records)
	if err != nil {
		return nil, fmt.Errorf("persist invoice: %w", err)
	}

	if b.events != nil {
		b.events.BroadcastInvoiceCreated(created)
	}
	return created, nil
}

// Reset resets the session state
func (s *Session) Reset() {
	s.from = ""
	s.recipients = make([]string, 0)
}

// Logout handles the end of the session
func (s *Session) Logout() error {
	return nil
}

// normalizeAddress strips angle brackets and lowercases an address
func normalizeAddress(address string) string {
	address = strings.TrimPrefix(address, "<")
	address = strings.TrimSuffix(address, ">")
	return strings.ToLower(strings.TrimSpace(address))
}
