// Package fixtures provides builders and canned payloads for tests.
package fixtures

import (
	"time"

	"github.com/voralis/invoxly-backend/internal/extraction"
	"github.com/voralis/invoxly-backend/internal/models"
)

// InvoiceBuilder creates test Invoice instances with a fluent API
type InvoiceBuilder struct {
	invoice models.Invoice
}

// NewInvoiceBuilder creates an InvoiceBuilder with sensible defaults
func NewInvoiceBuilder() *InvoiceBuilder {
	return &InvoiceBuilder{
		invoice: models.Invoice{
			ID:            "inv-fixture-1",
			Status:        models.StatusPending,
			VendorName:    "Acme Corp",
			InvoiceNumber: "INV-2026-001",
			InvoiceDate:   "2026-01-15",
			Currency:      "USD",
			TotalAmount:   150.00,
			CreatedAt:     time.Now().UnixMilli(),
		},
	}
}

// WithID sets the invoice ID
func (b *InvoiceBuilder) WithID(id string) *InvoiceBuilder {
	b.invoice.ID = id
	return b
}

// WithStatus sets the invoice status
func (b *InvoiceBuilder) WithStatus(status string) *InvoiceBuilder {
	b.invoice.Status = status
	return b
}

// WithVendor sets the vendor name
func (b *InvoiceBuilder) WithVendor(name string) *InvoiceBuilder {
	b.invoice.VendorName = name
	return b
}

// WithNumber sets the invoice number
func (b *InvoiceBuilder) WithNumber(number string) *InvoiceBuilder {
	b.invoice.InvoiceNumber = number
	return b
}

// WithTotal sets the total amount
func (b *InvoiceBuilder) WithTotal(total float64) *InvoiceBuilder {
	b.invoice.TotalAmount = total
	return b
}

// WithSourceEmail sets the sender address the invoice was ingested from
func (b *InvoiceBuilder) WithSourceEmail(email string) *InvoiceBuilder {
	b.invoice.SourceEmail = &email
	return b
}

// WithCreatedAt sets the created timestamp in milliseconds since epoch
func (b *InvoiceBuilder) WithCreatedAt(millis int64) *InvoiceBuilder {
	b.invoice.CreatedAt = millis
	return b
}

// WithLineItem appends a line item
func (b *InvoiceBuilder) WithLineItem(description string, quantity, amount float64) *InvoiceBuilder {
	b.invoice.LineItems = append(b.invoice.LineItems, models.LineItem{
		Description: description,
		Quantity:    quantity,
		Amount:      amount,
		SortOrder:   len(b.invoice.LineItems),
	})
	return b
}

// Build returns the constructed Invoice
func (b *InvoiceBuilder) Build() *models.Invoice {
	return &b.invoice
}

// SessionBuilder creates test Session instances with a fluent API
type SessionBuilder struct {
	session models.Session
}

// NewSessionBuilder creates a SessionBuilder for a live session
func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{
		session: models.Session{
			Token:     "tok-fixture-1",
			UserEmail: "ops@example.com",
			ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
		},
	}
}

// WithToken sets the session token
func (b *SessionBuilder) WithToken(token string) *SessionBuilder {
	b.session.Token = token
	return b
}

// WithUserEmail sets the user email
func (b *SessionBuilder) WithUserEmail(email string) *SessionBuilder {
	b.session.UserEmail = email
	return b
}

// Expired backdates the expiry
func (b *SessionBuilder) Expired() *SessionBuilder {
	b.session.ExpiresAt = time.Now().Add(-time.Hour).UnixMilli()
	return b
}

// Build returns the constructed Session
func (b *SessionBuilder) Build() *models.Session {
	return &b.session
}

// ValidCandidate returns an extraction candidate that passes schema
// validation.
func ValidCandidate() *extraction.Candidate {
	total := 150.00
	amount := 150.00
	return &extraction.Candidate{
		Vendor: extraction.Vendor{Name: "Acme Corp"},
		Invoice: extraction.Header{
			Number:      "INV-2026-001",
			Date:        "2026-01-15",
			Currency:    "USD",
			TotalAmount: &total,
		},
		LineItems: []extraction.LineItem{
			{Description: "Consulting services", Quantity: 1, Amount: &amount},
		},
	}
}

// ModelOutputJSON is a canonical OpenAI-style extraction result as the
// model would return it.
const ModelOutputJSON = `{
  "vendor": {"name": "Acme Corp"},
  "invoice": {
    "number": "INV-2026-001",
    "date": "2026-01-15",
    "currency": "USD",
    "totalAmount": 150.00
  },
  "lineItems": [
    {"description": "Consulting services", "quantity": 1, "amount": 150.00}
  ]
}`

// RawInvoiceEmail is a minimal text email carrying invoice details,
// suitable for feeding the SMTP ingest pipeline.
const RawInvoiceEmail = "From: billing@acme.example.com\r\n" +
	"To: invoices@invoxly.example.com\r\n" +
	"Subject: Invoice INV-2026-001\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Please find our invoice INV-2026-001 for January consulting.\r\n" +
	"Total due: $150.00 by 2026-02-15.\r\n"
