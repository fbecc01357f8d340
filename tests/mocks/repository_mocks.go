package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/voralis/invoxly-backend/internal/models"
	"github.com/voralis/invoxly-backend/internal/pagination"
	"github.com/voralis/invoxly-backend/internal/repository"
)

// MockInvoiceRepository implements repository.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

// CreateWithRelations persists an invoice with its line items and attachments
func (m *MockInvoiceRepository) CreateWithRelations(ctx context.Context, invoice *models.Invoice, items []models.LineItem, attachments []models.Attachment) (*models.Invoice, error) {
	args := m.Called(ctx, invoice, items, attachments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

// GetByID retrieves an invoice by its ID
func (m *MockInvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

// List retrieves a page of invoices
func (m *MockInvoiceRepository) List(ctx context.Context, filter repository.ListFilter) ([]models.Invoice, *pagination.Cursor, error) {
	args := m.Called(ctx, filter)
	var invoices []models.Invoice
	if args.Get(0) != nil {
		invoices = args.Get(0).([]models.Invoice)
	}
	var next *pagination.Cursor
	if args.Get(1) != nil {
		next = args.Get(1).(*pagination.Cursor)
	}
	return invoices, next, args.Error(2)
}

// UpdateStatusNotes updates the status and/or approver notes of an invoice
func (m *MockInvoiceRepository) UpdateStatusNotes(ctx context.Context, id string, status, approverNotes *string) (*models.Invoice, error) {
	args := m.Called(ctx, id, status, approverNotes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

// Delete deletes an invoice by its ID
func (m *MockInvoiceRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSessionRepository implements repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

// Create stores a new session
func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// GetByToken retrieves a live session by token
func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

// Delete removes a session by token
func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// DeleteExpired removes all sessions past their expiry
func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
