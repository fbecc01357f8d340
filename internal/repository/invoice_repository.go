package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/voralis/invoxly-backend/internal/models"
	"github.com/voralis/invoxly-backend/internal/pagination"
	"gorm.io/gorm"
)

// List limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// ListFilter holds the combinable filters for listing invoices
type ListFilter struct {
	Status string // exact status match
	Vendor string // substring match on vendor name
	Query  string // substring match across vendor name and invoice number
	Cursor *pagination.Cursor
	Limit  int
}

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	CreateWithRelations(ctx context.Context, invoice *models.Invoice, items []models.LineItem, attachments []models.Attachment) (*models.Invoice, error)
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]models.Invoice, *pagination.Cursor, error)
	UpdateStatusNotes(ctx context.Context, id string, status, approverNotes *string) (*models.Invoice, error)
	Delete(ctx context.Context, id string) error
}

// invoiceRepository implements InvoiceRepository using GORM
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new InvoiceRepository instance
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// CreateWithRelations inserts the invoice, its line items (tagged with
// ascending sort order) and its attachments in a single transaction, then
// re-fetches the invoice with relations for a consistent view. An empty
// re-fetch after a successful commit is an internal failure, not a
// validation failure.
func (r *invoiceRepository) CreateWithRelations(ctx context.Context, invoice *models.Invoice, items []models.LineItem, attachments []models.Attachment) (*models.Invoice, error) {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	if invoice.Status == "" {
		invoice.Status = models.StatusPending
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("LineItems", "Attachments").Create(invoice).Error; err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		for i := range items {
			if items[i].ID == "" {
				items[i].ID = uuid.New().String()
			}
			items[i].InvoiceID = invoice.ID
			items[i].SortOrder = i
			if err := tx.Create(&items[i]).Error; err != nil {
				return fmt.Errorf("failed to create line item: %w", err)
			}
		}

		for i := range attachments {
			if attachments[i].ID == "" {
				attachments[i].ID = uuid.New().String()
			}
			attachments[i].InvoiceID = invoice.ID
			if err := tx.Create(&attachments[i]).Error; err != nil {
				return fmt.Errorf("failed to create attachment: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := r.GetByID(ctx, invoice.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("invoice %s missing after commit", invoice.ID)
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an invoice by its ID with line items (in extraction
// order) and attachments preloaded
func (r *invoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	var invoice models.Invoice
	result := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Attachments").
		First(&invoice, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice by ID: %w", result.Error)
	}
	return &invoice, nil
}

// List retrieves invoices matching the filter, ordered by
// (created_at DESC, id DESC). That tie-break gives a total order even when
// rows share a millisecond timestamp. One extra row past the limit is
// fetched to decide whether a next page exists.
func (r *invoiceRepository) List(ctx context.Context, filter ListFilter) ([]models.Invoice, *pagination.Cursor, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	q := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Attachments")

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Vendor != "" {
		q = q.Where("LOWER(vendor_name) LIKE ?", "%"+strings.ToLower(filter.Vendor)+"%")
	}
	if filter.Query != "" {
		needle := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("LOWER(vendor_name) LIKE ? OR LOWER(invoice_number) LIKE ?", needle, needle)
	}
	if filter.Cursor != nil {
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID)
	}

	var rows []models.Invoice
	if err := q.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	return rows, next, nil
}

// UpdateStatusNotes updates status and/or approver notes. The updated_at
// timestamp is refreshed on every successful update. A missing invoice id
// yields ErrNotFound.
func (r *invoiceRepository) UpdateStatusNotes(ctx context.Context, id string, status, approverNotes *string) (*models.Invoice, error) {
	updates := map[string]any{}
	if status != nil {
		updates["status"] = *status
	}
	if approverNotes != nil {
		updates["approver_notes"] = *approverNotes
	}
	if len(updates) == 0 {
		return nil, ErrInvalidInput
	}

	result := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete deletes an invoice by its ID (cascade deletes line items and attachments)
func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Invoice{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
