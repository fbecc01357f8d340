package extraction

import (
	"github.com/voralis/invoxly-backend/internal/models"
)

// BuildInvoice maps a validated candidate onto the persistence model.
// Callers must only pass candidates that passed Validate; the required
// pointers are dereferenced here.
func BuildInvoice(c *Candidate, sourceEmail *string) (*models.Invoice, []models.LineItem) {
	invoice := &models.Invoice{
		SourceEmail:   sourceEmail,
		Status:        models.StatusPending,
		VendorName:    c.Vendor.Name,
		VendorTaxID:   c.Vendor.TaxID,
		InvoiceNumber: c.Invoice.Number,
		InvoiceDate:   c.Invoice.Date,
		DueDate:       c.Invoice.DueDate,
		Currency:      c.Invoice.Currency,
		Subtotal:      c.Invoice.Subtotal,
		TaxAmount:     c.Invoice.TaxAmount,
		TotalAmount:   *c.Invoice.TotalAmount,
	}
	if c.Assignment != nil {
		invoice.Department = c.Assignment.Department
		invoice.Employee = c.Assignment.Employee
		invoice.CostCenter = c.Assignment.CostCenter
	}

	items := make([]models.LineItem, 0, len(c.LineItems))
	for _, li := range c.LineItems {
		items = append(items, models.LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Amount:      *li.Amount,
			Category:    li.Category,
		})
	}
	return invoice, items
}
