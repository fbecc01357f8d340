package models

// Invoice status values. Transitions are not constrained server-side;
// any status may follow any other.
const (
	StatusPending            = "pending"
	StatusApproved           = "approved"
	StatusRejected           = "rejected"
	StatusClarificationNeeded = "clarification_needed"
)

// ValidStatuses is the set of accepted invoice statuses
var ValidStatuses = map[string]bool{
	StatusPending:             true,
	StatusApproved:            true,
	StatusRejected:            true,
	StatusClarificationNeeded: true,
}

// Invoice represents an extracted vendor invoice
type Invoice struct {
	ID            string   `gorm:"primaryKey;size:36" json:"id"`
	SourceEmail   *string  `gorm:"size:255" json:"source_email,omitempty"`
	Status        string   `gorm:"not null;size:32;default:pending;index" json:"status"`
	VendorName    string   `gorm:"not null;size:255;index" json:"vendor_name"`
	VendorTaxID   *string  `gorm:"size:64" json:"vendor_tax_id,omitempty"`
	InvoiceNumber string   `gorm:"not null;size:128" json:"invoice_number"`
	InvoiceDate   string   `gorm:"not null;size:10" json:"invoice_date"`
	DueDate       *string  `gorm:"size:10" json:"due_date,omitempty"`
	Currency      string   `gorm:"not null;size:3;default:USD" json:"currency"`
	Subtotal      *float64 `json:"subtotal,omitempty"`
	TaxAmount     *float64 `json:"tax_amount,omitempty"`
	TotalAmount   float64  `gorm:"not null" json:"total_amount"`
	Department    *string  `gorm:"size:128" json:"department,omitempty"`
	Employee      *string  `gorm:"size:128" json:"employee,omitempty"`
	CostCenter    *string  `gorm:"size:128" json:"cost_center,omitempty"`
	ApproverNotes *string  `json:"approver_notes,omitempty"`

	// Milliseconds since epoch. UpdatedAt refreshes on every mutation.
	CreatedAt int64 `gorm:"autoCreateTime:milli;index:idx_invoices_created_id,priority:1" json:"created_at"`
	UpdatedAt int64 `gorm:"autoUpdateTime:milli" json:"updated_at"`

	// Relationships
	LineItems   []LineItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"line_items,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

// TableName returns the table name for Invoice
func (Invoice) TableName() string {
	return "invoices"
}
