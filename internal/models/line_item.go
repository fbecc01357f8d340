package models

// LineItem represents a single line on an invoice
type LineItem struct {
	ID          string   `gorm:"primaryKey;size:36" json:"id"`
	InvoiceID   string   `gorm:"not null;size:36;index" json:"invoice_id"`
	Description string   `gorm:"not null" json:"description"`
	Quantity    float64  `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Amount      float64  `gorm:"not null" json:"amount"`
	Category    *string  `gorm:"size:128" json:"category,omitempty"`
	// SortOrder preserves the order line items appeared in the extraction
	SortOrder int `gorm:"not null;default:0" json:"sort_order"`

	// Relationships
	Invoice Invoice `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for LineItem
func (LineItem) TableName() string {
	return "line_items"
}
