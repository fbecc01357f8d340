package models

// Attachment represents a stored file attached to an invoice
type Attachment struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	InvoiceID   string `gorm:"not null;size:36;index" json:"invoice_id"`
	StorageKey  string `gorm:"not null;size:512" json:"storage_key"`
	Filename    string `gorm:"size:255" json:"filename"`
	ContentType string `gorm:"size:100" json:"content_type"`
	SizeBytes   *int64 `json:"size_bytes,omitempty"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli" json:"created_at"`

	// Relationships
	Invoice Invoice `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}
