// Package extraction turns free text and attachment content into a
// validated invoice candidate. It composes a tolerant normalization pass
// over raw model output with a strict schema validation gate.
package extraction

// Candidate is the canonical shape of an extracted invoice. It is what
// normalization produces and what validation gates.
type Candidate struct {
	Vendor         Vendor          `json:"vendor"`
	Invoice        Header          `json:"invoice"`
	Assignment     *Assignment     `json:"assignment,omitempty"`
	LineItems      []LineItem      `json:"lineItems"`
	AIEnhancements *AIEnhancements `json:"aiEnhancements,omitempty"`
}

// Vendor identifies the invoicing party
type Vendor struct {
	Name  string  `json:"name"`
	TaxID *string `json:"taxId,omitempty"`
}

// Header holds the invoice-level fields
type Header struct {
	Number      string   `json:"number"`
	Date        string   `json:"date"`
	DueDate     *string  `json:"dueDate,omitempty"`
	Currency    string   `json:"currency"`
	Subtotal    *float64 `json:"subtotal,omitempty"`
	TaxAmount   *float64 `json:"taxAmount,omitempty"`
	TotalAmount *float64 `json:"totalAmount,omitempty"`
}

// Assignment carries optional routing info for approval
type Assignment struct {
	Department *string `json:"department,omitempty"`
	Employee   *string `json:"employee,omitempty"`
	CostCenter *string `json:"costCenter,omitempty"`
}

// LineItem is a single extracted invoice line
type LineItem struct {
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// AIEnhancements holds optional model-supplied metadata. ProcessedAt is
// stamped by the orchestrator regardless of what the model returned.
type AIEnhancements struct {
	Confidence  *float64 `json:"confidence,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	ProcessedAt string   `json:"processedAt,omitempty"`
}

// AttachmentRef points at an uploaded attachment to include in extraction
type AttachmentRef struct {
	StorageKey  string `json:"storageKey"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// Request is the input to the orchestrator: free text and/or attachments
type Request struct {
	Content     string
	Attachments []AttachmentRef
}
