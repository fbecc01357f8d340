package extraction

// FieldAliases maps each canonical field to the ordered list of dot paths
// tried against the raw model output. The first path holding a non-empty
// value wins. Kept as a package-level table so it can be extended and
// tested without touching the normalization code.
var FieldAliases = map[string][]string{
	"vendor.name": {
		"vendor.name", "vendor.vendorName", "vendor.company",
		"vendorName", "vendor_name", "vendor",
		"supplier.name", "supplier_name", "supplier",
		"seller.name", "merchant_name", "merchant",
	},
	"vendor.taxId": {
		"vendor.taxId", "vendor.tax_id", "vendor.vatNumber", "vendor.vat_number",
		"taxId", "tax_id", "vat_number", "vatNumber",
	},
	"invoice.number": {
		"invoice.number", "invoice.invoiceNumber", "invoice.invoice_number",
		"billing.number", "billing.invoiceNumber",
		"invoiceNumber", "invoice_number", "invoice_no", "invoiceNo", "number",
	},
	"invoice.date": {
		"invoice.date", "invoice.invoiceDate", "invoice.invoice_date",
		"billing.date", "billing.invoiceDate",
		"invoiceDate", "invoice_date", "issue_date", "issueDate", "date",
	},
	"invoice.dueDate": {
		"invoice.dueDate", "invoice.due_date", "billing.dueDate",
		"dueDate", "due_date", "payment_due", "paymentDue",
	},
	"invoice.currency": {
		"invoice.currency", "billing.currency",
		"currency", "currencyCode", "currency_code",
	},
	"invoice.subtotal": {
		"invoice.subtotal", "billing.subtotal",
		"subtotal", "sub_total", "subTotal", "net_amount", "netAmount",
	},
	"invoice.taxAmount": {
		"invoice.taxAmount", "invoice.tax_amount", "invoice.tax",
		"billing.taxAmount", "billing.tax",
		"taxAmount", "tax_amount", "tax", "vat_amount", "vatAmount",
	},
	"invoice.totalAmount": {
		"invoice.totalAmount", "invoice.total_amount", "invoice.total",
		"billing.totalAmount", "billing.total",
		"totalAmount", "total_amount", "total",
		"amount_due", "amountDue", "grand_total", "grandTotal",
	},
	"assignment.department": {
		"assignment.department", "bill_to.department", "billTo.department",
		"department",
	},
	"assignment.employee": {
		"assignment.employee", "bill_to.employee", "bill_to.name",
		"billTo.employee", "employee", "attention",
	},
	"assignment.costCenter": {
		"assignment.costCenter", "assignment.cost_center",
		"bill_to.costCenter", "bill_to.cost_center",
		"costCenter", "cost_center",
	},
	"lineItems": {
		"lineItems", "line_items", "items", "lines",
		"invoice.lineItems", "invoice.line_items", "invoice.items",
	},
	"aiEnhancements.confidence": {
		"aiEnhancements.confidence", "ai.confidence", "confidence",
	},
	"aiEnhancements.notes": {
		"aiEnhancements.notes", "ai.notes", "notes", "comments",
	},
}

// LineItemAliases maps each canonical line-item field to its alias keys,
// tried in order against each raw line-item object.
var LineItemAliases = map[string][]string{
	"description": {"description", "desc", "name", "item", "title", "label"},
	"quantity":    {"quantity", "qty", "units", "count"},
	"unitPrice":   {"unitPrice", "unit_price", "price", "rate", "unit_cost", "unitCost"},
	"amount":      {"amount", "total", "lineTotal", "line_total", "extended_price", "extendedPrice"},
	"category":    {"category", "type", "expense_category", "expenseCategory"},
}
