package extraction

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when a required field cannot be resolved
const (
	DefaultVendorName    = "Unknown Vendor"
	DefaultInvoiceNumber = "UNKNOWN"
	DefaultCurrency      = "USD"
)

// Normalize maps arbitrary model output into the canonical candidate
// shape. It never fails: missing or unrecognizable fields fall back to
// defaults or are left absent, and the strict schema validation downstream
// is the actual correctness gate. Feeding it an already-canonical payload
// yields the same values unchanged.
func Normalize(raw any) *Candidate {
	return normalizeAt(raw, time.Now())
}

// normalizeAt is Normalize with an injectable clock for the invoice-date
// default.
func normalizeAt(raw any, now time.Time) *Candidate {
	m, _ := raw.(map[string]any)

	c := &Candidate{}

	c.Vendor.Name = stringField(m, "vendor.name", DefaultVendorName)
	c.Vendor.TaxID = optStringField(m, "vendor.taxId")

	c.Invoice.Number = stringField(m, "invoice.number", DefaultInvoiceNumber)
	c.Invoice.Date = stringField(m, "invoice.date", now.Format("2006-01-02"))
	c.Invoice.DueDate = optStringField(m, "invoice.dueDate")
	c.Invoice.Currency = stringField(m, "invoice.currency", DefaultCurrency)
	c.Invoice.Subtotal = numberField(m, "invoice.subtotal")
	c.Invoice.TaxAmount = numberField(m, "invoice.taxAmount")
	c.Invoice.TotalAmount = numberField(m, "invoice.totalAmount")

	department := optStringField(m, "assignment.department")
	employee := optStringField(m, "assignment.employee")
	costCenter := optStringField(m, "assignment.costCenter")
	if department != nil || employee != nil || costCenter != nil {
		c.Assignment = &Assignment{
			Department: department,
			Employee:   employee,
			CostCenter: costCenter,
		}
	}

	c.LineItems = normalizeLineItems(m)

	confidence := numberField(m, "aiEnhancements.confidence")
	notes := optStringField(m, "aiEnhancements.notes")
	if confidence != nil || notes != nil {
		c.AIEnhancements = &AIEnhancements{Confidence: confidence, Notes: notes}
	}

	return c
}

// normalizeLineItems resolves the line-item array and maps each entry. An
// item lacking both a non-empty description and a resolvable amount is
// dropped silently.
func normalizeLineItems(m map[string]any) []LineItem {
	raw, ok := resolveAlias(m, FieldAliases["lineItems"])
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	items := make([]LineItem, 0, len(list))
	for _, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		item := LineItem{Quantity: 1}
		if v, ok := lookupFirst(obj, LineItemAliases["description"]); ok {
			if s := coerceString(v); s != "" {
				item.Description = s
			}
		}
		if v, ok := lookupFirst(obj, LineItemAliases["quantity"]); ok {
			if n, ok := coerceNumber(v); ok {
				item.Quantity = n
			}
		}
		if v, ok := lookupFirst(obj, LineItemAliases["unitPrice"]); ok {
			if n, ok := coerceNumber(v); ok {
				item.UnitPrice = &n
			}
		}
		if v, ok := lookupFirst(obj, LineItemAliases["amount"]); ok {
			if n, ok := coerceNumber(v); ok {
				item.Amount = &n
			}
		}
		if v, ok := lookupFirst(obj, LineItemAliases["category"]); ok {
			if s := coerceString(v); s != "" {
				item.Category = &s
			}
		}

		// amount = quantity × unitPrice when only the unit price is known
		if item.Amount == nil && item.UnitPrice != nil {
			amount := item.Quantity * *item.UnitPrice
			item.Amount = &amount
		}

		if item.Description == "" && item.Amount == nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

// resolveAlias walks the alias paths in order and returns the first
// non-empty value found.
func resolveAlias(m map[string]any, paths []string) (any, bool) {
	for _, path := range paths {
		v, ok := lookupPath(m, path)
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// lookupPath resolves a dot-separated path of object keys
func lookupPath(m map[string]any, path string) (any, bool) {
	if m == nil {
		return nil, false
	}
	cur := any(m)
	for _, seg := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// lookupFirst returns the first present, non-nil value among keys
func lookupFirst(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func stringField(m map[string]any, field, fallback string) string {
	if v, ok := resolveAlias(m, FieldAliases[field]); ok {
		if s := coerceString(v); s != "" {
			return s
		}
	}
	return fallback
}

func optStringField(m map[string]any, field string) *string {
	if v, ok := resolveAlias(m, FieldAliases[field]); ok {
		if s := coerceString(v); s != "" {
			return &s
		}
	}
	return nil
}

func numberField(m map[string]any, field string) *float64 {
	if v, ok := resolveAlias(m, FieldAliases[field]); ok {
		if n, ok := coerceNumber(v); ok {
			return &n
		}
	}
	return nil
}

// coerceString renders scalar values as trimmed strings
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// coerceNumber accepts native numbers directly. Strings are stripped down
// to digits, commas, periods and minus signs; a comma appearing after the
// last period is taken as the decimal separator (so "1.234,56" parses to
// 1234.56) while all other commas are dropped as grouping noise. Values
// that do not parse to a finite number are treated as absent.
func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		return parseNumericString(t)
	default:
		return 0, false
	}
}

func parseNumericString(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	lastComma := strings.LastIndexByte(cleaned, ',')
	lastPeriod := strings.LastIndexByte(cleaned, '.')
	if lastComma > lastPeriod {
		// locale-style decimal comma: periods are grouping separators
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		lastComma = strings.LastIndexByte(cleaned, ',')
		cleaned = strings.ReplaceAll(cleaned[:lastComma], ",", "") + "." + cleaned[lastComma+1:]
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
