package extraction

import "strings"

// systemPrompt is the fixed system instruction sent with every extraction
// request. The model must answer with bare JSON matching the candidate
// shape; normalization downstream tolerates deviations anyway.
var systemPrompt = strings.Join([]string{
	"You are an expert accounts-payable invoice extractor.",
	"Read the provided email text, images and PDF text and extract the invoice data.",
	"Return ONLY a JSON object. No markdown fencing, no commentary.",
	"Use this shape:",
	`{"vendor":{"name":string,"taxId":string?},` +
		`"invoice":{"number":string,"date":"YYYY-MM-DD","dueDate":string?,"currency":"ISO 4217","subtotal":number?,"taxAmount":number?,"totalAmount":number},` +
		`"assignment":{"department":string?,"employee":string?,"costCenter":string?},` +
		`"lineItems":[{"description":string,"quantity":number,"unitPrice":number?,"amount":number,"category":string?}],` +
		`"aiEnhancements":{"confidence":number?,"notes":string?}}`,
	"vendor.name is the party issuing the invoice, not the recipient.",
	"invoice.date and dueDate are ISO dates (YYYY-MM-DD).",
	"All monetary values are plain numbers in the invoice currency, never strings.",
	"lineItems must cover every billed line; amount is the line total.",
	"Omit fields you cannot determine. Never output null.",
	"aiEnhancements.confidence is your overall confidence in [0,1].",
}, " ")
