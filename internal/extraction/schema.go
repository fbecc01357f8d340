package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	apperrors "github.com/voralis/invoxly-backend/internal/errors"
)

// CandidateSchema returns the JSON-Schema (draft 2020-12 subset) that
// gates a normalized candidate. Vendor name, invoice number, date and
// total amount are the non-negotiable fields; monetary fields must be
// non-negative; at least one line item must survive normalization.
func CandidateSchema() map[string]any {
	nonNegative := func() map[string]any {
		return map[string]any{"type": "number", "minimum": 0}
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"vendor": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":  map[string]any{"type": "string", "minLength": 1},
					"taxId": map[string]any{"type": "string"},
				},
				"required": []any{"name"},
			},
			"invoice": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"number":      map[string]any{"type": "string", "minLength": 1},
					"date":        map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
					"dueDate":     map[string]any{"type": "string"},
					"currency":    map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
					"subtotal":    nonNegative(),
					"taxAmount":   nonNegative(),
					"totalAmount": nonNegative(),
				},
				"required": []any{"number", "date", "totalAmount"},
			},
			"assignment": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"department": map[string]any{"type": "string"},
					"employee":   map[string]any{"type": "string"},
					"costCenter": map[string]any{"type": "string"},
				},
			},
			"lineItems": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": map[string]any{"type": "string", "minLength": 1},
						"quantity":    nonNegative(),
						"unitPrice":   nonNegative(),
						"amount":      nonNegative(),
						"category":    map[string]any{"type": "string"},
					},
					"required": []any{"description", "amount"},
				},
			},
			"aiEnhancements": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"confidence":  map[string]any{"type": "number", "minimum": 0, "maximum": 1},
					"notes":       map[string]any{"type": "string"},
					"processedAt": map[string]any{"type": "string"},
				},
			},
		},
		"required": []any{"vendor", "invoice", "lineItems"},
	}
}

var (
	compiledSchema     *jsonschema.Schema
	compileSchemaOnce  sync.Once
	compileSchemaError error
)

func candidateSchema() (*jsonschema.Schema, error) {
	compileSchemaOnce.Do(func() {
		b, err := json.Marshal(CandidateSchema())
		if err != nil {
			compileSchemaError = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("candidate.json", bytes.NewReader(b)); err != nil {
			compileSchemaError = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compileSchemaError = compiler.Compile("candidate.json")
	})
	return compiledSchema, compileSchemaError
}

// Validate rejects a normalized candidate missing genuinely required
// fields or holding out-of-range values. Failure surfaces as a typed
// extraction error, distinct from transport-level errors.
func Validate(c *Candidate) error {
	schema, err := candidateSchema()
	if err != nil {
		return apperrors.NewExtractionError(apperrors.StageValidate, "schema compile failed", err)
	}

	b, err := json.Marshal(c)
	if err != nil {
		return apperrors.NewExtractionError(apperrors.StageValidate, "marshal candidate", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return apperrors.NewExtractionError(apperrors.StageValidate, "decode candidate", err)
	}

	if err := schema.Validate(v); err != nil {
		return apperrors.NewExtractionError(apperrors.StageValidate, "candidate does not match schema", err)
	}
	return nil
}
