package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/voralis/invoxly-backend/internal/errors"
	"github.com/voralis/invoxly-backend/internal/llm"
	"github.com/voralis/invoxly-backend/internal/storage"
)

// imageContentTypes are passed to the model as visual input
var imageContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/heic": true,
	"image/heif": true,
}

// Extractor orchestrates one extraction: resolve attachments through the
// storage collaborator, compose a single model request, and gate the
// response through normalization and strict validation. Any failure along
// the way surfaces as one typed extraction error; there is no partial
// result.
type Extractor struct {
	model llm.ChatClient
	store storage.ObjectStorage
	log   *slog.Logger

	// injectable clock for the processedAt stamp
	now func() time.Time
}

// NewExtractor creates a new Extractor
func NewExtractor(model llm.ChatClient, store storage.ObjectStorage, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{model: model, store: store, log: logger, now: time.Now}
}

// Extract runs the full pipeline for one request
func (e *Extractor) Extract(ctx context.Context, req Request) (*Candidate, error) {
	start := time.Now()

	parts, err := e.buildParts(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, apperrors.NewExtractionError(apperrors.StageModel, "nothing to extract: no content and no attachments", nil)
	}

	raw, err := e.model.Complete(ctx, systemPrompt, parts)
	if err != nil {
		return nil, apperrors.NewExtractionError(apperrors.StageModel, "model request failed", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(stripJSONWrapping(raw)), &decoded); err != nil {
		return nil, apperrors.NewExtractionError(apperrors.StageParse, "unparsable model output", err)
	}

	candidate := Normalize(decoded)
	if err := Validate(candidate); err != nil {
		return nil, err
	}

	// Stamp the processing time regardless of what the model supplied.
	if candidate.AIEnhancements == nil {
		candidate.AIEnhancements = &AIEnhancements{}
	}
	candidate.AIEnhancements.ProcessedAt = e.now().UTC().Format(time.RFC3339)

	e.log.Info("extraction.ok",
		"vendor", candidate.Vendor.Name,
		"invoice_number", candidate.Invoice.Number,
		"line_items", len(candidate.LineItems),
		"attachments", len(req.Attachments),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return candidate, nil
}

// buildParts composes the ordered user turns: free text first, then one
// turn per image and per PDF text chunk, in attachment order.
func (e *Extractor) buildParts(ctx context.Context, req Request) ([]llm.Part, error) {
	var parts []llm.Part

	if text := strings.TrimSpace(req.Content); text != "" {
		parts = append(parts, llm.Part{Text: "Email content:\n" + text})
	}

	for _, ref := range req.Attachments {
		ct := storage.NormalizeContentType(ref.ContentType)
		switch {
		case imageContentTypes[ct]:
			part, err := e.imagePart(ctx, ref, ct)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		case ct == "application/pdf":
			chunks, err := e.pdfParts(ctx, ref)
			if err != nil {
				return nil, err
			}
			parts = append(parts, chunks...)
		default:
			return nil, apperrors.NewExtractionError(apperrors.StageUnsupported,
				fmt.Sprintf("unsupported attachment content type %q", ref.ContentType), nil)
		}
	}

	return parts, nil
}

func (e *Extractor) imagePart(ctx context.Context, ref AttachmentRef, contentType string) (llm.Part, error) {
	data, err := e.download(ctx, ref)
	if err != nil {
		return llm.Part{}, err
	}
	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return llm.Part{ImageURL: dataURL}, nil
}

func (e *Extractor) pdfParts(ctx context.Context, ref AttachmentRef) ([]llm.Part, error) {
	data, err := e.download(ctx, ref)
	if err != nil {
		return nil, err
	}

	text, err := ExtractPDFText(data)
	if err != nil {
		return nil, apperrors.NewExtractionError(apperrors.StagePDFText,
			fmt.Sprintf("failed to read text from %q", ref.Filename), err)
	}

	chunks := ChunkText(NormalizeText(text), ChunkSize, MaxChunks)
	parts := make([]llm.Part, 0, len(chunks))
	for i, chunk := range chunks {
		header := fmt.Sprintf("PDF %q part %d/%d:\n", ref.Filename, i+1, len(chunks))
		parts = append(parts, llm.Part{Text: header + chunk})
	}
	return parts, nil
}

func (e *Extractor) download(ctx context.Context, ref AttachmentRef) ([]byte, error) {
	rc, err := e.store.Get(ctx, ref.StorageKey)
	if err != nil {
		return nil, apperrors.NewExtractionError(apperrors.StageDownload,
			fmt.Sprintf("failed to download attachment %q", ref.Filename), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.NewExtractionError(apperrors.StageDownload,
			fmt.Sprintf("failed to read attachment %q", ref.Filename), err)
	}
	return data, nil
}

// stripJSONWrapping tolerates models that fence their output despite the
// instruction not to
func stripJSONWrapping(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	return s
}
