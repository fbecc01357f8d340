package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/voralis/invoxly-backend/internal/api/response"
	apperrors "github.com/voralis/invoxly-backend/internal/errors"
	"github.com/voralis/invoxly-backend/internal/extraction"
	"github.com/voralis/invoxly-backend/internal/models"
	"github.com/voralis/invoxly-backend/internal/pagination"
	"github.com/voralis/invoxly-backend/internal/repository"
	"github.com/voralis/invoxly-backend/internal/storage"
	"github.com/voralis/invoxly-backend/internal/validator"
)

// Extractor is the extraction collaborator driven by the process endpoint
type Extractor interface {
	Extract(ctx context.Context, req extraction.Request) (*extraction.Candidate, error)
}

// EventBroadcaster pushes invoice lifecycle events to subscribers
type EventBroadcaster interface {
	BroadcastInvoiceCreated(invoice *models.Invoice)
	BroadcastInvoiceUpdated(invoice *models.Invoice)
}

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoices  repository.InvoiceRepository
	extractor Extractor
	store     storage.ObjectStorage
	events    EventBroadcaster
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices repository.InvoiceRepository, extractor Extractor, store storage.ObjectStorage, events EventBroadcaster) *InvoiceHandler {
	return &InvoiceHandler{
		invoices:  invoices,
		extractor: extractor,
		store:     store,
		events:    events,
	}
}

// ProcessRequest is the body for POST /api/invoices/process
type ProcessRequest struct {
	Content     string              `json:"content"`
	Attachments []ProcessAttachment `json:"attachments"`
}

// ProcessAttachment points at an already-uploaded attachment
type ProcessAttachment struct {
	StorageKey  string `json:"storageKey"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	SizeBytes   *int64 `json:"sizeBytes,omitempty"`
}

// Process handles POST /api/invoices/process: run extraction over the
// given content and attachments, persist the result, broadcast the event.
func (h *InvoiceHandler) Process(c echo.Context) error {
	var req ProcessRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Content == "" && len(req.Attachments) == 0 {
		return response.BadRequest(c, "content or attachments required")
	}

	var issues []string
	refs := make([]extraction.AttachmentRef, 0, len(req.Attachments))
	records := make([]models.Attachment, 0, len(req.Attachments))
	for i, att := range req.Attachments {
		if att.StorageKey == "" {
			issues = append(issues, "attachments["+strconv.Itoa(i)+"].storageKey is required")
			continue
		}
		contentType := storage.NormalizeContentType(att.ContentType)
		if !storage.AllowedContentTypes[contentType] {
			issues = append(issues, "attachments["+strconv.Itoa(i)+"].contentType "+att.ContentType+" is not allowed")
			continue
		}
		refs = append(refs, extraction.AttachmentRef{
			StorageKey:  att.StorageKey,
			Filename:    att.Filename,
			ContentType: contentType,
		})
		records = append(records, models.Attachment{
			StorageKey:  att.StorageKey,
			Filename:    validator.SanitizeFilename(att.Filename),
			ContentType: contentType,
			SizeBytes:   att.SizeBytes,
		})
	}
	if len(issues) > 0 {
		return response.BadRequest(c, "invalid attachments", issues...)
	}

	ctx := c.Request().Context()
	candidate, err := h.extractor.Extract(ctx, extraction.Request{
		Content:     req.Content,
		Attachments: refs,
	})
	if err != nil {
		return response.Error(c, err)
	}

	invoice, items := extraction.BuildInvoice(candidate, nil)
	created, err := h.invoices.CreateWithRelations(ctx, invoice, items, records)
	if err != nil {
		return response.InternalError(c, "failed to persist invoice")
	}

	if h.events != nil {
		h.events.BroadcastInvoiceCreated(created)
	}
	return response.Created(c, created)
}

// List handles GET /api/invoices
func (h *InvoiceHandler) List(c echo.Context) error {
	filter := repository.ListFilter{
		Vendor: c.QueryParam("vendor"),
		Query:  c.QueryParam("q"),
	}

	if status := c.QueryParam("status"); status != "" {
		if err := validator.ValidateStatus(status); err != nil {
			return response.BadRequest(c, "invalid status filter", err.Error())
		}
		filter.Status = status
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return response.BadRequest(c, "limit must be a positive integer")
		}
		filter.Limit = limit
	}

	// A cursor that does not decode is ignored and the first page is
	// served.
	if token := c.QueryParam("cursor"); token != "" {
		if cursor, ok := pagination.Decode(token); ok {
			filter.Cursor = &cursor
		}
	}

	invoices, next, err := h.invoices.List(c.Request().Context(), filter)
	if err != nil {
		return response.InternalError(c, "failed to list invoices")
	}

	var nextToken *string
	if next != nil {
		token := next.Encode()
		nextToken = &token
	}
	return response.Page(c, invoices, nextToken)
}

// Get handles GET /api/invoices/:id
func (h *InvoiceHandler) Get(c echo.Context) error {
	invoice, err := h.invoices.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Error(c, apperrors.ErrInvoiceNotFound)
		}
		return response.InternalError(c, "failed to get invoice")
	}
	return response.OK(c, invoice)
}

// UpdateRequest is the body for PATCH /api/invoices/:id
type UpdateRequest struct {
	Status        *string `json:"status"`
	ApproverNotes *string `json:"approverNotes"`
}

// Update handles PATCH /api/invoices/:id
func (h *InvoiceHandler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Status == nil && req.ApproverNotes == nil {
		return response.BadRequest(c, "status or approverNotes required")
	}
	if req.Status != nil {
		if err := validator.ValidateStatus(*req.Status); err != nil {
			return response.BadRequest(c, "invalid status", err.Error())
		}
	}

	updated, err := h.invoices.UpdateStatusNotes(c.Request().Context(), c.Param("id"), req.Status, req.ApproverNotes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Error(c, apperrors.ErrInvoiceNotFound)
		}
		return response.InternalError(c, "failed to update invoice")
	}

	if h.events != nil {
		h.events.BroadcastInvoiceUpdated(updated)
	}
	return response.OK(c, updated)
}

// Delete handles DELETE /api/invoices/:id. Line items and attachments go
// with the invoice.
func (h *InvoiceHandler) Delete(c echo.Context) error {
	err := h.invoices.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Error(c, apperrors.ErrInvoiceNotFound)
		}
		return response.InternalError(c, "failed to delete invoice")
	}
	return response.NoContent(c)
}

// DownloadAttachment handles GET /api/invoices/:id/attachments/:attachmentId/download.
// S3-backed storage redirects to a presigned URL; local storage streams
// the bytes directly.
func (h *InvoiceHandler) DownloadAttachment(c echo.Context) error {
	ctx := c.Request().Context()

	invoice, err := h.invoices.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Error(c, apperrors.ErrInvoiceNotFound)
		}
		return response.InternalError(c, "failed to get invoice")
	}

	var attachment *models.Attachment
	for i := range invoice.Attachments {
		if invoice.Attachments[i].ID == c.Param("attachmentId") {
			attachment = &invoice.Attachments[i]
			break
		}
	}
	if attachment == nil {
		return response.Error(c, apperrors.ErrAttachmentNotFound)
	}

	url, err := h.store.PresignDownload(ctx, attachment.StorageKey)
	if err == nil {
		return c.Redirect(http.StatusTemporaryRedirect, url)
	}
	if !errors.Is(err, storage.ErrPresignUnsupported) {
		return response.InternalError(c, "failed to presign download")
	}

	obj, err := h.store.Get(ctx, attachment.StorageKey)
	if err != nil {
		return response.InternalError(c, "failed to retrieve file")
	}
	defer obj.Close()

	c.Response().Header().Set(echo.HeaderContentType, attachment.ContentType)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+attachment.Filename+`"`)
	if _, err := io.Copy(c.Response().Writer, obj); err != nil {
		return response.InternalError(c, "failed to send file")
	}
	return nil
}
