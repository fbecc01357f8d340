package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voralis/invoxly-backend/internal/api/response"
	seclog "github.com/voralis/invoxly-backend/internal/logger"
	"github.com/voralis/invoxly-backend/internal/storage"
	"github.com/voralis/invoxly-backend/internal/validator"
)

// AttachmentHandler handles attachment upload HTTP requests. Clients
// either get a presigned PUT URL (S3-backed deployments) or push bytes
// through the direct upload endpoint (local storage).
type AttachmentHandler struct {
	store storage.ObjectStorage
	audit *seclog.SecurityLogger
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(store storage.ObjectStorage, logger *slog.Logger) *AttachmentHandler {
	var audit *seclog.SecurityLogger
	if logger != nil {
		audit = seclog.NewSecurityLoggerWithHandler(logger.Handler())
	} else {
		audit = seclog.NewSecurityLogger()
	}
	return &AttachmentHandler{store: store, audit: audit}
}

// PresignRequest is the body for POST /api/attachments/presign
type PresignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// PresignResponse carries the storage key and the upload URL
type PresignResponse struct {
	StorageKey string `json:"storageKey"`
	UploadURL  string `json:"uploadUrl"`
}

// UploadResponse is returned by the direct upload endpoint
type UploadResponse struct {
	StorageKey  string `json:"storageKey"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// Presign handles POST /api/attachments/presign
func (h *AttachmentHandler) Presign(c echo.Context) error {
	var req PresignRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Filename == "" {
		return response.BadRequest(c, "filename is required")
	}

	if err := storage.ValidateUpload(req.ContentType, req.SizeBytes); err != nil {
		h.audit.BlockedFileUpload(c.RealIP(), req.Filename, err.Error())
		return response.BadRequest(c, err.Error())
	}

	key := storage.NewKey(validator.SanitizeFilename(req.Filename))
	uploadURL, err := h.store.PresignUpload(c.Request().Context(), key, storage.NormalizeContentType(req.ContentType))
	if err != nil {
		if errors.Is(err, storage.ErrPresignUnsupported) {
			return c.JSON(http.StatusNotImplemented, response.ErrorResponse{
				Error: "presigned uploads unavailable; use POST /api/attachments/upload",
			})
		}
		return response.InternalError(c, "failed to presign upload")
	}

	return response.OK(c, PresignResponse{StorageKey: key, UploadURL: uploadURL})
}

// Upload handles POST /api/attachments/upload (multipart form, field "file")
func (h *AttachmentHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "multipart field \"file\" is required")
	}

	contentType := storage.NormalizeContentType(fileHeader.Header.Get("Content-Type"))
	if err := storage.ValidateUpload(contentType, fileHeader.Size); err != nil {
		h.audit.BlockedFileUpload(c.RealIP(), fileHeader.Filename, err.Error())
		return response.BadRequest(c, err.Error())
	}

	src, err := fileHeader.Open()
	if err != nil {
		return response.InternalError(c, "failed to read upload")
	}
	defer src.Close()

	filename := validator.SanitizeFilename(fileHeader.Filename)
	key := storage.NewKey(filename)
	if err := h.store.Put(c.Request().Context(), key, src, fileHeader.Size, contentType); err != nil {
		return response.InternalError(c, "failed to store upload")
	}

	return response.Created(c, UploadResponse{
		StorageKey:  key,
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   fileHeader.Size,
	})
}
