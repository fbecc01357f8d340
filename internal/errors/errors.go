package errors

import (
	"errors"
	"fmt"
)

// Domain-specific error types
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvoiceNotFound indicates the invoice was not found
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrAttachmentNotFound indicates the attachment was not found
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates forbidden access
	ErrForbidden = errors.New("forbidden")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")

	// ErrExtraction indicates the extraction pipeline failed
	ErrExtraction = errors.New("extraction failed")
)

// Error codes for API responses
const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeExtractionError = "EXTRACTION_ERROR"
)

// Extraction pipeline stages, recorded on ExtractionError for diagnostics
const (
	StageDownload    = "download"
	StagePDFText     = "pdf_text"
	StageModel       = "model"
	StageParse       = "parse"
	StageValidate    = "validate"
	StageUnsupported = "unsupported_type"
)

// ExtractionError wraps any failure inside the extraction pipeline. The
// caller only sees one error kind; the stage and cause are preserved for
// diagnostics. There is no partial extraction result.
type ExtractionError struct {
	Stage   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed at %s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("extraction failed at %s: %s", e.Stage, e.Message)
}

// Unwrap returns the underlying error
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrExtraction) match any ExtractionError
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

// NewExtractionError creates a new ExtractionError
func NewExtractionError(stage, message string, err error) *ExtractionError {
	return &ExtractionError{Stage: stage, Message: message, Err: err}
}

// ValidationError carries a list of field-level issues for a 400 response
type ValidationError struct {
	Message string
	Issues  []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(message string, issues ...string) *ValidationError {
	return &ValidationError{Message: message, Issues: issues}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrAttachmentNotFound)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsExtraction checks if the error came from the extraction pipeline
func IsExtraction(err error) bool {
	return errors.Is(err, ErrExtraction)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	switch {
	case IsNotFound(err):
		return CodeNotFound
	case IsInvalidInput(err):
		return CodeInvalidInput
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case IsExtraction(err):
		return CodeExtractionError
	default:
		return CodeInternalError
	}
}
