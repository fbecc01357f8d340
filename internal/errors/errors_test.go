package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractionError_MatchesSentinel(t *testing.T) {
	err := NewExtractionError(StageParse, "unparsable model output", errors.New("unexpected end of JSON input"))

	assert.True(t, errors.Is(err, ErrExtraction))
	assert.True(t, IsExtraction(err))
	assert.Contains(t, err.Error(), "parse")
	assert.Contains(t, err.Error(), "unparsable model output")
}

func TestExtractionError_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewExtractionError(StageDownload, "attachment download failed", cause)

	assert.ErrorIs(t, err, cause)
}

func TestExtractionError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("process invoice: %w", NewExtractionError(StageModel, "empty model response", nil))

	assert.True(t, IsExtraction(err))

	var extErr *ExtractionError
	assert.True(t, errors.As(err, &extErr))
	assert.Equal(t, StageModel, extErr.Stage)
}

func TestValidationError_MatchesInvalidInput(t *testing.T) {
	err := NewValidationError("invalid request body", "content or attachments is required")

	assert.True(t, IsInvalidInput(err))
	assert.Equal(t, "invalid request body", err.Error())
	assert.Len(t, err.Issues, 1)
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", ErrInvoiceNotFound, CodeNotFound},
		{"invalid input", NewValidationError("bad body"), CodeInvalidInput},
		{"unauthorized", ErrUnauthorized, CodeUnauthorized},
		{"extraction", NewExtractionError(StageValidate, "schema validation failed", nil), CodeExtractionError},
		{"unknown", errors.New("boom"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCode(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))

	base := errors.New("base")
	wrapped := Wrap(base, "doing thing")
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, "doing thing: base", wrapped.Error())
}
