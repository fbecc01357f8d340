package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/voralis/invoxly-backend/internal/errors"
)

func newContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestOK_ReturnsDataDirectly(t *testing.T) {
	c, rec := newContext(t)

	require.NoError(t, OK(c, map[string]string{"id": "inv-1"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"inv-1"}`, rec.Body.String())
}

func TestPage(t *testing.T) {
	c, rec := newContext(t)
	cursor := "djE6MTc6YWJj"

	require.NoError(t, Page(c, []string{"a", "b"}, &cursor))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []any{"a", "b"}, body["items"])
	assert.Equal(t, cursor, body["nextCursor"])
}

func TestPage_NoNextCursor(t *testing.T) {
	c, rec := newContext(t)

	require.NoError(t, Page(c, []string{}, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body, "nextCursor")
}

func TestError_NotFound(t *testing.T) {
	c, rec := newContext(t)

	require.NoError(t, Error(c, apperrors.ErrInvoiceNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"invoice not found"}`, rec.Body.String())
}

func TestError_ValidationWithIssues(t *testing.T) {
	c, rec := newContext(t)
	err := apperrors.NewValidationError("invalid request", "status must be one of pending, approved, rejected, clarification_needed")

	require.NoError(t, Error(c, err))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid request", body.Error)
	require.Len(t, body.Issues, 1)
}

func TestError_Extraction(t *testing.T) {
	c, rec := newContext(t)
	err := apperrors.NewExtractionError(apperrors.StageModel, "model request failed", nil)

	require.NoError(t, Error(c, err))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestError_Unauthorized(t *testing.T) {
	c, rec := newContext(t)

	require.NoError(t, Error(c, apperrors.ErrUnauthorized))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBadRequest_OmitsEmptyIssues(t *testing.T) {
	c, rec := newContext(t)

	require.NoError(t, BadRequest(c, "content or attachments required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"content or attachments required"}`, rec.Body.String())
}

func TestNoContent(t *testing.T) {
	c, rec := newContext(t)

	require.NoError(t, NoContent(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
