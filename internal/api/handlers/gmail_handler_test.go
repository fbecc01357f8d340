package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voralis/invoxly-backend/internal/gmail"
)

func newGmailTestClient(t *testing.T) *gmail.Client {
	t.Helper()
	client, err := gmail.NewClient("client-id", "client-secret", "http://localhost:8080/api/integrations/gmail/callback")
	require.NoError(t, err)
	return client
}

func TestGmailHandler_NotConfigured(t *testing.T) {
	h := NewGmailHandler(nil, nil)
	e := echo.New()

	for _, handler := range []echo.HandlerFunc{h.Connect, h.Callback, h.Messages} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusNotImplemented, rec.Code)
	}
}

func TestGmailHandler_Connect(t *testing.T) {
	h := NewGmailHandler(newGmailTestClient(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/integrations/gmail/connect", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Connect(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ConnectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.AuthURL, "client_id=client-id")
	assert.Contains(t, resp.AuthURL, "state=")
}

func TestGmailHandler_CallbackUnknownState(t *testing.T) {
	h := NewGmailHandler(newGmailTestClient(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/integrations/gmail/callback?code=abc&state=forged", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Callback(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown state")
}

func TestGmailHandler_CallbackMissingParams(t *testing.T) {
	h := NewGmailHandler(newGmailTestClient(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/integrations/gmail/callback", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Callback(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGmailHandler_MessagesNotConnected(t *testing.T) {
	h := NewGmailHandler(newGmailTestClient(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/integrations/gmail/messages", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Messages(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not connected")
}
