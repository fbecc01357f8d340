package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voralis/invoxly-backend/internal/api/middleware"
	"github.com/voralis/invoxly-backend/internal/models"
	"github.com/voralis/invoxly-backend/internal/repository"
)

type stubSessions struct {
	created *models.Session
	deleted string
	err     error
}

func (s *stubSessions) Create(_ context.Context, session *models.Session) error {
	if s.err != nil {
		return s.err
	}
	s.created = session
	return nil
}

func (s *stubSessions) GetByToken(_ context.Context, token string) (*models.Session, error) {
	if s.created == nil || s.created.Token != token {
		return nil, repository.ErrNotFound
	}
	return s.created, nil
}

func (s *stubSessions) Delete(_ context.Context, token string) error {
	s.deleted = token
	return nil
}

func (s *stubSessions) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

func TestAuthHandler_Login(t *testing.T) {
	sessions := &stubSessions{}
	h := NewAuthHandler(sessions, "topsecret", time.Hour)

	req, rec := jsonRequest(http.MethodPost, "/api/auth/login", `{"email": "ops@example.com", "password": "topsecret"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ops@example.com", resp.Email)
	assert.Greater(t, resp.ExpiresAt, time.Now().UnixMilli())

	require.NotNil(t, sessions.created)
	assert.Equal(t, resp.Token, sessions.created.Token)
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	h := NewAuthHandler(&stubSessions{}, "topsecret", time.Hour)

	req, rec := jsonRequest(http.MethodPost, "/api/auth/login", `{"email": "ops@example.com", "password": "wrong"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_LoginInvalidEmail(t *testing.T) {
	h := NewAuthHandler(&stubSessions{}, "topsecret", time.Hour)

	req, rec := jsonRequest(http.MethodPost, "/api/auth/login", `{"email": "not-an-email", "password": "topsecret"}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_LoginEmptySecretAlwaysFails(t *testing.T) {
	h := NewAuthHandler(&stubSessions{}, "", time.Hour)

	req, rec := jsonRequest(http.MethodPost, "/api/auth/login", `{"email": "ops@example.com", "password": ""}`)
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Session(t *testing.T) {
	h := NewAuthHandler(&stubSessions{}, "topsecret", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set(middleware.ContextUserEmail, "ops@example.com")

	require.NoError(t, h.Session(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email": "ops@example.com"}`, rec.Body.String())
}

func TestAuthHandler_Logout(t *testing.T) {
	sessions := &stubSessions{}
	h := NewAuthHandler(sessions, "topsecret", time.Hour)

	req := httptest.NewRequest(http.MethodDelete, "/api/auth/session", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set(middleware.ContextSessionToken, "tok-123")

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "tok-123", sessions.deleted)
}
