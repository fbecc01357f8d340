package handlers

import (
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/voralis/invoxly-backend/internal/api/middleware"
	"github.com/voralis/invoxly-backend/internal/api/response"
	"github.com/voralis/invoxly-backend/internal/models"
	"github.com/voralis/invoxly-backend/internal/repository"
	"github.com/voralis/invoxly-backend/internal/validator"
)

// AuthHandler handles session login and logout
type AuthHandler struct {
	sessions repository.SessionRepository
	secret   string
	ttl      time.Duration
}

// NewAuthHandler creates a new AuthHandler. The secret is the shared
// credential all operators log in with.
func NewAuthHandler(sessions repository.SessionRepository, secret string, ttl time.Duration) *AuthHandler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthHandler{
		sessions: sessions,
		secret:   secret,
		ttl:      ttl,
	}
}

// LoginRequest is the body for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	Email     string `json:"email"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := validator.ValidateEmail(req.Email); err != nil {
		return response.BadRequest(c, "invalid email", err.Error())
	}

	// Constant-time comparison so the credential check does not leak
	// prefix length.
	if h.secret == "" ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.secret)) != 1 {
		return response.Unauthorized(c, "invalid credentials")
	}

	session := &models.Session{
		Token:     uuid.New().String(),
		UserEmail: req.Email,
		ExpiresAt: time.Now().Add(h.ttl).UnixMilli(),
	}
	if err := h.sessions.Create(c.Request().Context(), session); err != nil {
		return response.InternalError(c, "failed to create session")
	}

	return response.Created(c, LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Email:     session.UserEmail,
	})
}

// SessionResponse describes the authenticated caller
type SessionResponse struct {
	Email string `json:"email"`
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(c echo.Context) error {
	email, _ := c.Get(middleware.ContextUserEmail).(string)
	return response.OK(c, SessionResponse{Email: email})
}

// Logout handles DELETE /api/auth/session
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := c.Get(middleware.ContextSessionToken).(string)
	if token != "" {
		// A missing row just means the session already expired.
		_ = h.sessions.Delete(c.Request().Context(), token)
	}
	return response.NoContent(c)
}
