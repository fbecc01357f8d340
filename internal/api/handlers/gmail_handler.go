package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/voralis/invoxly-backend/internal/api/response"
	"github.com/voralis/invoxly-backend/internal/gmail"
)

// GmailHandler handles the Gmail OAuth connect flow and message listing.
// The OAuth token lives in memory only; restarting the server requires
// reconnecting the account.
type GmailHandler struct {
	client *gmail.Client
	logger *slog.Logger

	mu     sync.Mutex
	states map[string]bool
	token  *oauth2.Token
}

// NewGmailHandler creates a new GmailHandler. client may be nil when the
// integration is not configured.
func NewGmailHandler(client *gmail.Client, logger *slog.Logger) *GmailHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GmailHandler{
		client: client,
		logger: logger,
		states: make(map[string]bool),
	}
}

func notConfigured(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, response.ErrorResponse{
		Error: gmail.ErrNotConfigured.Error(),
	})
}

// ConnectResponse carries the consent URL the client should redirect to
type ConnectResponse struct {
	AuthURL string `json:"authUrl"`
}

// Connect handles GET /api/integrations/gmail/connect
func (h *GmailHandler) Connect(c echo.Context) error {
	if h.client == nil {
		return notConfigured(c)
	}

	state := uuid.New().String()
	h.mu.Lock()
	h.states[state] = true
	h.mu.Unlock()

	return response.OK(c, ConnectResponse{AuthURL: h.client.AuthURL(state)})
}

// Callback handles GET /api/integrations/gmail/callback
func (h *GmailHandler) Callback(c echo.Context) error {
	if h.client == nil {
		return notConfigured(c)
	}

	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return response.BadRequest(c, "code and state are required")
	}

	h.mu.Lock()
	known := h.states[state]
	delete(h.states, state)
	h.mu.Unlock()
	if !known {
		return response.BadRequest(c, "unknown state parameter")
	}

	token, err := h.client.Exchange(c.Request().Context(), code)
	if err != nil {
		h.logger.Error("gmail token exchange failed", "error", err)
		return response.BadRequest(c, "authorization code exchange failed")
	}

	h.mu.Lock()
	h.token = token
	h.mu.Unlock()

	h.logger.Info("gmail account connected")
	return response.OK(c, map[string]string{"status": "connected"})
}

// MessagesResponse wraps the listed Gmail messages
type MessagesResponse struct {
	Messages []gmail.Message `json:"messages"`
}

// Messages handles GET /api/integrations/gmail/messages
func (h *GmailHandler) Messages(c echo.Context) error {
	if h.client == nil {
		return notConfigured(c)
	}

	h.mu.Lock()
	token := h.token
	h.mu.Unlock()
	if token == nil {
		return response.BadRequest(c, "gmail account not connected")
	}

	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return response.BadRequest(c, "limit must be an integer")
		}
		limit = n
	}

	messages, err := h.client.ListMessages(c.Request().Context(), token, c.QueryParam("q"), limit)
	if err != nil {
		h.logger.Error("gmail message listing failed", "error", err)
		return response.InternalError(c, "failed to list gmail messages")
	}
	if messages == nil {
		messages = []gmail.Message{}
	}
	return response.OK(c, MessagesResponse{Messages: messages})
}
