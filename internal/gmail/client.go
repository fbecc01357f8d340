// Package gmail links a user mailbox via OAuth and lists message metadata
// so invoices can be pulled from email. Message bodies stay in Gmail; only
// headers and ids cross this client.
package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	apiBaseURL = "https://gmail.googleapis.com/gmail/v1"

	// readonly is enough for pulling invoice emails
	scopeReadonly = "https://www.googleapis.com/auth/gmail.readonly"

	defaultHTTPTimeout = 30 * time.Second
)

// ErrNotConfigured means GMAIL_CLIENT_ID / GMAIL_CLIENT_SECRET are unset
var ErrNotConfigured = errors.New("gmail integration not configured")

// Message is the metadata surfaced per Gmail message
type Message struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
}

// Client wraps the OAuth flow and the Gmail REST metadata endpoints
type Client struct {
	oauth   *oauth2.Config
	baseURL string
	http    *http.Client
}

// NewClient builds a client from app credentials. Returns ErrNotConfigured
// when either credential is empty so callers can disable the integration
// cleanly.
func NewClient(clientID, clientSecret, redirectURL string) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrNotConfigured
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{scopeReadonly},
			Endpoint:     google.Endpoint,
		},
		baseURL: apiBaseURL,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
	}, nil
}

// AuthURL returns the consent-screen URL for the given CSRF state
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}

type listResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type messageResponse struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
	Payload struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
	} `json:"payload"`
}

// ListMessages returns metadata for the most recent messages matching the
// Gmail search query (empty query lists the inbox).
func (c *Client) ListMessages(ctx context.Context, token *oauth2.Token, query string, limit int) ([]Message, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	params := url.Values{}
	params.Set("maxResults", fmt.Sprintf("%d", limit))
	if query != "" {
		params.Set("q", query)
	}

	var list listResponse
	if err := c.get(ctx, token, "/users/me/messages?"+params.Encode(), &list); err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(list.Messages))
	for _, ref := range list.Messages {
		var msg messageResponse
		path := "/users/me/messages/" + url.PathEscape(ref.ID) +
			"?format=metadata&metadataHeaders=From&metadataHeaders=Subject&metadataHeaders=Date"
		if err := c.get(ctx, token, path, &msg); err != nil {
			return nil, err
		}

		m := Message{ID: msg.ID, Snippet: msg.Snippet}
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "From":
				m.From = h.Value
			case "Subject":
				m.Subject = h.Value
			case "Date":
				m.Date = h.Value
			}
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func (c *Client) get(ctx context.Context, token *oauth2.Token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	token.SetAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gmail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gmail api status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
