//go:build e2e

// Package e2e drives the whole invoice pipeline in process: a raw SMTP
// transaction feeds the ingest server, the real extraction orchestrator
// talks to a fake OpenAI-compatible endpoint, and the result is read
// back over the HTTP API.
package e2e

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/voralis/invoxly-backend/internal/api"
	"github.com/voralis/invoxly-backend/internal/database"
	"github.com/voralis/invoxly-backend/internal/extraction"
	"github.com/voralis/invoxly-backend/internal/llm"
	"github.com/voralis/invoxly-backend/internal/mailingest"
	"github.com/voralis/invoxly-backend/internal/models"
	"github.com/voralis/invoxly-backend/internal/repository"
	"github.com/voralis/invoxly-backend/internal/storage"
	"github.com/voralis/invoxly-backend/internal/websocket"
	"github.com/voralis/invoxly-backend/tests/fixtures"
)

const e2eSecret = "e2e-session-secret"

// fakeModelServer emulates the chat completions endpoint, always
// returning the canned extraction result.
func fakeModelServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": fixtures.ModelOutputJSON}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestEmailToInvoiceFlow(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	modelSrv := fakeModelServer(t)
	defer modelSrv.Close()

	log := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	model := llm.NewClient(llm.Config{
		APIKey:  "test-key",
		BaseURL: modelSrv.URL,
		Model:   "gpt-4o-mini",
	}, log)
	extractor := extraction.NewExtractor(model, store, log)

	hub := websocket.NewHub(log)
	go hub.Run()

	invoices := repository.NewInvoiceRepository(db)
	backend := mailingest.NewBackend(&mailingest.BackendConfig{
		Invoices:  invoices,
		Storage:   store,
		Extractor: extractor,
		Events:    hub,
		Logger:    log,
	})
	smtpServer := mailingest.NewSecureServer(backend, &mailingest.ServerConfig{
		Domain:        "invoxly.example.com",
		AllowInsecure: true,
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go smtpServer.Serve(listener)
	defer smtpServer.Close()

	sendInvoiceEmail(t, listener.Addr().String())

	router := api.NewRouter(&api.RouterConfig{
		DB:            db,
		Store:         store,
		Extractor:     extractor,
		Hub:           hub,
		Logger:        log,
		SessionSecret: e2eSecret,
		SessionTTL:    time.Hour,
		RateLimit:     1000,
		RateBurst:     1000,
	})

	token := login(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Items []models.Invoice `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)

	invoice := page.Items[0]
	assert.Equal(t, "Acme Corp", invoice.VendorName)
	assert.Equal(t, "INV-2026-001", invoice.InvoiceNumber)
	assert.Equal(t, 150.00, invoice.TotalAmount)
	assert.Equal(t, models.StatusPending, invoice.Status)
	require.NotNil(t, invoice.SourceEmail)
	assert.Equal(t, "billing@acme.example.com", *invoice.SourceEmail)
	require.Len(t, invoice.LineItems, 1)
	assert.Equal(t, "Consulting services", invoice.LineItems[0].Description)
}

func sendInvoiceEmail(t *testing.T, addr string) {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	reader := bufio.NewReader(conn)
	expect := func(code string) {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(line, code), "expected %s, got %q", code, line)
		for strings.HasPrefix(line, code+"-") {
			line, err = reader.ReadString('\n')
			require.NoError(t, err)
		}
	}

	expect("220")
	fmt.Fprintf(conn, "HELO client.example.com\r\n")
	expect("250")
	fmt.Fprintf(conn, "MAIL FROM:<billing@acme.example.com>\r\n")
	expect("250")
	fmt.Fprintf(conn, "RCPT TO:<invoices@invoxly.example.com>\r\n")
	expect("250")
	fmt.Fprintf(conn, "DATA\r\n")
	expect("354")
	fmt.Fprintf(conn, "%s.\r\n", fixtures.RawInvoiceEmail)
	expect("250")
	fmt.Fprintf(conn, "QUIT\r\n")
}

func login(t *testing.T, router *echo.Echo) string {
	t.Helper()

	body := `{"email": "ops@example.com", "password": "` + e2eSecret + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}
