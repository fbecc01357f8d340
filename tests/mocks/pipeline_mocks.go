package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/voralis/invoxly-backend/internal/extraction"
	"github.com/voralis/invoxly-backend/internal/llm"
	"github.com/voralis/invoxly-backend/internal/models"
)

// MockChatClient implements llm.ChatClient
type MockChatClient struct {
	mock.Mock
}

// Complete returns the canned model output
func (m *MockChatClient) Complete(ctx context.Context, system string, parts []llm.Part) (string, error) {
	args := m.Called(ctx, system, parts)
	return args.String(0), args.Error(1)
}

// MockExtractor implements the Extractor interface used by the HTTP
// process endpoint and the SMTP ingest backend.
type MockExtractor struct {
	mock.Mock
}

// Extract returns the canned candidate
func (m *MockExtractor) Extract(ctx context.Context, req extraction.Request) (*extraction.Candidate, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extraction.Candidate), args.Error(1)
}

// RecordingBroadcaster captures invoice lifecycle events instead of
// pushing them to websocket clients.
type RecordingBroadcaster struct {
	mu      sync.Mutex
	Created []*models.Invoice
	Updated []*models.Invoice
}

// BroadcastInvoiceCreated records a created event
func (r *RecordingBroadcaster) BroadcastInvoiceCreated(invoice *models.Invoice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Created = append(r.Created, invoice)
}

// BroadcastInvoiceUpdated records an updated event
func (r *RecordingBroadcaster) BroadcastInvoiceUpdated(invoice *models.Invoice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Updated = append(r.Updated, invoice)
}
