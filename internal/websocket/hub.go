// Package websocket pushes invoice lifecycle events to connected clients.
// Clients subscribe to the invoice stream, optionally filtered by status.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/voralis/invoxly-backend/internal/models"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypeEvent       MessageType = "event"
	MessageTypeError       MessageType = "error"
)

// Invoice event names carried in the Event field
const (
	EventInvoiceCreated = "invoice.created"
	EventInvoiceUpdated = "invoice.updated"
)

// WSMessage represents a WebSocket message. Status on a subscribe message
// narrows the stream to invoices in that status; empty means all invoices.
type WSMessage struct {
	Type    MessageType `json:"type"`
	Status  string      `json:"status,omitempty"`
	Event   string      `json:"event,omitempty"`
	Invoice interface{} `json:"invoice,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// InvoiceEvent is the invoice summary sent with each event
type InvoiceEvent struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	VendorName    string  `json:"vendor_name"`
	InvoiceNumber string  `json:"invoice_number"`
	Currency      string  `json:"currency"`
	TotalAmount   float64 `json:"total_amount"`
	CreatedAt     int64   `json:"created_at"`
}

// Hub maintains the set of active clients and broadcasts invoice events
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Status subscriptions: status filter -> set of clients. The empty
	// filter receives every event.
	subscriptions map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan *subscriptionRequest
	unsubscribe chan *subscriptionRequest
	broadcast   chan *broadcastMessage

	mu sync.RWMutex

	logger *slog.Logger
}

type subscriptionRequest struct {
	client *Client
	status string
}

type broadcastMessage struct {
	status  string
	message []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan *subscriptionRequest),
		unsubscribe:   make(chan *subscriptionRequest),
		broadcast:     make(chan *broadcastMessage, 256),
		logger:        logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client registered")
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				for status, subscribers := range h.subscriptions {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.subscriptions, status)
					}
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unregistered")
			}

		case req := <-h.subscribe:
			h.mu.Lock()
			if h.subscriptions[req.status] == nil {
				h.subscriptions[req.status] = make(map[*Client]bool)
			}
			h.subscriptions[req.status][req.client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client subscribed", slog.String("status_filter", req.status))
			}

		case req := <-h.unsubscribe:
			h.mu.Lock()
			if subscribers, ok := h.subscriptions[req.status]; ok {
				delete(subscribers, req.client)
				if len(subscribers) == 0 {
					delete(h.subscriptions, req.status)
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unsubscribed", slog.String("status_filter", req.status))
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			h.deliver(h.subscriptions[msg.status], msg.message)
			if msg.status != "" {
				// unfiltered subscribers see everything
				h.deliver(h.subscriptions[""], msg.message)
			}
			h.mu.RUnlock()
		}
	}
}

// deliver fans a message out to a subscriber set. Callers hold the lock.
func (h *Hub) deliver(subscribers map[*Client]bool, message []byte) {
	for client := range subscribers {
		select {
		case client.send <- message:
		default:
			// Client buffer full, skip
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe subscribes a client to the invoice stream with a status filter
func (h *Hub) Subscribe(client *Client, status string) {
	h.subscribe <- &subscriptionRequest{client: client, status: status}
}

// Unsubscribe removes a client's status subscription
func (h *Hub) Unsubscribe(client *Client, status string) {
	h.unsubscribe <- &subscriptionRequest{client: client, status: status}
}

// BroadcastInvoiceCreated notifies subscribers of a newly created invoice
func (h *Hub) BroadcastInvoiceCreated(invoice *models.Invoice) {
	h.broadcastEvent(EventInvoiceCreated, invoice)
}

// BroadcastInvoiceUpdated notifies subscribers of a status/notes change
func (h *Hub) BroadcastInvoiceUpdated(invoice *models.Invoice) {
	h.broadcastEvent(EventInvoiceUpdated, invoice)
}

func (h *Hub) broadcastEvent(event string, invoice *models.Invoice) {
	msg := WSMessage{
		Type:   MessageTypeEvent,
		Event:  event,
		Status: invoice.Status,
		Invoice: &InvoiceEvent{
			ID:            invoice.ID,
			Status:        invoice.Status,
			VendorName:    invoice.VendorName,
			InvoiceNumber: invoice.InvoiceNumber,
			Currency:      invoice.Currency,
			TotalAmount:   invoice.TotalAmount,
			CreatedAt:     invoice.CreatedAt,
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}

	h.broadcast <- &broadcastMessage{status: invoice.Status, message: data}
}
