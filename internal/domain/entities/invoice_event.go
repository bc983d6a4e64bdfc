package entities

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceEventType represents the kind of billing event
type InvoiceEventType string

const (
	InvoiceEventTypeIssued InvoiceEventType = "invoice_issued"
)

// InvoiceEvent is published after a session's invoice is marked as issued
type InvoiceEvent struct {
	ID        string           `json:"id"`
	SessionID int64            `json:"session_id"`
	EventType InvoiceEventType `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewInvoiceIssuedEvent creates an event for the given session
func NewInvoiceIssuedEvent(sessionID int64) *InvoiceEvent {
	return &InvoiceEvent{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		EventType: InvoiceEventTypeIssued,
		Timestamp: time.Now().UTC(),
	}
}
