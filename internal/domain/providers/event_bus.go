package providers

import (
	"context"

	"github.com/fonoclinic/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to billing events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.InvoiceEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.InvoiceEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelInvoices is the channel carrying invoice status changes
const EventChannelInvoices = "billing:invoices"
