package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fonoclinic/backend/internal/domain/providers"
)

const streamHeartbeatInterval = 30 * time.Second

// InvoiceStreamHandler pushes invoice events to review screens over
// Server-Sent Events so they know when to re-read the review.
type InvoiceStreamHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration
}

// NewInvoiceStreamHandler creates a new stream handler
func NewInvoiceStreamHandler(eventBus providers.EventBus) *InvoiceStreamHandler {
	return &InvoiceStreamHandler{
		eventBus:  eventBus,
		heartbeat: streamHeartbeatInterval,
	}
}

// StreamInvoiceEvents handles GET /api/billing/events
func (h *InvoiceStreamHandler) StreamInvoiceEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	events, err := h.eventBus.Subscribe(r.Context(), providers.EventChannelInvoices)
	if err != nil {
		log.Error().Err(err).Msg("failed to subscribe to invoice events")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent(w, "connected", map[string]interface{}{"timestamp": time.Now().UTC()})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			writeEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now().UTC()})
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			writeEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, name string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", name).Msg("failed to marshal stream event")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
}
