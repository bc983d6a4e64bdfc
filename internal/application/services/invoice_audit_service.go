package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/domain/providers"
)

// InvoiceAuditService follows the invoice channel and writes one audit
// log line per issued invoice. It never touches the store.
type InvoiceAuditService struct {
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu      sync.Mutex
	handled int
	onEvent func(*entities.InvoiceEvent)
}

// NewInvoiceAuditService creates a new audit listener
func NewInvoiceAuditService(eventBus providers.EventBus) *InvoiceAuditService {
	ctx, cancel := context.WithCancel(context.Background())
	return &InvoiceAuditService{
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnEvent registers a hook called after each event is logged
func (s *InvoiceAuditService) OnEvent(fn func(*entities.InvoiceEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = fn
}

// Start subscribes to invoice events
func (s *InvoiceAuditService) Start() error {
	events, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelInvoices)
	if err != nil {
		return fmt.Errorf("failed to subscribe to invoice events: %w", err)
	}

	s.wg.Add(1)
	go s.processEvents(events)
	log.Info().Str("channel", providers.EventChannelInvoices).Msg("invoice audit started")
	return nil
}

// Stop cancels the subscription and waits for the listener to exit
func (s *InvoiceAuditService) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Info().Msg("invoice audit stopped")
}

// Handled reports how many events were processed
func (s *InvoiceAuditService) Handled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handled
}

func (s *InvoiceAuditService) processEvents(events <-chan *entities.InvoiceEvent) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *InvoiceAuditService) handleEvent(event *entities.InvoiceEvent) {
	log.Info().
		Str("event_id", event.ID).
		Str("event_type", string(event.EventType)).
		Int64("session_id", event.SessionID).
		Time("at", event.Timestamp).
		Msg("invoice event")

	s.mu.Lock()
	s.handled++
	hook := s.onEvent
	s.mu.Unlock()

	if hook != nil {
		hook(event)
	}
}
