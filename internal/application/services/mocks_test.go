package services_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/domain/repositories"
)

// Mocks

type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *entities.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepository) List(ctx context.Context) ([]*entities.Patient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Patient), args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *entities.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) ListJoined(ctx context.Context, filter repositories.SessionFilter) ([]*entities.JoinedSession, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.JoinedSession), args.Error(1)
}

func (m *MockSessionRepository) SetInvoiceIssued(ctx context.Context, id int64) (repositories.InvoiceTransition, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repositories.InvoiceTransition), args.Error(1)
}

type MockReportExporter struct {
	mock.Mock
}

func (m *MockReportExporter) Export(items []*entities.JoinedSession) ([]byte, error) {
	args := m.Called(items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockReportExporter) FileName() string {
	return "pending.xlsx"
}

func (m *MockReportExporter) ContentType() string {
	return "application/octet-stream"
}

// MockEventBus delivers in-process, dropping events for full subscribers
type MockEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.InvoiceEvent
	published   []*entities.InvoiceEvent
	publishErr  error
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscribers: make(map[string][]chan *entities.InvoiceEvent),
	}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.InvoiceEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, event)
	for _, ch := range m.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.InvoiceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.InvoiceEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, channels := range m.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	m.subscribers = make(map[string][]chan *entities.InvoiceEvent)
	return nil
}

func (m *MockEventBus) Published() []*entities.InvoiceEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*entities.InvoiceEvent(nil), m.published...)
}

func (m *MockEventBus) SubscriberCount(channel string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers[channel])
}
