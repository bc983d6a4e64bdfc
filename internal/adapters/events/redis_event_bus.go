package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/domain/providers"
	redisclient "github.com/fonoclinic/backend/internal/infrastructure/clients/redis"
)

const subscriberBuffer = 64

// RedisEventBus implements the EventBus interface using Redis Pub/Sub.
// Each subscriber owns its own Redis subscription.
type RedisEventBus struct {
	client *redisclient.Client

	mu     sync.Mutex
	subs   map[*redis.PubSub]struct{}
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ providers.EventBus = (*RedisEventBus)(nil)

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) *RedisEventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client: client,
		subs:   make(map[*redis.PubSub]struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Publish publishes an event to all subscribers of channel
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.InvoiceEvent) error {
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", channel).Str("event_id", event.ID).Msg("published event")
	return nil
}

// Subscribe delivers events published on channel until ctx is done or the
// bus is closed. The returned channel is closed afterwards.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.InvoiceEvent, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, errors.New("event bus is closed")
	}
	pubsub := b.client.Client().Subscribe(b.ctx, channel)
	b.subs[pubsub] = struct{}{}
	b.wg.Add(1)
	b.mu.Unlock()

	// Wait for the subscription confirmation so no publish is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		b.release(pubsub)
		b.wg.Done()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan *entities.InvoiceEvent, subscriberBuffer)
	go b.forward(ctx, channel, pubsub, out)
	return out, nil
}

func (b *RedisEventBus) forward(ctx context.Context, channel string, pubsub *redis.PubSub, out chan<- *entities.InvoiceEvent) {
	defer b.wg.Done()
	defer close(out)
	defer b.release(pubsub)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			event, err := decodeEvent([]byte(msg.Payload))
			if err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("dropping malformed event")
				continue
			}
			select {
			case out <- event:
			default:
				log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("subscriber buffer full, dropping event")
			}
		}
	}
}

func (b *RedisEventBus) release(pubsub *redis.PubSub) {
	b.mu.Lock()
	delete(b.subs, pubsub)
	b.mu.Unlock()
	_ = pubsub.Close()
}

// Close stops all subscriptions and waits for their goroutines to exit
func (b *RedisEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()

	log.Debug().Msg("event bus closed")
	return nil
}

func encodeEvent(event *entities.InvoiceEvent) ([]byte, error) {
	if event == nil {
		return nil, errors.New("event is nil")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

func decodeEvent(data []byte) (*entities.InvoiceEvent, error) {
	var event entities.InvoiceEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.ID == "" || event.SessionID == 0 {
		return nil, errors.New("event is missing id or session id")
	}
	return &event, nil
}
