package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/domain/providers"
	redisclient "github.com/fonoclinic/backend/internal/infrastructure/clients/redis"
)

func TestEventCodec(t *testing.T) {
	event := entities.NewInvoiceIssuedEvent(42)

	data, err := encodeEvent(event)
	require.NoError(t, err)

	decoded, err := decodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, int64(42), decoded.SessionID)
	assert.Equal(t, entities.InvoiceEventTypeIssued, decoded.EventType)
	assert.True(t, event.Timestamp.Equal(decoded.Timestamp))
}

func TestEventCodec_Rejects(t *testing.T) {
	_, err := encodeEvent(nil)
	assert.Error(t, err)

	_, err = decodeEvent([]byte(`not json`))
	assert.Error(t, err)

	_, err = decodeEvent([]byte(`{"id":"","session_id":0}`))
	assert.Error(t, err)
}

func TestRedisEventBus_PublishSubscribe(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("Requires REDIS_TEST_ADDR")
	}

	client := redisclient.NewFromClient(redis.NewClient(&redis.Options{Addr: addr}))
	defer client.Close()
	require.NoError(t, client.Ping(context.Background()))

	bus := NewRedisEventBus(client)
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := bus.Subscribe(ctx, providers.EventChannelInvoices)
	require.NoError(t, err)

	sent := entities.NewInvoiceIssuedEvent(7)
	require.NoError(t, bus.Publish(ctx, providers.EventChannelInvoices, sent))

	select {
	case got := <-events:
		require.NotNil(t, got)
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, int64(7), got.SessionID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}

	require.NoError(t, bus.Close())
	_, open := <-events
	assert.False(t, open)
}
