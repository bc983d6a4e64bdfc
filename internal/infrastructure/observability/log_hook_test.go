package observability

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

type memoryLogExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (m *memoryLogExporter) Export(ctx context.Context, records []sdklog.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records = append(m.records, r.Clone())
	}
	return nil
}

func (m *memoryLogExporter) Shutdown(ctx context.Context) error   { return nil }
func (m *memoryLogExporter) ForceFlush(ctx context.Context) error { return nil }

func TestOTelLogHook_EmitsLevelAndMessage(t *testing.T) {
	exporter := &memoryLogExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	logger := zerolog.New(io.Discard).Hook(NewOTelLogHook(provider.Logger("test")))
	logger.Warn().Int64("session_id", 7).Msg("failed to publish invoice event")
	logger.Log().Msg("no level")

	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	require.Len(t, exporter.records, 1)
	assert.Equal(t, "failed to publish invoice event", exporter.records[0].Body().AsString())
	assert.Equal(t, otellog.SeverityWarn, exporter.records[0].Severity())
	assert.Equal(t, "warn", exporter.records[0].SeverityText())
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, otellog.SeverityDebug, severityFor(zerolog.DebugLevel))
	assert.Equal(t, otellog.SeverityInfo, severityFor(zerolog.InfoLevel))
	assert.Equal(t, otellog.SeverityError, severityFor(zerolog.ErrorLevel))
	assert.Equal(t, otellog.SeverityFatal, severityFor(zerolog.PanicLevel))
}
